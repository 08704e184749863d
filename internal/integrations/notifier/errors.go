package notifier

import "errors"

var (
	// ErrConnect возвращается, когда не удалось подключиться к брокеру
	ErrConnect = errors.New("notifier: failed to connect to broker")

	// ErrPublish возвращается при ошибке публикации уведомления
	ErrPublish = errors.New("notifier: failed to publish notification")

	// ErrClosed возвращается при публикации в закрытый канал
	ErrClosed = errors.New("notifier: publisher is closed")
)
