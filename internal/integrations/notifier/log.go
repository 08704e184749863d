package notifier

import (
	"context"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

// LogNotifier пишет уведомления в лог, когда брокер не настроен
type LogNotifier struct {
	log Logger
}

// NewLogNotifier создает LogNotifier
func NewLogNotifier(log Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify логирует уведомление
func (n *LogNotifier) Notify(_ context.Context, notification domain.Notification) error {
	n.log.Info("Notify: type=%s, audience=%s, title=%q, link=%s",
		notification.Type, notification.Audience, notification.Title, notification.Link)
	return nil
}
