package lock

import "context"

// Locker взаимное исключение по ключу между конкурентными запросами
type Locker interface {
	// Acquire ждет блокировку не дольше настроенного времени ожидания
	// Возвращенная функция освобождает блокировку, повторный вызов безопасен
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
