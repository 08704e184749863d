package negotiations

import (
	"context"
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/pkg/aftercommit"
)

// NegotiationRepository интерфейс репозитория переговоров
type NegotiationRepository interface {
	Create(ctx context.Context, negotiation *domain.Negotiation) (*domain.Negotiation, error)
	GetByID(ctx context.Context, id int64) (*domain.Negotiation, error)
	Update(ctx context.Context, negotiation *domain.Negotiation) (*domain.Negotiation, error)
}

// ResourceRepository интерфейс репозитория машин
type ResourceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Car, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// AfterCommit выполняет побочные эффекты после фиксации транзакции
type AfterCommit interface {
	Run(ctx context.Context, hooks ...aftercommit.Hook) int
}

// Notifier отправляет уведомления участникам
type Notifier interface {
	Notify(ctx context.Context, notification domain.Notification) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
