package create_reservation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/pkg/aftercommit"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	// GetActiveByResourceInRange получает активные бронирования машины (FOR UPDATE внутри транзакции)
	GetActiveByResourceInRange(ctx context.Context, resourceID int64, from, to time.Time) ([]*domain.Reservation, error)
	Create(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error)
}

// ResourceRepository интерфейс репозитория машин
type ResourceRepository interface {
	// LockByID получает машину с блокировкой строки
	LockByID(ctx context.Context, id int64) (*domain.Car, error)
}

// NegotiationRepository интерфейс репозитория переговоров о цене
type NegotiationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Negotiation, error)
}

// Locker блокировка машины на время проверки пересечений и записи
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// AfterCommit выполняет побочные эффекты после фиксации транзакции
type AfterCommit interface {
	Run(ctx context.Context, hooks ...aftercommit.Hook) int
}

// Notifier отправляет уведомления участникам
type Notifier interface {
	Notify(ctx context.Context, notification domain.Notification) error
}

// ConflictRecorder учитывает отказы из-за пересечения окон
type ConflictRecorder interface {
	IncReservationConflict(source string)
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
