package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	// GetActiveByResourceInRange получает активные бронирования машины, пересекающиеся с окном
	GetActiveByResourceInRange(ctx context.Context, resourceID int64, from, to time.Time) ([]*domain.Reservation, error)
}

// ResourceRepository интерфейс репозитория машин
type ResourceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Car, error)
}

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	// GetWithHierarchy получает расписание с учетом иерархии: машина, затем владелец
	GetWithHierarchy(ctx context.Context, ownerID int64, resourceID int64) (*domain.ResourceSchedule, error)
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
