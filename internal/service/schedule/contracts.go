package schedule

import (
	"context"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *domain.ResourceSchedule) (*domain.ResourceSchedule, error)
	GetByOwnerAndResource(ctx context.Context, ownerID int64, resourceID *int64) (*domain.ResourceSchedule, error)
	GetWithHierarchy(ctx context.Context, ownerID int64, resourceID int64) (*domain.ResourceSchedule, error)
	Update(ctx context.Context, id int64, schedule *domain.ResourceSchedule) (*domain.ResourceSchedule, error)
}

// ResourceRepository интерфейс репозитория машин
type ResourceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Car, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
