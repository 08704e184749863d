package hiring

import (
	"context"
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/pkg/aftercommit"
)

// ApplicationRepository интерфейс репозитория откликов
type ApplicationRepository interface {
	Create(ctx context.Context, application *domain.JobApplication) (*domain.JobApplication, error)
	GetByID(ctx context.Context, id int64) (*domain.JobApplication, error)
	Update(ctx context.Context, application *domain.JobApplication) (*domain.JobApplication, error)
}

// JobRepository интерфейс репозитория вакансий
type JobRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Job, error)
	Update(ctx context.Context, job *domain.Job) error
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
