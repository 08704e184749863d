package reviews

import (
	"context"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

// ReviewRepository интерфейс репозитория отзывов
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) (*domain.Review, error)
	Aggregate(ctx context.Context, target domain.ReviewTarget) (domain.RatingAggregate, error)
}

// TargetRepository интерфейс репозитория оцениваемых объектов
type TargetRepository interface {
	Get(ctx context.Context, target domain.ReviewTarget) (domain.Rateable, error)
	SaveRating(ctx context.Context, target domain.ReviewTarget, aggregate domain.RatingAggregate) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
