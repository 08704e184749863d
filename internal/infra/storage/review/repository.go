package review

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/pkg/dbmetrics"
	"github.com/m04kA/SMC-RentalService/pkg/pgerr"
	"github.com/m04kA/SMC-RentalService/pkg/psqlbuilder"
)

const table = "reviews"

// Repository репозиторий отзывов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория отзывов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет отзыв. Один автор - один отзыв на объект
func (r *Repository) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"target_kind",
			"target_id",
			"author_id",
			"rating",
			"comment",
		).
		Values(
			review.Target.Kind,
			review.Target.ID,
			review.AuthorID,
			review.Rating,
			review.Comment,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&review.ID, &createdAt)

	if pgerr.IsUniqueViolation(err) {
		return nil, ErrDuplicateReview
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	review.CreatedAt = createdAt.Time

	return review, nil
}

// Aggregate пересчитывает средний рейтинг и количество отзывов по объекту
func (r *Repository) Aggregate(ctx context.Context, target domain.ReviewTarget) (domain.RatingAggregate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"COALESCE(ROUND(AVG(rating)::numeric, 2), 0)",
		"COUNT(*)",
	).
		From(table).
		Where(squirrel.Eq{"target_kind": target.Kind, "target_id": target.ID}).
		ToSql()

	if err != nil {
		return domain.RatingAggregate{}, fmt.Errorf("%w: Aggregate - build select query: %v", ErrBuildQuery, err)
	}

	var aggregate domain.RatingAggregate
	err = executor.QueryRowContext(ctx, query, args...).Scan(&aggregate.Avg, &aggregate.Count)
	if err != nil {
		return domain.RatingAggregate{}, fmt.Errorf("%w: Aggregate - scan aggregate: %w", ErrScanRow, err)
	}

	return aggregate, nil
}
