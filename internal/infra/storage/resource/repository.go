package resource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/pkg/dbmetrics"
	"github.com/m04kA/SMC-RentalService/pkg/psqlbuilder"
)

const table = "cars"

// Repository репозиторий машин (бронируемых ресурсов)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория машин
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает машину по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Car, error) {
	return r.get(ctx, "GetByID", id, false)
}

// LockByID получает машину и блокирует строку до конца транзакции
// Все создания бронирований одной машины выстраиваются в очередь на этой блокировке
// Вне транзакции работает как GetByID
func (r *Repository) LockByID(ctx context.Context, id int64) (*domain.Car, error) {
	return r.get(ctx, "LockByID", id, dbmetrics.IsInTransaction(ctx))
}

func (r *Repository) get(ctx context.Context, method string, id int64, forUpdate bool) (*domain.Car, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"owner_id",
		"title",
		"hourly_rate",
		"daily_rate",
		"availability_status",
		"time_zone",
		"rating_avg",
		"rating_count",
		"created_at",
		"updated_at",
	).
		From(table).
		Where(squirrel.Eq{"id": id})

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, method, err)
	}

	var car domain.Car
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&car.ID,
		&car.OwnerID,
		&car.Title,
		&car.HourlyRate,
		&car.DailyRate,
		&car.AvailabilityStatus,
		&car.TimeZone,
		&car.RatingAvg,
		&car.RatingCount,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCarNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan car: %w", ErrScanRow, method, err)
	}

	car.CreatedAt = createdAt.Time
	car.UpdatedAt = updatedAt.Time

	return &car, nil
}

// UpdateAvailability выставляет флаг доступности машины
func (r *Repository) UpdateAvailability(ctx context.Context, id int64, status domain.AvailabilityStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("availability_status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateAvailability - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateAvailability - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateAvailability - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrCarNotFound
	}

	return nil
}
