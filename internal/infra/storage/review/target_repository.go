package review

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

// targetTables таблица для каждого вида оцениваемого объекта
var targetTables = map[domain.ReviewTargetKind]string{
	domain.TargetDriver:  "drivers",
	domain.TargetProduct: "products",
	domain.TargetCar:     "cars",
}

// TargetRepository читает и обновляет рейтинг водителей, товаров и машин
type TargetRepository struct {
	db DBExecutor
}

// NewTargetRepository создает новый экземпляр репозитория оцениваемых объектов
func NewTargetRepository(db DBExecutor) *TargetRepository {
	return &TargetRepository{db: db}
}

// Get загружает оцениваемый объект (FOR UPDATE внутри транзакции)
func (r *TargetRepository) Get(ctx context.Context, target domain.ReviewTarget) (domain.Rateable, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	tableName, ok := targetTables[target.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, target.Kind)
	}

	var selectBuilder squirrel.SelectBuilder
	switch target.Kind {
	case domain.TargetDriver:
		selectBuilder = psqlbuilder.Select("id", "name", "rating_avg", "rating_count")
	case domain.TargetProduct:
		selectBuilder = psqlbuilder.Select("id", "vendor_id", "title", "rating_avg", "rating_count")
	default:
		selectBuilder = psqlbuilder.Select("id", "owner_id", "title", "rating_avg", "rating_count")
	}

	selectBuilder = selectBuilder.From(tableName).Where(squirrel.Eq{"id": target.ID})
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	row := executor.QueryRowContext(ctx, query, args...)

	var rateable domain.Rateable
	switch target.Kind {
	case domain.TargetDriver:
		driver := &domain.Driver{}
		err = row.Scan(&driver.ID, &driver.Name, &driver.RatingAvg, &driver.RatingCount)
		rateable = driver
	case domain.TargetProduct:
		product := &domain.Product{}
		err = row.Scan(&product.ID, &product.VendorID, &product.Title, &product.RatingAvg, &product.RatingCount)
		rateable = product
	default:
		car := &domain.Car{}
		err = row.Scan(&car.ID, &car.OwnerID, &car.Title, &car.RatingAvg, &car.RatingCount)
		rateable = car
	}

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTargetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan %s: %w", ErrScanRow, target.Kind, err)
	}

	return rateable, nil
}

// SaveRating записывает пересчитанный рейтинг объекта
func (r *TargetRepository) SaveRating(ctx context.Context, target domain.ReviewTarget, aggregate domain.RatingAggregate) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	tableName, ok := targetTables[target.Kind]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, target.Kind)
	}

	query, args, err := psqlbuilder.Update(tableName).
		Set("rating_avg", aggregate.Avg).
		Set("rating_count", aggregate.Count).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": target.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SaveRating - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SaveRating - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SaveRating - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrTargetNotFound
	}

	return nil
}
