package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/pkg/dbmetrics"
	"github.com/m04kA/SMC-RentalService/pkg/pgerr"
	"github.com/m04kA/SMC-RentalService/pkg/psqlbuilder"
)

const table = "resource_schedules"

// Repository репозиторий расписаний слотов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает расписание на уровне владельца или конкретной машины
func (r *Repository) Create(ctx context.Context, schedule *domain.ResourceSchedule) (*domain.ResourceSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"owner_id",
			"resource_id",
			"slot_duration_minutes",
			"open_time",
			"close_time",
		).
		Values(
			schedule.OwnerID,
			schedule.ResourceID,
			schedule.SlotDurationMinutes,
			schedule.OpenTime,
			schedule.CloseTime,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&schedule.ID,
		&createdAt,
		&updatedAt,
	)

	if pgerr.IsUniqueViolation(err) {
		return nil, ErrDuplicateSchedule
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	schedule.CreatedAt = createdAt.Time
	schedule.UpdatedAt = updatedAt.Time

	return schedule, nil
}

// GetByOwnerAndResource получает расписание ровно указанного уровня
// resourceID == nil - расписание владельца для всех его машин
func (r *Repository) GetByOwnerAndResource(ctx context.Context, ownerID int64, resourceID *int64) (*domain.ResourceSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"owner_id",
		"resource_id",
		"slot_duration_minutes",
		"open_time",
		"close_time",
		"created_at",
		"updated_at",
	).
		From(table).
		Where(squirrel.Eq{"owner_id": ownerID})

	// Фильтрация по resource_id (NULL или конкретное значение)
	if resourceID == nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"resource_id": nil})
	} else {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"resource_id": *resourceID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByOwnerAndResource - build select query: %v", ErrBuildQuery, err)
	}

	var schedule domain.ResourceSchedule
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&schedule.ID,
		&schedule.OwnerID,
		&schedule.ResourceID,
		&schedule.SlotDurationMinutes,
		&schedule.OpenTime,
		&schedule.CloseTime,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByOwnerAndResource - scan schedule: %w", ErrScanRow, err)
	}

	schedule.CreatedAt = createdAt.Time
	schedule.UpdatedAt = updatedAt.Time

	return &schedule, nil
}

// GetWithHierarchy получает расписание с учетом иерархии приоритетов
// 1. Расписание конкретной машины (ownerID, resourceID)
// 2. Расписание владельца для всех машин (ownerID, NULL)
//
// Если расписание не найдено ни на одном уровне, возвращает ErrScheduleNotFound,
// и вызывающий подставляет значения по умолчанию из конфигурации
func (r *Repository) GetWithHierarchy(ctx context.Context, ownerID int64, resourceID int64) (*domain.ResourceSchedule, error) {
	// 1. Пробуем получить расписание конкретной машины
	schedule, err := r.GetByOwnerAndResource(ctx, ownerID, &resourceID)
	if err == nil {
		return schedule, nil
	}
	if !errors.Is(err, ErrScheduleNotFound) {
		return nil, fmt.Errorf("GetWithHierarchy - level 1 (resource): %w", err)
	}

	// 2. Пробуем получить расписание владельца
	schedule, err = r.GetByOwnerAndResource(ctx, ownerID, nil)
	if err == nil {
		return schedule, nil
	}
	if !errors.Is(err, ErrScheduleNotFound) {
		return nil, fmt.Errorf("GetWithHierarchy - level 2 (owner): %w", err)
	}

	return nil, ErrScheduleNotFound
}

// Update обновляет параметры сетки слотов
func (r *Repository) Update(ctx context.Context, id int64, schedule *domain.ResourceSchedule) (*domain.ResourceSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("slot_duration_minutes", schedule.SlotDurationMinutes).
		Set("open_time", schedule.OpenTime).
		Set("close_time", schedule.CloseTime).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	schedule.ID = id
	schedule.CreatedAt = createdAt.Time
	schedule.UpdatedAt = updatedAt.Time

	return schedule, nil
}
