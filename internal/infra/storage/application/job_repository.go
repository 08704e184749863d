package application

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

const jobsTable = "jobs"

// JobRepository репозиторий вакансий. Живет рядом с откликами:
// вакансия меняется только вместе с подписью контракта
type JobRepository struct {
	db DBExecutor
}

// NewJobRepository создает новый экземпляр репозитория вакансий
func NewJobRepository(db DBExecutor) *JobRepository {
	return &JobRepository{db: db}
}

// GetByID получает вакансию по ID (FOR UPDATE внутри транзакции)
func (r *JobRepository) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"owner_id",
		"title",
		"status",
		"hired_driver_id",
		"created_at",
		"updated_at",
	).
		From(jobsTable).
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Job.GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var job domain.Job
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&job.ID,
		&job.OwnerID,
		&job.Title,
		&job.Status,
		&job.HiredDriverID,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Job.GetByID - scan job: %w", ErrScanRow, err)
	}

	job.CreatedAt = createdAt.Time
	job.UpdatedAt = updatedAt.Time

	return &job, nil
}

// Update сохраняет статус вакансии и нанятого водителя
func (r *JobRepository) Update(ctx context.Context, job *domain.Job) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(jobsTable).
		Set("status", job.Status).
		Set("hired_driver_id", job.HiredDriverID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": job.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Job.Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Job.Update - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Job.Update - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrJobNotFound
	}

	return nil
}
