package application

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/pkg/dbmetrics"
	"github.com/m04kA/SMC-RentalService/pkg/jsonb"
	"github.com/m04kA/SMC-RentalService/pkg/pgerr"
	"github.com/m04kA/SMC-RentalService/pkg/psqlbuilder"
)

const table = "job_applications"

// Repository репозиторий откликов водителей на вакансии
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория откликов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает отклик. Один водитель может откликнуться на вакансию только один раз
func (r *Repository) Create(ctx context.Context, application *domain.JobApplication) (*domain.JobApplication, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	cols, err := encodeJSONColumns(application)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - %v", ErrEncodeJSON, err)
	}

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"job_id",
			"driver_id",
			"owner_id",
			"status",
			"cover_letter",
			"interview",
			"contract",
			"messages",
		).
		Values(
			application.JobID,
			application.DriverID,
			application.OwnerID,
			application.Status,
			application.CoverLetter,
			cols.interview,
			cols.contract,
			cols.messages,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&application.ID,
		&createdAt,
		&updatedAt,
	)

	if pgerr.IsUniqueViolation(err) {
		return nil, ErrDuplicateApplication
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	application.CreatedAt = createdAt.Time
	application.UpdatedAt = updatedAt.Time

	return application, nil
}

// GetByID получает отклик по ID
// Внутри транзакции строка блокируется: подписи сторон применяются строго по очереди
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.JobApplication, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"job_id",
		"driver_id",
		"owner_id",
		"status",
		"cover_letter",
		"interview",
		"contract",
		"messages",
		"created_at",
		"updated_at",
	).
		From(table).
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var (
		application                   domain.JobApplication
		interview, contract, messages []byte
		createdAt, updatedAt          sql.NullTime
	)

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&application.ID,
		&application.JobID,
		&application.DriverID,
		&application.OwnerID,
		&application.Status,
		&application.CoverLetter,
		&interview,
		&contract,
		&messages,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrApplicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan application: %w", ErrScanRow, err)
	}

	if application.Interview, err = jsonb.DecodeNullable[domain.Interview](interview); err != nil {
		return nil, fmt.Errorf("%w: GetByID - decode interview: %v", ErrScanRow, err)
	}
	if application.Contract, err = jsonb.DecodeNullable[domain.Contract](contract); err != nil {
		return nil, fmt.Errorf("%w: GetByID - decode contract: %v", ErrScanRow, err)
	}
	if err = jsonb.DecodeList(messages, &application.Messages); err != nil {
		return nil, fmt.Errorf("%w: GetByID - decode messages: %v", ErrScanRow, err)
	}

	application.CreatedAt = createdAt.Time
	application.UpdatedAt = updatedAt.Time

	return &application, nil
}

// Update сохраняет статус, интервью, контракт и переписку
func (r *Repository) Update(ctx context.Context, application *domain.JobApplication) (*domain.JobApplication, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	cols, err := encodeJSONColumns(application)
	if err != nil {
		return nil, fmt.Errorf("%w: Update - %v", ErrEncodeJSON, err)
	}

	query, args, err := psqlbuilder.Update(table).
		Set("status", application.Status).
		Set("interview", cols.interview).
		Set("contract", cols.contract).
		Set("messages", cols.messages).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": application.ID}).
		Suffix("RETURNING updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	var updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrApplicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	application.UpdatedAt = updatedAt.Time

	return application, nil
}

type jsonColumns struct {
	interview sql.NullString
	contract  sql.NullString
	messages  string
}

func encodeJSONColumns(application *domain.JobApplication) (jsonColumns, error) {
	var (
		cols jsonColumns
		err  error
	)

	if cols.interview, err = jsonb.EncodeNullable(application.Interview); err != nil {
		return cols, fmt.Errorf("interview: %w", err)
	}
	if cols.contract, err = jsonb.EncodeNullable(application.Contract); err != nil {
		return cols, fmt.Errorf("contract: %w", err)
	}
	if cols.messages, err = jsonb.EncodeList(application.Messages); err != nil {
		return cols, fmt.Errorf("messages: %w", err)
	}

	return cols, nil
}
