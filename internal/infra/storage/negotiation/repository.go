package negotiation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/pkg/dbmetrics"
	"github.com/m04kA/SMC-RentalService/pkg/jsonb"
	"github.com/m04kA/SMC-RentalService/pkg/psqlbuilder"
)

const table = "negotiations"

// Repository репозиторий переговоров о цене
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория переговоров
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает переговоры
func (r *Repository) Create(ctx context.Context, negotiation *domain.Negotiation) (*domain.Negotiation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	counterOffers, err := jsonb.EncodeList(negotiation.CounterOffers)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - %v", ErrEncodeJSON, err)
	}

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"resource_id",
			"customer_id",
			"owner_id",
			"initiated_by",
			"original_rate",
			"proposed_rate",
			"rate_type",
			"start_at",
			"end_at",
			"message",
			"status",
			"counter_offers",
			"expires_at",
		).
		Values(
			negotiation.ResourceID,
			negotiation.CustomerID,
			negotiation.OwnerID,
			negotiation.InitiatedBy,
			negotiation.OriginalRate,
			negotiation.ProposedRate,
			negotiation.RateType,
			negotiation.StartAt,
			negotiation.EndAt,
			negotiation.Message,
			negotiation.Status,
			counterOffers,
			negotiation.ExpiresAt,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&negotiation.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	negotiation.CreatedAt = createdAt.Time
	negotiation.UpdatedAt = updatedAt.Time

	return negotiation, nil
}

// GetByID получает переговоры по ID
// Внутри транзакции строка блокируется, чтобы два ответа не применились одновременно
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Negotiation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"resource_id",
		"customer_id",
		"owner_id",
		"initiated_by",
		"original_rate",
		"proposed_rate",
		"rate_type",
		"start_at",
		"end_at",
		"message",
		"status",
		"counter_offers",
		"expires_at",
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

	var negotiation domain.Negotiation
	var counterOffers []byte
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&negotiation.ID,
		&negotiation.ResourceID,
		&negotiation.CustomerID,
		&negotiation.OwnerID,
		&negotiation.InitiatedBy,
		&negotiation.OriginalRate,
		&negotiation.ProposedRate,
		&negotiation.RateType,
		&negotiation.StartAt,
		&negotiation.EndAt,
		&negotiation.Message,
		&negotiation.Status,
		&counterOffers,
		&negotiation.ExpiresAt,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNegotiationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan negotiation: %w", ErrScanRow, err)
	}

	if err := jsonb.DecodeList(counterOffers, &negotiation.CounterOffers); err != nil {
		return nil, fmt.Errorf("%w: GetByID - decode counter offers: %v", ErrScanRow, err)
	}

	negotiation.CreatedAt = createdAt.Time
	negotiation.UpdatedAt = updatedAt.Time

	return &negotiation, nil
}

// Update сохраняет текущую ставку, статус и историю встречных предложений
func (r *Repository) Update(ctx context.Context, negotiation *domain.Negotiation) (*domain.Negotiation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	counterOffers, err := jsonb.EncodeList(negotiation.CounterOffers)
	if err != nil {
		return nil, fmt.Errorf("%w: Update - %v", ErrEncodeJSON, err)
	}

	query, args, err := psqlbuilder.Update(table).
		Set("proposed_rate", negotiation.ProposedRate).
		Set("status", negotiation.Status).
		Set("counter_offers", counterOffers).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": negotiation.ID}).
		Suffix("RETURNING updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	var updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNegotiationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	negotiation.UpdatedAt = updatedAt.Time

	return negotiation, nil
}
