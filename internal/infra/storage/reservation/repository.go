package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/pkg/dbmetrics"
	"github.com/m04kA/SMC-RentalService/pkg/jsonb"
	"github.com/m04kA/SMC-RentalService/pkg/pgerr"
	"github.com/m04kA/SMC-RentalService/pkg/psqlbuilder"
)

const table = "reservations"

var columns = []string{
	"id",
	"kind",
	"resource_id",
	"customer_id",
	"owner_id",
	"start_at",
	"end_at",
	"rate_type",
	"rate",
	"total_hours",
	"total_days",
	"time_slots",
	"additional_services",
	"services_amount",
	"total_amount",
	"original_amount",
	"is_negotiated",
	"negotiation_id",
	"deposit_amount",
	"deposit_paid",
	"status",
	"status_history",
	"cancellation",
	"notes",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Ограничение reservations_no_overlap в БД - последний рубеж против пересечений:
// если проверка в usecase пропустила гонку, вставка упадет с ErrReservationOverlap
func (r *Repository) Create(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	encoded, err := encodeJSONColumns(reservation)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - %v", ErrEncodeJSON, err)
	}

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"kind",
			"resource_id",
			"customer_id",
			"owner_id",
			"start_at",
			"end_at",
			"rate_type",
			"rate",
			"total_hours",
			"total_days",
			"time_slots",
			"additional_services",
			"services_amount",
			"total_amount",
			"original_amount",
			"is_negotiated",
			"negotiation_id",
			"deposit_amount",
			"deposit_paid",
			"status",
			"status_history",
			"cancellation",
			"notes",
		).
		Values(
			reservation.Kind,
			reservation.ResourceID,
			reservation.CustomerID,
			reservation.OwnerID,
			reservation.StartAt,
			reservation.EndAt,
			nullableRateType(reservation.RateType),
			reservation.Rate,
			reservation.TotalHours,
			reservation.TotalDays,
			encoded.timeSlots,
			encoded.services,
			reservation.ServicesAmount,
			reservation.TotalAmount,
			reservation.OriginalAmount,
			reservation.IsNegotiated,
			reservation.NegotiationID,
			reservation.Deposit.Amount,
			reservation.Deposit.Paid,
			reservation.Status,
			encoded.history,
			encoded.cancellation,
			reservation.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&reservation.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, mapWriteError("Create - execute insert", err)
	}

	reservation.CreatedAt = createdAt.Time
	reservation.UpdatedAt = updatedAt.Time

	return reservation, nil
}

// GetByID получает бронирование по ID
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	reservation, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %w", ErrScanRow, err)
	}

	return reservation, nil
}

// GetActiveByResourceInRange получает активные бронирования машины, пересекающиеся с окном
// Границы включительно, как и в проверке пересечений
// Внутри транзакции строки блокируются (FOR UPDATE)
func (r *Repository) GetActiveByResourceInRange(ctx context.Context, resourceID int64, from, to time.Time) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"resource_id": resourceID}).
		Where(squirrel.Eq{"status": activeStatusValues()}).
		Where(squirrel.LtOrEq{"start_at": to}).
		Where(squirrel.GtOrEq{"end_at": from}).
		OrderBy("start_at ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByResourceInRange - build select query: %v", ErrBuildQuery, err)
	}

	return r.queryList(ctx, executor, "GetActiveByResourceInRange", query, args)
}

// GetByCustomerID получает список бронирований клиента
// Опционально фильтрует по статусу
func (r *Repository) GetByCustomerID(ctx context.Context, customerID int64, status *domain.ReservationStatus) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("start_at DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCustomerID - build select query: %v", ErrBuildQuery, err)
	}

	return r.queryList(ctx, executor, "GetByCustomerID", query, args)
}

// GetByResourceWithFilter получает бронирования машины для владельца
// Без явного статуса и без IncludeInactive возвращаются только активные бронирования
func (r *Repository) GetByResourceWithFilter(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"resource_id": filter.ResourceID}).
		OrderBy("start_at ASC")

	switch {
	case filter.Status != nil:
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	case !filter.IncludeInactive:
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": activeStatusValues()})
	}

	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"end_at": *filter.From})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"start_at": *filter.To})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByResourceWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	return r.queryList(ctx, executor, "GetByResourceWithFilter", query, args)
}

// Update сохраняет изменяемые поля бронирования: окно, цену, статус, историю и отмену
func (r *Repository) Update(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	encoded, err := encodeJSONColumns(reservation)
	if err != nil {
		return nil, fmt.Errorf("%w: Update - %v", ErrEncodeJSON, err)
	}

	query, args, err := psqlbuilder.Update(table).
		Set("start_at", reservation.StartAt).
		Set("end_at", reservation.EndAt).
		Set("rate", reservation.Rate).
		Set("total_hours", reservation.TotalHours).
		Set("total_days", reservation.TotalDays).
		Set("time_slots", encoded.timeSlots).
		Set("additional_services", encoded.services).
		Set("services_amount", reservation.ServicesAmount).
		Set("total_amount", reservation.TotalAmount).
		Set("original_amount", reservation.OriginalAmount).
		Set("deposit_amount", reservation.Deposit.Amount).
		Set("deposit_paid", reservation.Deposit.Paid).
		Set("status", reservation.Status).
		Set("status_history", encoded.history).
		Set("cancellation", encoded.cancellation).
		Set("notes", reservation.Notes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": reservation.ID}).
		Suffix("RETURNING updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	var updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, mapWriteError("Update - execute update", err)
	}

	reservation.UpdatedAt = updatedAt.Time

	return reservation, nil
}

func (r *Repository) queryList(ctx context.Context, executor DBExecutor, method, query string, args []interface{}) ([]*domain.Reservation, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, method, err)
	}
	defer rows.Close()

	reservations := make([]*domain.Reservation, 0)
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan reservation: %v", ErrScanRow, method, err)
		}
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows iteration: %w", ErrExecQuery, method, err)
	}

	return reservations, nil
}

// mapWriteError переводит нарушения ограничений БД в ошибки репозитория
// Остальные ошибки оборачиваются с сохранением *pq.Error для повтора сериализуемой транзакции
func mapWriteError(step string, err error) error {
	switch {
	case pgerr.IsExclusionViolation(err):
		return fmt.Errorf("%w: %s: %v", ErrReservationOverlap, step, err)
	case pgerr.IsUniqueViolation(err):
		return fmt.Errorf("%w: %s: %v", ErrDuplicateNegotiation, step, err)
	default:
		return fmt.Errorf("%w: %s: %w", ErrExecQuery, step, err)
	}
}

func activeStatusValues() []string {
	values := make([]string, 0, len(domain.ActiveStatuses))
	for _, status := range domain.ActiveStatuses {
		values = append(values, string(status))
	}
	return values
}

func nullableRateType(rateType domain.RateType) sql.NullString {
	return sql.NullString{String: string(rateType), Valid: rateType != ""}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var (
		reservation          domain.Reservation
		rateType             sql.NullString
		timeSlots            []byte
		services             []byte
		history              []byte
		cancellation         []byte
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&reservation.ID,
		&reservation.Kind,
		&reservation.ResourceID,
		&reservation.CustomerID,
		&reservation.OwnerID,
		&reservation.StartAt,
		&reservation.EndAt,
		&rateType,
		&reservation.Rate,
		&reservation.TotalHours,
		&reservation.TotalDays,
		&timeSlots,
		&services,
		&reservation.ServicesAmount,
		&reservation.TotalAmount,
		&reservation.OriginalAmount,
		&reservation.IsNegotiated,
		&reservation.NegotiationID,
		&reservation.Deposit.Amount,
		&reservation.Deposit.Paid,
		&reservation.Status,
		&history,
		&cancellation,
		&reservation.Notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	reservation.RateType = domain.RateType(rateType.String)
	reservation.CreatedAt = createdAt.Time
	reservation.UpdatedAt = updatedAt.Time

	if err := jsonb.DecodeList(timeSlots, &reservation.TimeSlots); err != nil {
		return nil, fmt.Errorf("decode time_slots: %w", err)
	}
	if err := jsonb.DecodeList(services, &reservation.AdditionalServices); err != nil {
		return nil, fmt.Errorf("decode additional_services: %w", err)
	}
	if err := jsonb.DecodeList(history, &reservation.StatusHistory); err != nil {
		return nil, fmt.Errorf("decode status_history: %w", err)
	}
	if reservation.Cancellation, err = jsonb.DecodeNullable[domain.Cancellation](cancellation); err != nil {
		return nil, fmt.Errorf("decode cancellation: %w", err)
	}

	return &reservation, nil
}

// jsonColumns JSONB значения бронирования в виде параметров запроса
type jsonColumns struct {
	timeSlots    string
	services     string
	history      string
	cancellation sql.NullString
}

func encodeJSONColumns(reservation *domain.Reservation) (jsonColumns, error) {
	var (
		cols jsonColumns
		err  error
	)

	if cols.timeSlots, err = jsonb.EncodeList(reservation.TimeSlots); err != nil {
		return cols, fmt.Errorf("time_slots: %w", err)
	}
	if cols.services, err = jsonb.EncodeList(reservation.AdditionalServices); err != nil {
		return cols, fmt.Errorf("additional_services: %w", err)
	}
	if cols.history, err = jsonb.EncodeList(reservation.StatusHistory); err != nil {
		return cols, fmt.Errorf("status_history: %w", err)
	}
	if cols.cancellation, err = jsonb.EncodeNullable(reservation.Cancellation); err != nil {
		return cols, fmt.Errorf("cancellation: %w", err)
	}

	return cols, nil
}
