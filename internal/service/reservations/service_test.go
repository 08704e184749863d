package reservations

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/infra/lock"
	reservationRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/reservation"
	resourceRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/resource"
	"github.com/m04kA/SMC-RentalService/internal/service/reservations/models"
	"github.com/m04kA/SMC-RentalService/pkg/aftercommit"
	"github.com/m04kA/SMC-RentalService/pkg/logger"
	"github.com/m04kA/SMC-RentalService/pkg/pgerr"
	"github.com/m04kA/SMC-RentalService/pkg/ptr"
)

// fakeReservations хранилище бронирований в памяти, отдает копии
type fakeReservations struct {
	mu    sync.Mutex
	items map[int64]*domain.Reservation
	// rangeErr возвращается из GetActiveByResourceInRange
	rangeErr error
}

func clone(r *domain.Reservation) *domain.Reservation {
	c := *r
	c.StatusHistory = append([]domain.StatusHistoryEntry(nil), r.StatusHistory...)
	return &c
}

func (f *fakeReservations) GetByID(_ context.Context, id int64) (*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok {
		return nil, reservationRepo.ErrReservationNotFound
	}
	return clone(r), nil
}

func (f *fakeReservations) GetByCustomerID(_ context.Context, customerID int64, status *domain.ReservationStatus) ([]*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]*domain.Reservation, 0)
	for _, r := range f.items {
		if r.CustomerID == customerID && (status == nil || r.Status == *status) {
			result = append(result, clone(r))
		}
	}
	return result, nil
}

func (f *fakeReservations) GetByResourceWithFilter(_ context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]*domain.Reservation, 0)
	for _, r := range f.items {
		if r.ResourceID != filter.ResourceID {
			continue
		}
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		if filter.Status == nil && !filter.IncludeInactive && !r.Status.IsActive() {
			continue
		}
		result = append(result, clone(r))
	}
	return result, nil
}

func (f *fakeReservations) GetActiveByResourceInRange(_ context.Context, resourceID int64, from, to time.Time) ([]*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rangeErr != nil {
		return nil, f.rangeErr
	}
	window := domain.Window{Start: from, End: to}
	result := make([]*domain.Reservation, 0)
	for _, r := range f.items {
		if r.ResourceID == resourceID && r.Status.IsActive() && domain.Overlaps(r.Window(), window) {
			result = append(result, clone(r))
		}
	}
	return result, nil
}

func (f *fakeReservations) Update(_ context.Context, r *domain.Reservation) (*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[r.ID]; !ok {
		return nil, reservationRepo.ErrReservationNotFound
	}
	f.items[r.ID] = clone(r)
	return r, nil
}

type availabilityUpdate struct {
	resourceID int64
	status     domain.AvailabilityStatus
}

type fakeResources struct {
	cars    map[int64]*domain.Car
	updates []availabilityUpdate
}

func (f *fakeResources) GetByID(_ context.Context, id int64) (*domain.Car, error) {
	car, ok := f.cars[id]
	if !ok {
		return nil, resourceRepo.ErrCarNotFound
	}
	return car, nil
}

func (f *fakeResources) UpdateAvailability(_ context.Context, id int64, status domain.AvailabilityStatus) error {
	f.updates = append(f.updates, availabilityUpdate{resourceID: id, status: status})
	return nil
}

type passthroughTx struct{}

func (passthroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeNotifier struct {
	sent []domain.Notification
}

func (f *fakeNotifier) Notify(_ context.Context, n domain.Notification) error {
	f.sent = append(f.sent, n)
	return nil
}

type fakeConflicts struct {
	sources []string
}

func (f *fakeConflicts) IncReservationConflict(source string) {
	f.sources = append(f.sources, source)
}

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time {
	return f.now
}

const (
	ownerID    int64 = 200
	customerID int64 = 100
	carID      int64 = 1
)

var (
	now      = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	owner    = domain.Actor{ID: ownerID, Role: domain.RoleOwner}
	client   = domain.Actor{ID: customerID, Role: domain.RoleCustomer}
	admin    = domain.Actor{ID: 1, Role: domain.RoleAdmin}
	stranger = domain.Actor{ID: 999, Role: domain.RoleCustomer}
)

func day(n int) time.Time {
	return time.Date(2025, 6, 10+n, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	svc          *Service
	reservations *fakeReservations
	resources    *fakeResources
	notifier     *fakeNotifier
	conflicts    *fakeConflicts
}

func newFixture(items ...*domain.Reservation) *fixture {
	store := &fakeReservations{items: map[int64]*domain.Reservation{}}
	for _, r := range items {
		store.items[r.ID] = r
	}

	cars := map[int64]*domain.Car{
		carID: {ID: carID, OwnerID: ownerID, HourlyRate: ptr.Ptr(10.0), DailyRate: ptr.Ptr(100.0)},
	}

	f := &fixture{
		reservations: store,
		resources:    &fakeResources{cars: cars},
		notifier:     &fakeNotifier{},
		conflicts:    &fakeConflicts{},
	}

	log := logger.NewNop()
	f.svc = NewService(
		f.reservations,
		f.resources,
		lock.NewLocalLocker(time.Second),
		passthroughTx{},
		aftercommit.NewRunner(log, nil),
		f.notifier,
		f.conflicts,
		log,
	)
	f.svc.timeProvider = fixedTime{now: now}
	return f
}

// rental почасовая аренда 10:00-12:00 по ставке 10
func rental(id int64, status domain.ReservationStatus, start time.Time) *domain.Reservation {
	return &domain.Reservation{
		ID:          id,
		Kind:        domain.KindRental,
		ResourceID:  carID,
		CustomerID:  customerID,
		OwnerID:     ownerID,
		StartAt:     start,
		EndAt:       start.Add(2 * time.Hour),
		RateType:    domain.RateHourly,
		Rate:        ptr.Ptr(10.0),
		TotalHours:  ptr.Ptr(2.0),
		TotalAmount: 20,
		Deposit:     domain.Deposit{Amount: 4},
		Status:      status,
		StatusHistory: []domain.StatusHistoryEntry{
			{Status: domain.StatusPending, ActorID: customerID, At: now},
		},
	}
}

func TestGetByID(t *testing.T) {
	f := newFixture(rental(1, domain.StatusPending, day(0).Add(10*time.Hour)))

	for _, actor := range []domain.Actor{client, owner, admin} {
		got, err := f.svc.GetByID(context.Background(), 1, actor)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.ID)
	}

	_, err := f.svc.GetByID(context.Background(), 1, stranger)
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))

	_, err = f.svc.GetByID(context.Background(), 404, client)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestListByCustomer(t *testing.T) {
	cancelled := rental(2, domain.StatusCancelled, day(1).Add(10*time.Hour))
	f := newFixture(rental(1, domain.StatusPending, day(0).Add(10*time.Hour)), cancelled)

	got, err := f.svc.ListByCustomer(context.Background(), client, &models.ListByCustomerRequest{CustomerID: customerID})
	require.NoError(t, err)
	assert.Len(t, got.Reservations, 2)

	got, err = f.svc.ListByCustomer(context.Background(), admin, &models.ListByCustomerRequest{CustomerID: customerID, Status: ptr.Ptr("cancelled")})
	require.NoError(t, err)
	require.Len(t, got.Reservations, 1)
	assert.Equal(t, int64(2), got.Reservations[0].ID)

	_, err = f.svc.ListByCustomer(context.Background(), stranger, &models.ListByCustomerRequest{CustomerID: customerID})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.ListByCustomer(context.Background(), client, &models.ListByCustomerRequest{CustomerID: customerID, Status: ptr.Ptr("lost")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListByResource(t *testing.T) {
	f := newFixture(
		rental(1, domain.StatusPending, day(0).Add(10*time.Hour)),
		rental(2, domain.StatusCompleted, day(1).Add(10*time.Hour)),
	)

	got, err := f.svc.ListByResource(context.Background(), owner, &models.ListByResourceRequest{ResourceID: carID})
	require.NoError(t, err)
	assert.Len(t, got.Reservations, 1)

	got, err = f.svc.ListByResource(context.Background(), owner, &models.ListByResourceRequest{ResourceID: carID, IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, got.Reservations, 2)

	_, err = f.svc.ListByResource(context.Background(), client, &models.ListByResourceRequest{ResourceID: carID})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.ListByResource(context.Background(), owner, &models.ListByResourceRequest{ResourceID: 404})
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestTransition_ConfirmRental(t *testing.T) {
	f := newFixture(rental(1, domain.StatusPending, day(0).Add(10*time.Hour)))

	got, err := f.svc.Transition(context.Background(), 1, owner, &models.TransitionRequest{Status: "confirmed", Note: "ok"})
	require.NoError(t, err)

	assert.Equal(t, "confirmed", got.Status)
	require.Len(t, got.StatusHistory, 2)
	assert.Equal(t, ownerID, got.StatusHistory[1].ActorID)
	assert.Equal(t, "ok", got.StatusHistory[1].Note)

	assert.Equal(t, []availabilityUpdate{{resourceID: carID, status: domain.AvailabilityRented}}, f.resources.updates)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, domain.SingleUser(customerID), f.notifier.sent[0].Audience)
	assert.Equal(t, domain.NotifyReservationStatus, f.notifier.sent[0].Type)
}

func TestTransition_TestDriveKeepsAvailability(t *testing.T) {
	drive := rental(1, domain.StatusPending, day(0).Add(10*time.Hour))
	drive.Kind = domain.KindTestDrive

	f := newFixture(drive)

	_, err := f.svc.Transition(context.Background(), 1, owner, &models.TransitionRequest{Status: "confirmed"})
	require.NoError(t, err)
	assert.Empty(t, f.resources.updates)
}

func TestTransition_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   domain.ReservationStatus
		actor    domain.Actor
		target   string
		wantKind domain.Kind
	}{
		{"customer cannot confirm", domain.StatusPending, client, "confirmed", domain.KindUnauthorized},
		{"stranger", domain.StatusPending, stranger, "confirmed", domain.KindUnauthorized},
		{"completed is terminal", domain.StatusCompleted, owner, "confirmed", domain.KindInvalidStateTransition},
		{"pending cannot start", domain.StatusPending, owner, "active", domain.KindInvalidStateTransition},
		{"unknown status", domain.StatusPending, owner, "lost", domain.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(rental(1, tt.status, day(0).Add(10*time.Hour)))

			_, err := f.svc.Transition(context.Background(), 1, tt.actor, &models.TransitionRequest{Status: tt.target})
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, domain.KindOf(err))

			stored := f.reservations.items[1]
			assert.Equal(t, tt.status, stored.Status)
			assert.Len(t, stored.StatusHistory, 1)
			assert.Empty(t, f.notifier.sent)
		})
	}
}

func TestCancel_ConfirmedRentalWithFullRefund(t *testing.T) {
	// До начала больше 48 часов
	f := newFixture(rental(1, domain.StatusConfirmed, day(0).Add(10*time.Hour)))

	got, err := f.svc.Cancel(context.Background(), 1, client, &models.CancelRequest{Reason: "plans changed"})
	require.NoError(t, err)

	assert.Equal(t, 20.0, got.RefundAmount)
	assert.Equal(t, "cancelled", got.Reservation.Status)
	require.NotNil(t, got.Reservation.Cancellation)
	assert.Equal(t, customerID, got.Reservation.Cancellation.CancelledBy)
	assert.Equal(t, "plans changed", got.Reservation.Cancellation.Reason)

	assert.Equal(t, []availabilityUpdate{{resourceID: carID, status: domain.AvailabilityAvailable}}, f.resources.updates)

	require.Len(t, f.notifier.sent, 2)
	assert.Equal(t, domain.SingleUser(ownerID), f.notifier.sent[0].Audience)
	assert.Equal(t, domain.AllAdmins(), f.notifier.sent[1].Audience)
}

func TestCancel_RefundTiers(t *testing.T) {
	tests := []struct {
		name       string
		startIn    time.Duration
		wantRefund float64
	}{
		{"more than 48h", 49 * time.Hour, 20},
		{"exactly 48h", 48 * time.Hour, 10},
		{"between 24h and 48h", 30 * time.Hour, 10},
		{"exactly 24h", 24 * time.Hour, 0},
		{"less than 24h", 2 * time.Hour, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(rental(1, domain.StatusPending, now.Add(tt.startIn)))

			got, err := f.svc.Cancel(context.Background(), 1, owner, &models.CancelRequest{})
			require.NoError(t, err)
			assert.Equal(t, tt.wantRefund, got.RefundAmount)

			// Отмена ожидающей аренды не трогает машину
			assert.Empty(t, f.resources.updates)
			assert.Equal(t, domain.SingleUser(customerID), f.notifier.sent[0].Audience)
			if tt.wantRefund > 0 {
				assert.Len(t, f.notifier.sent, 2)
			} else {
				assert.Len(t, f.notifier.sent, 1)
			}
		})
	}
}

func TestCancel_Errors(t *testing.T) {
	f := newFixture(rental(1, domain.StatusCompleted, day(0).Add(10*time.Hour)))

	_, err := f.svc.Cancel(context.Background(), 1, client, &models.CancelRequest{})
	assert.Equal(t, domain.KindInvalidStateTransition, domain.KindOf(err))

	_, err = f.svc.Cancel(context.Background(), 1, stranger, &models.CancelRequest{})
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))

	_, err = f.svc.Cancel(context.Background(), 404, client, &models.CancelRequest{})
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestTransition_CancelComputesRefund(t *testing.T) {
	f := newFixture(rental(1, domain.StatusActive, day(0).Add(10*time.Hour)))

	got, err := f.svc.Transition(context.Background(), 1, admin, &models.TransitionRequest{Status: "cancelled", Note: "damage"})
	require.NoError(t, err)

	assert.Equal(t, "cancelled", got.Status)
	require.NotNil(t, got.Cancellation)
	assert.Equal(t, 20.0, got.Cancellation.RefundAmount)
	assert.Equal(t, []availabilityUpdate{{resourceID: carID, status: domain.AvailabilityAvailable}}, f.resources.updates)
}

func TestReschedule(t *testing.T) {
	f := newFixture(rental(1, domain.StatusConfirmed, day(0).Add(10*time.Hour)))

	// Новое окно пересекается со старым окном этого же бронирования
	req := &models.RescheduleRequest{StartAt: day(0).Add(11 * time.Hour), EndAt: day(0).Add(14 * time.Hour)}
	got, err := f.svc.Reschedule(context.Background(), 1, client, req)
	require.NoError(t, err)

	assert.Equal(t, req.StartAt, got.StartAt)
	assert.Equal(t, req.EndAt, got.EndAt)
	assert.Equal(t, "confirmed", got.Status)
	assert.Equal(t, 30.0, got.TotalAmount)
	assert.Equal(t, 6.0, got.Deposit.Amount)
	require.Len(t, got.StatusHistory, 2)
	assert.Equal(t, domain.NoteRescheduled, got.StatusHistory[1].Note)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, domain.SingleUser(ownerID), f.notifier.sent[0].Audience)
	assert.Equal(t, domain.NotifyReservationMoved, f.notifier.sent[0].Type)
}

func TestReschedule_NegotiatedKeepsRate(t *testing.T) {
	r := rental(1, domain.StatusPending, day(0).Add(10*time.Hour))
	r.Rate = ptr.Ptr(8.0)
	r.IsNegotiated = true
	r.TotalAmount = 16
	r.OriginalAmount = ptr.Ptr(20.0)

	f := newFixture(r)

	got, err := f.svc.Reschedule(context.Background(), 1, client, &models.RescheduleRequest{
		StartAt: day(1).Add(10 * time.Hour),
		EndAt:   day(1).Add(13 * time.Hour),
	})
	require.NoError(t, err)

	assert.True(t, got.IsNegotiated)
	require.NotNil(t, got.Rate)
	assert.Equal(t, 8.0, *got.Rate)
	assert.Equal(t, 24.0, got.TotalAmount)
	require.NotNil(t, got.OriginalAmount)
	assert.Equal(t, 30.0, *got.OriginalAmount)
}

func TestReschedule_Errors(t *testing.T) {
	target := &models.RescheduleRequest{StartAt: day(2).Add(10 * time.Hour), EndAt: day(2).Add(12 * time.Hour)}

	t.Run("conflict with another reservation", func(t *testing.T) {
		other := rental(2, domain.StatusPending, day(2).Add(12*time.Hour))
		other.CustomerID = 101
		f := newFixture(rental(1, domain.StatusPending, day(0).Add(10*time.Hour)), other)

		_, err := f.svc.Reschedule(context.Background(), 1, client, target)
		assert.ErrorIs(t, err, ErrReservationConflict)
		assert.Equal(t, []string{"check"}, f.conflicts.sources)
		assert.Equal(t, day(0).Add(10*time.Hour), f.reservations.items[1].StartAt)
	})

	t.Run("owner cannot reschedule", func(t *testing.T) {
		f := newFixture(rental(1, domain.StatusPending, day(0).Add(10*time.Hour)))

		_, err := f.svc.Reschedule(context.Background(), 1, owner, target)
		assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
	})

	t.Run("active rental", func(t *testing.T) {
		f := newFixture(rental(1, domain.StatusActive, day(0).Add(10*time.Hour)))

		_, err := f.svc.Reschedule(context.Background(), 1, client, target)
		assert.Equal(t, domain.KindInvalidStateTransition, domain.KindOf(err))
	})

	t.Run("window in the past", func(t *testing.T) {
		f := newFixture(rental(1, domain.StatusPending, day(0).Add(10*time.Hour)))

		_, err := f.svc.Reschedule(context.Background(), 1, client, &models.RescheduleRequest{
			StartAt: now.Add(-time.Hour),
			EndAt:   now.Add(time.Hour),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("serialization failure stays retryable", func(t *testing.T) {
		f := newFixture(rental(1, domain.StatusPending, day(0).Add(10*time.Hour)))
		f.reservations.rangeErr = &pq.Error{Code: pgerr.CodeSerializationFailure}

		_, err := f.svc.Reschedule(context.Background(), 1, client, target)
		assert.ErrorIs(t, err, ErrInternal)
		assert.True(t, pgerr.IsRetryable(err))
		assert.Equal(t, pgerr.CodeSerializationFailure, pgerr.Code(err))
	})
}

func TestGetAvailability(t *testing.T) {
	cancelled := rental(2, domain.StatusCancelled, day(0).Add(14*time.Hour))
	f := newFixture(rental(1, domain.StatusConfirmed, day(0).Add(10*time.Hour)), cancelled)

	got, err := f.svc.GetAvailability(context.Background(), carID, day(0), day(1))
	require.NoError(t, err)

	require.Len(t, got.Entries, 3)
	assert.Equal(t, "available", got.Entries[0].State)
	assert.Equal(t, day(0), got.Entries[0].Start)
	assert.Equal(t, day(0).Add(10*time.Hour), got.Entries[0].End)

	assert.Equal(t, "booked", got.Entries[1].State)
	require.NotNil(t, got.Entries[1].ReservationID)
	assert.Equal(t, int64(1), *got.Entries[1].ReservationID)

	assert.Equal(t, "available", got.Entries[2].State)
	assert.Equal(t, day(0).Add(12*time.Hour), got.Entries[2].Start)
	assert.Equal(t, day(1), got.Entries[2].End)

	_, err = f.svc.GetAvailability(context.Background(), carID, day(1), day(0))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.GetAvailability(context.Background(), 404, day(0), day(1))
	assert.ErrorIs(t, err, ErrResourceNotFound)
}
