package get_available_slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	resourceRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/resource"
	scheduleRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-RentalService/pkg/logger"
)

type fakeReservations struct {
	items []*domain.Reservation
	err   error
}

func (f *fakeReservations) GetActiveByResourceInRange(_ context.Context, resourceID int64, from, to time.Time) ([]*domain.Reservation, error) {
	if f.err != nil {
		return nil, f.err
	}
	window := domain.Window{Start: from, End: to}
	result := make([]*domain.Reservation, 0)
	for _, r := range f.items {
		if r.ResourceID == resourceID && r.Status.IsActive() && domain.Overlaps(r.Window(), window) {
			result = append(result, r)
		}
	}
	return result, nil
}

type fakeResources struct {
	cars map[int64]*domain.Car
}

func (f *fakeResources) GetByID(_ context.Context, id int64) (*domain.Car, error) {
	car, ok := f.cars[id]
	if !ok {
		return nil, resourceRepo.ErrCarNotFound
	}
	return car, nil
}

type fakeSchedules struct {
	schedule *domain.ResourceSchedule
}

func (f *fakeSchedules) GetWithHierarchy(_ context.Context, _ int64, _ int64) (*domain.ResourceSchedule, error) {
	if f.schedule == nil {
		return nil, scheduleRepo.ErrScheduleNotFound
	}
	return f.schedule, nil
}

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time {
	return f.now
}

var day = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func newUseCase(reservations *fakeReservations, schedules *fakeSchedules, now time.Time) *UseCase {
	uc := NewUseCase(
		reservations,
		&fakeResources{cars: map[int64]*domain.Car{1: {ID: 1, OwnerID: 200}}},
		schedules,
		domain.ScheduleDefaults{SlotDurationMinutes: 60, OpenTime: "09:00", CloseTime: "18:00"},
		time.UTC,
		logger.NewNop(),
	)
	uc.timeProvider = fixedTime{now: now}
	return uc
}

func startsOf(slots []domain.Slot) []int {
	hours := make([]int, 0, len(slots))
	for _, slot := range slots {
		hours = append(hours, slot.Start.Hour())
	}
	return hours
}

func TestExecute_DefaultGrid(t *testing.T) {
	uc := newUseCase(&fakeReservations{}, &fakeSchedules{}, day.Add(-time.Hour))

	resp, err := uc.Execute(context.Background(), &Request{ResourceID: 1, Date: day})
	require.NoError(t, err)

	assert.Equal(t, 60, resp.SlotDurationMinutes)
	assert.Equal(t, "UTC", resp.TimeZone)
	assert.Equal(t, []int{9, 10, 11, 12, 13, 14, 15, 16, 17}, startsOf(resp.Slots))
	assert.Equal(t, at(18, 0), resp.Slots[len(resp.Slots)-1].End)
}

func TestExecute_DropsConflictingSlotsInclusively(t *testing.T) {
	reservations := &fakeReservations{items: []*domain.Reservation{
		{ID: 1, ResourceID: 1, Status: domain.StatusConfirmed, StartAt: at(10, 0), EndAt: at(11, 0)},
		{ID: 2, ResourceID: 1, Status: domain.StatusCancelled, StartAt: at(15, 0), EndAt: at(16, 0)},
	}}
	uc := newUseCase(reservations, &fakeSchedules{}, day.Add(-time.Hour))

	resp, err := uc.Execute(context.Background(), &Request{ResourceID: 1, Date: day})
	require.NoError(t, err)

	// Слоты, касающиеся брони 10:00-11:00 границей, тоже заняты
	assert.Equal(t, []int{12, 13, 14, 15, 16, 17}, startsOf(resp.Slots))
}

func TestExecute_DropsPastSlots(t *testing.T) {
	uc := newUseCase(&fakeReservations{}, &fakeSchedules{}, at(13, 30))

	resp, err := uc.Execute(context.Background(), &Request{ResourceID: 1, Date: day})
	require.NoError(t, err)

	assert.Equal(t, []int{14, 15, 16, 17}, startsOf(resp.Slots))
}

func TestExecute_PastDayIsEmpty(t *testing.T) {
	uc := newUseCase(&fakeReservations{}, &fakeSchedules{}, day.AddDate(0, 0, 2))

	resp, err := uc.Execute(context.Background(), &Request{ResourceID: 1, Date: day})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_StoredSchedule(t *testing.T) {
	schedules := &fakeSchedules{schedule: &domain.ResourceSchedule{
		ID:                  7,
		OwnerID:             200,
		SlotDurationMinutes: 45,
		OpenTime:            "10:00",
		CloseTime:           "12:00",
	}}
	uc := newUseCase(&fakeReservations{}, schedules, day.Add(-time.Hour))

	resp, err := uc.Execute(context.Background(), &Request{ResourceID: 1, Date: day})
	require.NoError(t, err)

	// 10:00, 10:45; слот 11:30-12:15 не помещается до закрытия
	require.Len(t, resp.Slots, 2)
	assert.Equal(t, at(10, 0), resp.Slots[0].Start)
	assert.Equal(t, at(10, 45), resp.Slots[1].Start)
	assert.Equal(t, 45, resp.SlotDurationMinutes)
}

func TestExecute_CarTimeZone(t *testing.T) {
	zone := "Europe/Moscow"
	uc := NewUseCase(
		&fakeReservations{},
		&fakeResources{cars: map[int64]*domain.Car{1: {ID: 1, OwnerID: 200, TimeZone: &zone}}},
		&fakeSchedules{},
		domain.ScheduleDefaults{SlotDurationMinutes: 60, OpenTime: "09:00", CloseTime: "18:00"},
		time.UTC,
		logger.NewNop(),
	)
	uc.timeProvider = fixedTime{now: day.Add(-24 * time.Hour)}

	resp, err := uc.Execute(context.Background(), &Request{ResourceID: 1, Date: day})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Slots)
	assert.Equal(t, zone, resp.TimeZone)
	// 09:00 по Москве = 06:00 UTC
	assert.Equal(t, 6, resp.Slots[0].Start.UTC().Hour())
}

func TestExecute_Idempotent(t *testing.T) {
	reservations := &fakeReservations{items: []*domain.Reservation{
		{ID: 1, ResourceID: 1, Status: domain.StatusPending, StartAt: at(13, 0), EndAt: at(14, 0)},
	}}
	uc := newUseCase(reservations, &fakeSchedules{}, day.Add(-time.Hour))

	first, err := uc.Execute(context.Background(), &Request{ResourceID: 1, Date: day})
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), &Request{ResourceID: 1, Date: day})
	require.NoError(t, err)

	assert.Equal(t, first.Slots, second.Slots)
}

func TestExecute_Errors(t *testing.T) {
	uc := newUseCase(&fakeReservations{}, &fakeSchedules{}, day)

	_, err := uc.Execute(context.Background(), &Request{ResourceID: 0, Date: day})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = uc.Execute(context.Background(), &Request{ResourceID: 99, Date: day})
	assert.ErrorIs(t, err, ErrResourceNotFound)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	failing := newUseCase(&fakeReservations{err: errors.New("db down")}, &fakeSchedules{}, day.Add(-time.Hour))
	_, err = failing.Execute(context.Background(), &Request{ResourceID: 1, Date: day})
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}
