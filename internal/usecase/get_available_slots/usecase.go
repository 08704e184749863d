package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	resourceRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/resource"
	scheduleRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/schedule"
)

// UseCase use case для получения свободных слотов машины на день
type UseCase struct {
	reservationRepo ReservationRepository
	resourceRepo    ResourceRepository
	scheduleRepo    ScheduleRepository
	defaults        domain.ScheduleDefaults
	location        *time.Location
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
// location - часовой пояс для машин, у которых он не задан
func NewUseCase(
	reservationRepo ReservationRepository,
	resourceRepo ResourceRepository,
	scheduleRepo ScheduleRepository,
	defaults domain.ScheduleDefaults,
	location *time.Location,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		resourceRepo:    resourceRepo,
		scheduleRepo:    scheduleRepo,
		defaults:        defaults,
		location:        location,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case получения свободных слотов
// Результат каждый раз вычисляется заново и не кэшируется
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: resource=%d, date=%s", req.ResourceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем машину
	car, err := uc.resourceRepo.GetByID(ctx, req.ResourceID)
	if err != nil {
		if errors.Is(err, resourceRepo.ErrCarNotFound) {
			uc.logger.Warn("GetAvailableSlots: resource id=%d not found", req.ResourceID)
			return nil, ErrResourceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get resource id=%d: %v", req.ResourceID, err)
		return nil, fmt.Errorf("%w: failed to get resource: %w", ErrInternal, err)
	}

	// 4. Получаем расписание с учетом иерархии
	schedule, err := uc.scheduleRepo.GetWithHierarchy(ctx, car.OwnerID, car.ID)
	if err != nil && !errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
		uc.logger.Error("GetAvailableSlots: failed to get schedule: %v", err)
		return nil, fmt.Errorf("%w: failed to get schedule: %w", ErrInternal, err)
	}

	// Если расписание не найдено, используем значения по умолчанию
	if schedule == nil {
		schedule = uc.defaults.For(car.OwnerID, car.ID)
		uc.logger.Info("GetAvailableSlots: using default schedule for resource=%d", car.ID)
	} else {
		uc.logger.Info("GetAvailableSlots: using schedule id=%d", schedule.ID)
	}

	// 5. Строим сетку в часовом поясе машины
	loc := car.Location(uc.location)
	slots, err := generateSlots(req.Date, loc, schedule)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to generate slots: %v", err)
		return nil, fmt.Errorf("%w: failed to generate slots: %w", ErrInternal, err)
	}

	y, m, d := req.Date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, loc)

	response := &Response{
		ResourceID:          car.ID,
		Date:                day,
		TimeZone:            loc.String(),
		SlotDurationMinutes: schedule.SlotDurationMinutes,
		Slots:               []domain.Slot{},
	}

	if len(slots) == 0 {
		return response, nil
	}

	// 6. Получаем активные бронирования, задевающие рабочий день
	reservations, err := uc.reservationRepo.GetActiveByResourceInRange(ctx, car.ID, slots[0].Start, slots[len(slots)-1].End)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get reservations: %v", err)
		return nil, fmt.Errorf("%w: failed to get reservations: %w", ErrInternal, err)
	}

	// 7. Отбрасываем прошедшие и занятые слоты
	response.Slots = filterAvailable(slots, reservations, now)

	uc.logger.Info("GetAvailableSlots: %d of %d slots available for resource=%d, date=%s",
		len(response.Slots), len(slots), car.ID, day.Format(domain.DateFormat))

	return response, nil
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ResourceID <= 0 {
		return fmt.Errorf("%w: resourceID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	return nil
}
