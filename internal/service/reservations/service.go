package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/infra/lock"
	reservationRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/reservation"
	resourceRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/resource"
	"github.com/m04kA/SMC-RentalService/internal/service/reservations/models"
	"github.com/m04kA/SMC-RentalService/pkg/aftercommit"
)

// MaxAvailabilityRange ограничивает период календаря занятости
const MaxAvailabilityRange = 366 * 24 * time.Hour

// Service сервис для работы с бронированиями
type Service struct {
	reservationRepo ReservationRepository
	resourceRepo    ResourceRepository
	locker          Locker
	txManager       TransactionManager
	afterCommit     AfterCommit
	notifier        Notifier
	conflicts       ConflictRecorder
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	reservationRepo ReservationRepository,
	resourceRepo ResourceRepository,
	locker Locker,
	txManager TransactionManager,
	afterCommit AfterCommit,
	notifier Notifier,
	conflicts ConflictRecorder,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		resourceRepo:    resourceRepo,
		locker:          locker,
		txManager:       txManager,
		afterCommit:     afterCommit,
		notifier:        notifier,
		conflicts:       conflicts,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// GetByID получает бронирование по ID
// Видеть бронирование могут клиент, владелец машины и администратор
func (s *Service) GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.ReservationResponse, error) {
	s.logger.Info("GetByID: fetching reservation id=%d for actor=%d", id, actor.ID)

	reservation, err := s.get(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !reservation.IsParty(actor) {
		s.logger.Warn("GetByID: access denied for actor=%d to reservation id=%d", actor.ID, id)
		return nil, ErrAccessDenied
	}

	s.logger.Info("GetByID: successfully fetched reservation id=%d", id)
	return models.FromDomainReservation(reservation), nil
}

// ListByCustomer получает историю бронирований клиента
// Доступно самому клиенту и администратору
func (s *Service) ListByCustomer(ctx context.Context, actor domain.Actor, req *models.ListByCustomerRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("ListByCustomer: fetching reservations for customer=%d, actor=%d, status=%v", req.CustomerID, actor.ID, req.Status)

	if actor.ID != req.CustomerID && !actor.IsAdmin() {
		s.logger.Warn("ListByCustomer: access denied for actor=%d to customer=%d", actor.ID, req.CustomerID)
		return nil, ErrAccessDenied
	}

	var status *domain.ReservationStatus
	if req.Status != nil {
		parsed, err := models.ToDomainReservationStatus(*req.Status)
		if err != nil {
			s.logger.Warn("ListByCustomer: invalid status=%s", *req.Status)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		status = &parsed
	}

	reservations, err := s.reservationRepo.GetByCustomerID(ctx, req.CustomerID, status)
	if err != nil {
		s.logger.Error("ListByCustomer: repository error for customer=%d: %v", req.CustomerID, err)
		return nil, fmt.Errorf("%w: ListByCustomer - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("ListByCustomer: successfully fetched %d reservations for customer=%d", len(reservations), req.CustomerID)
	return models.FromDomainReservationList(reservations), nil
}

// ListByResource получает бронирования машины с фильтрацией
// Доступно владельцу машины и администратору
func (s *Service) ListByResource(ctx context.Context, actor domain.Actor, req *models.ListByResourceRequest) (*models.ReservationListResponse, error) {
	logMsg := fmt.Sprintf("ListByResource: fetching reservations for resource=%d, actor=%d", req.ResourceID, actor.ID)
	if req.From != nil && req.To != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.From.Format(time.RFC3339), req.To.Format(time.RFC3339))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	if req.IncludeInactive {
		logMsg += ", includeInactive=true"
	}
	s.logger.Info(logMsg)

	car, err := s.getResource(ctx, "ListByResource", req.ResourceID)
	if err != nil {
		return nil, err
	}

	if car.OwnerID != actor.ID && !actor.IsAdmin() {
		s.logger.Warn("ListByResource: actor=%d is not the owner of resource=%d", actor.ID, req.ResourceID)
		return nil, ErrAccessDenied
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("ListByResource: invalid filter for resource=%d: %v", req.ResourceID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	reservations, err := s.reservationRepo.GetByResourceWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("ListByResource: repository error for resource=%d: %v", req.ResourceID, err)
		return nil, fmt.Errorf("%w: ListByResource - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("ListByResource: successfully fetched %d reservations for resource=%d", len(reservations), req.ResourceID)
	return models.FromDomainReservationList(reservations), nil
}

// Transition переводит бронирование в новый статус
// Отмена через этот метод считает возврат так же, как Cancel
func (s *Service) Transition(ctx context.Context, id int64, actor domain.Actor, req *models.TransitionRequest) (*models.ReservationResponse, error) {
	s.logger.Info("Transition: reservation id=%d to status=%s by actor=%d", id, req.Status, actor.ID)

	target, err := models.ToDomainReservationStatus(req.Status)
	if err != nil {
		s.logger.Warn("Transition: invalid status=%s for reservation id=%d", req.Status, id)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	if target == domain.StatusCancelled {
		result, err := s.Cancel(ctx, id, actor, &models.CancelRequest{Reason: req.Note})
		if err != nil {
			return nil, err
		}
		return &result.Reservation, nil
	}

	now := s.timeProvider.Now()

	var (
		reservation *domain.Reservation
		from        domain.ReservationStatus
	)

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		// 1. Получаем бронирование с блокировкой строки
		r, err := s.get(txCtx, "Transition", id)
		if err != nil {
			return err
		}
		from = r.Status

		// 2. Проверяем права и таблицу переходов
		if err := r.Transition(actor, target, req.Note, now); err != nil {
			s.logger.Warn("Transition: reservation id=%d: %v", id, err)
			return err
		}

		// 3. Сохраняем
		updated, err := s.reservationRepo.Update(txCtx, r)
		if err != nil {
			s.logger.Error("Transition: failed to update reservation id=%d: %v", id, err)
			return fmt.Errorf("%w: Transition - repository error: %w", ErrInternal, err)
		}

		reservation = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Transition: reservation id=%d moved from %s to %s", id, from, target)

	// 4. Побочные эффекты не влияют на результат
	hooks := []aftercommit.Hook{s.notifyHook(statusChangedNotification(reservation))}
	if hook, ok := s.availabilityHook(reservation, from); ok {
		hooks = append(hooks, hook)
	}
	s.afterCommit.Run(ctx, hooks...)

	return models.FromDomainReservation(reservation), nil
}

// Cancel отменяет бронирование и считает сумму возврата
// Отменить могут клиент, владелец машины и администратор
func (s *Service) Cancel(ctx context.Context, id int64, actor domain.Actor, req *models.CancelRequest) (*models.CancelResponse, error) {
	s.logger.Info("Cancel: cancelling reservation id=%d by actor=%d", id, actor.ID)

	if len(req.Reason) > domain.MaxCancellationReasonLength {
		s.logger.Warn("Cancel: reason is too long for reservation id=%d", id)
		return nil, fmt.Errorf("%w: reason must be at most %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	now := s.timeProvider.Now()

	var (
		reservation *domain.Reservation
		from        domain.ReservationStatus
		refund      float64
	)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		r, err := s.get(txCtx, "Cancel", id)
		if err != nil {
			return err
		}
		from = r.Status

		refund, err = r.Cancel(actor, req.Reason, now)
		if err != nil {
			s.logger.Warn("Cancel: reservation id=%d: %v", id, err)
			return err
		}

		updated, err := s.reservationRepo.Update(txCtx, r)
		if err != nil {
			s.logger.Error("Cancel: failed to update reservation id=%d: %v", id, err)
			return fmt.Errorf("%w: Cancel - repository error: %w", ErrInternal, err)
		}

		reservation = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cancel: successfully cancelled reservation id=%d, refund=%.2f", id, refund)

	var hooks []aftercommit.Hook
	for _, n := range cancelledNotifications(reservation, actor, refund) {
		hooks = append(hooks, s.notifyHook(n))
	}
	if hook, ok := s.availabilityHook(reservation, from); ok {
		hooks = append(hooks, hook)
	}
	s.afterCommit.Run(ctx, hooks...)

	return &models.CancelResponse{
		Reservation:  *models.FromDomainReservation(reservation),
		RefundAmount: refund,
	}, nil
}

// Reschedule переносит бронирование на новое окно
// Проверка пересечений исключает само бронирование, аренда пересчитывается по сохраненной ставке
func (s *Service) Reschedule(ctx context.Context, id int64, actor domain.Actor, req *models.RescheduleRequest) (*models.ReservationResponse, error) {
	window := req.Window()
	s.logger.Info("Reschedule: reservation id=%d to %s - %s by actor=%d",
		id, window.Start.Format(time.RFC3339), window.End.Format(time.RFC3339), actor.ID)

	now := s.timeProvider.Now()

	// 1. Валидация окна
	if err := window.Validate(); err != nil {
		s.logger.Warn("Reschedule: invalid window: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if window.Start.Before(now) {
		s.logger.Warn("Reschedule: window starts in the past")
		return nil, fmt.Errorf("%w: reservation cannot start in the past", ErrInvalidInput)
	}

	// 2. Узнаем машину, чтобы взять ее блокировку
	current, err := s.get(ctx, "Reschedule", id)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, lock.ResourceKey(current.ResourceID))
	if err != nil {
		if errors.Is(err, lock.ErrResourceBusy) {
			s.logger.Warn("Reschedule: resource id=%d is busy", current.ResourceID)
			return nil, err
		}
		s.logger.Error("Reschedule: failed to acquire lock for resource id=%d: %v", current.ResourceID, err)
		return nil, fmt.Errorf("%w: failed to acquire lock: %w", ErrInternal, err)
	}
	defer release()

	var reservation *domain.Reservation

	// 3. Проверка и запись в сериализуемой транзакции
	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		r, err := s.get(txCtx, "Reschedule", id)
		if err != nil {
			return err
		}

		if err := r.CanReschedule(actor); err != nil {
			s.logger.Warn("Reschedule: reservation id=%d: %v", id, err)
			return err
		}

		existing, err := s.reservationRepo.GetActiveByResourceInRange(txCtx, r.ResourceID, window.Start, window.End)
		if err != nil {
			s.logger.Error("Reschedule: failed to get reservations: %v", err)
			return fmt.Errorf("%w: Reschedule - repository error: %w", ErrInternal, err)
		}

		if conflict := domain.FindConflict(existing, window, &r.ID); conflict != nil {
			s.conflicts.IncReservationConflict("check")
			s.logger.Warn("Reschedule: window overlaps reservation id=%d", conflict.ID)
			return fmt.Errorf("%w: overlaps reservation %d", ErrReservationConflict, conflict.ID)
		}

		r.StartAt = window.Start
		r.EndAt = window.End
		// Явные слоты относились к старому окну
		r.TimeSlots = nil

		if r.Kind.IsPriced() {
			if err := s.reprice(txCtx, r); err != nil {
				return err
			}
		}

		r.StatusHistory = append(r.StatusHistory, domain.StatusHistoryEntry{
			Status:  r.Status,
			ActorID: actor.ID,
			Note:    domain.NoteRescheduled,
			At:      now,
		})

		updated, err := s.reservationRepo.Update(txCtx, r)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrReservationOverlap) {
				s.conflicts.IncReservationConflict("constraint")
				s.logger.Warn("Reschedule: overlap rejected by database constraint")
				return ErrReservationConflict
			}
			s.logger.Error("Reschedule: failed to update reservation id=%d: %v", id, err)
			return fmt.Errorf("%w: Reschedule - repository error: %w", ErrInternal, err)
		}

		reservation = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Reschedule: successfully rescheduled reservation id=%d, total=%.2f", id, reservation.TotalAmount)

	s.afterCommit.Run(ctx, s.notifyHook(rescheduledNotification(reservation, actor)))

	return models.FromDomainReservation(reservation), nil
}

// GetAvailability строит календарь занятости машины за период
func (s *Service) GetAvailability(ctx context.Context, resourceID int64, from, to time.Time) (*models.AvailabilityResponse, error) {
	s.logger.Info("GetAvailability: resource=%d, from=%s, to=%s", resourceID, from.Format(time.RFC3339), to.Format(time.RFC3339))

	if !from.Before(to) {
		s.logger.Warn("GetAvailability: from must be before to")
		return nil, fmt.Errorf("%w: from must be before to", ErrInvalidInput)
	}
	if to.Sub(from) > MaxAvailabilityRange {
		s.logger.Warn("GetAvailability: range is too long")
		return nil, fmt.Errorf("%w: range must not exceed %d days", ErrInvalidInput, int(MaxAvailabilityRange.Hours()/24))
	}

	if _, err := s.getResource(ctx, "GetAvailability", resourceID); err != nil {
		return nil, err
	}

	reservations, err := s.reservationRepo.GetActiveByResourceInRange(ctx, resourceID, from, to)
	if err != nil {
		s.logger.Error("GetAvailability: repository error for resource=%d: %v", resourceID, err)
		return nil, fmt.Errorf("%w: GetAvailability - repository error: %w", ErrInternal, err)
	}

	entries := domain.BuildCalendar(reservations, from, to)

	s.logger.Info("GetAvailability: resource=%d has %d active reservations in range", resourceID, len(reservations))
	return models.FromDomainCalendar(resourceID, from, to, entries), nil
}

// Вспомогательные методы

// reprice пересчитывает аренду по сохраненной ставке
// Для согласованной ставки исходная сумма считается по текущему тарифу машины
func (s *Service) reprice(ctx context.Context, r *domain.Reservation) error {
	if r.Rate == nil {
		s.logger.Error("Reschedule: rental id=%d has no stored rate", r.ID)
		return fmt.Errorf("%w: rental %d has no stored rate", ErrInternal, r.ID)
	}

	input := domain.PricingInput{
		RateType:           r.RateType,
		Window:             r.Window(),
		BaseRate:           r.Rate,
		AdditionalServices: r.AdditionalServices,
	}

	if r.IsNegotiated {
		car, err := s.getResource(ctx, "Reschedule", r.ResourceID)
		if err != nil {
			return err
		}
		listed, err := car.RateFor(r.RateType)
		if err != nil {
			s.logger.Warn("Reschedule: resource id=%d cannot be priced: %v", car.ID, err)
			return err
		}
		input.BaseRate = &listed
		input.NegotiatedRate = r.Rate
	}

	pricing, err := domain.ComputeTotal(input)
	if err != nil {
		s.logger.Warn("Reschedule: pricing failed for reservation id=%d: %v", r.ID, err)
		return err
	}

	paid := r.Deposit.Paid
	r.ApplyPricing(pricing)
	r.Deposit.Paid = paid
	return nil
}

// get получает бронирование и конвертирует ошибку репозитория
func (s *Service) get(ctx context.Context, op string, id int64) (*domain.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("%s: reservation id=%d not found", op, id)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("%s: repository error for reservation id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}
	return reservation, nil
}

// getResource получает машину и конвертирует ошибку репозитория
func (s *Service) getResource(ctx context.Context, op string, id int64) (*domain.Car, error) {
	car, err := s.resourceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, resourceRepo.ErrCarNotFound) {
			s.logger.Warn("%s: resource id=%d not found", op, id)
			return nil, ErrResourceNotFound
		}
		s.logger.Error("%s: failed to get resource id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - failed to get resource: %w", ErrInternal, op, err)
	}
	return car, nil
}
