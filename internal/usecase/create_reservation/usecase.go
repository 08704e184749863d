package create_reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/infra/lock"
	negotiationRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/negotiation"
	reservationRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/reservation"
	resourceRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/resource"
	"github.com/m04kA/SMC-RentalService/pkg/aftercommit"
)

// Источники отказа по пересечению для метрики
const (
	conflictSourceCheck      = "check"
	conflictSourceConstraint = "constraint"
)

const notifyTimeFormat = "02.01.2006 15:04"

// UseCase use case для создания бронирования
type UseCase struct {
	reservationRepo ReservationRepository
	resourceRepo    ResourceRepository
	negotiationRepo NegotiationRepository
	locker          Locker
	txManager       TransactionManager
	afterCommit     AfterCommit
	notifier        Notifier
	conflicts       ConflictRecorder
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	resourceRepo ResourceRepository,
	negotiationRepo NegotiationRepository,
	locker Locker,
	txManager TransactionManager,
	afterCommit AfterCommit,
	notifier Notifier,
	conflicts ConflictRecorder,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		resourceRepo:    resourceRepo,
		negotiationRepo: negotiationRepo,
		locker:          locker,
		txManager:       txManager,
		afterCommit:     afterCommit,
		notifier:        notifier,
		conflicts:       conflicts,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case создания бронирования
//
// Проверка пересечений и вставка выполняются под блокировкой машины и в сериализуемой
// транзакции. Исключающее ограничение в БД ловит то, что пропустили оба уровня.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*domain.Reservation, error) {
	if req.Kind == "" {
		req.Kind = domain.KindRental
	}

	uc.logger.Info("CreateReservation: actor=%d, resource=%d, kind=%s, start=%s, end=%s",
		req.Actor.ID, req.ResourceID, req.Kind, req.Window.Start.Format(time.RFC3339), req.Window.End.Format(time.RFC3339))

	// 1. Получаем текущее время
	now := uc.timeProvider.Now()

	// 2. Валидация входных данных
	if err := validateRequest(req, now); err != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", err)
		return nil, err
	}

	// 3. Бронировать может только клиент
	if req.Actor.Role != domain.RoleCustomer {
		uc.logger.Warn("CreateReservation: role %s may not create reservations", req.Actor.Role)
		return nil, fmt.Errorf("%w: role %s", ErrForbidden, req.Actor.Role)
	}

	// 4. Блокируем машину от параллельных бронирований
	release, err := uc.locker.Acquire(ctx, lock.ResourceKey(req.ResourceID))
	if err != nil {
		if errors.Is(err, lock.ErrResourceBusy) {
			uc.logger.Warn("CreateReservation: resource id=%d is busy", req.ResourceID)
			return nil, err
		}
		uc.logger.Error("CreateReservation: failed to acquire lock for resource id=%d: %v", req.ResourceID, err)
		return nil, fmt.Errorf("%w: failed to acquire lock: %w", ErrInternal, err)
	}
	defer release()

	var result *domain.Reservation

	// 5. Проверка и запись в одной сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 5.1. Получаем машину с блокировкой строки
		car, err := uc.resourceRepo.LockByID(txCtx, req.ResourceID)
		if err != nil {
			if errors.Is(err, resourceRepo.ErrCarNotFound) {
				uc.logger.Warn("CreateReservation: resource id=%d not found", req.ResourceID)
				return ErrResourceNotFound
			}
			uc.logger.Error("CreateReservation: failed to get resource id=%d: %v", req.ResourceID, err)
			return fmt.Errorf("%w: failed to get resource: %w", ErrInternal, err)
		}

		if car.OwnerID == req.Actor.ID {
			uc.logger.Warn("CreateReservation: owner id=%d tried to book own resource id=%d", req.Actor.ID, car.ID)
			return fmt.Errorf("%w: owner cannot book own resource", ErrForbidden)
		}

		// 5.2. Проверяем пересечение с активными бронированиями
		existing, err := uc.reservationRepo.GetActiveByResourceInRange(txCtx, req.ResourceID, req.Window.Start, req.Window.End)
		if err != nil {
			uc.logger.Error("CreateReservation: failed to get reservations: %v", err)
			return fmt.Errorf("%w: failed to get reservations: %w", ErrInternal, err)
		}

		if conflict := domain.FindConflict(existing, req.Window, nil); conflict != nil {
			uc.conflicts.IncReservationConflict(conflictSourceCheck)
			uc.logger.Warn("CreateReservation: window overlaps reservation id=%d", conflict.ID)
			return fmt.Errorf("%w: overlaps reservation %d", ErrReservationConflict, conflict.ID)
		}

		reservation := &domain.Reservation{
			Kind:               req.Kind,
			ResourceID:         car.ID,
			CustomerID:         req.Actor.ID,
			OwnerID:            car.OwnerID,
			StartAt:            req.Window.Start,
			EndAt:              req.Window.End,
			TimeSlots:          req.TimeSlots,
			AdditionalServices: req.AdditionalServices,
			Status:             domain.StatusPending,
			StatusHistory: []domain.StatusHistoryEntry{{
				Status:  domain.StatusPending,
				ActorID: req.Actor.ID,
				At:      now,
			}},
			Notes: req.Notes,
		}

		// 5.3. Считаем стоимость аренды
		if req.Kind.IsPriced() {
			pricing, err := uc.price(txCtx, car, req, now)
			if err != nil {
				return err
			}
			reservation.RateType = req.RateType
			reservation.NegotiationID = req.NegotiationID
			reservation.ApplyPricing(pricing)
		}

		// 5.4. Сохраняем бронирование
		created, err := uc.reservationRepo.Create(txCtx, reservation)
		if err != nil {
			switch {
			case errors.Is(err, reservationRepo.ErrReservationOverlap):
				uc.conflicts.IncReservationConflict(conflictSourceConstraint)
				uc.logger.Warn("CreateReservation: overlap rejected by database constraint")
				return ErrReservationConflict
			case errors.Is(err, reservationRepo.ErrDuplicateNegotiation):
				uc.logger.Warn("CreateReservation: negotiation id=%d is already used", *req.NegotiationID)
				return ErrNegotiationUsed
			}
			uc.logger.Error("CreateReservation: failed to create reservation: %v", err)
			return fmt.Errorf("%w: failed to create reservation: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateReservation: successfully created reservation id=%d, total=%.2f", result.ID, result.TotalAmount)

	// 6. Уведомляем владельца после фиксации
	uc.afterCommit.Run(ctx, uc.notifyOwner(result))

	return result, nil
}

// price считает стоимость по тарифу машины или по принятым переговорам
func (uc *UseCase) price(ctx context.Context, car *domain.Car, req *Request, now time.Time) (*domain.PricingResult, error) {
	baseRate, err := car.RateFor(req.RateType)
	if err != nil {
		uc.logger.Warn("CreateReservation: resource id=%d cannot be priced: %v", car.ID, err)
		return nil, err
	}

	var negotiatedRate *float64
	if req.NegotiationID != nil {
		rate, err := uc.negotiatedRate(ctx, req, now)
		if err != nil {
			return nil, err
		}
		negotiatedRate = &rate
	}

	pricing, err := domain.ComputeTotal(domain.PricingInput{
		RateType:           req.RateType,
		Window:             req.Window,
		TimeSlots:          req.TimeSlots,
		BaseRate:           &baseRate,
		AdditionalServices: req.AdditionalServices,
		NegotiatedRate:     negotiatedRate,
	})
	if err != nil {
		uc.logger.Warn("CreateReservation: pricing failed: %v", err)
		return nil, err
	}
	return pricing, nil
}

// negotiatedRate получает ставку из принятых переговоров
func (uc *UseCase) negotiatedRate(ctx context.Context, req *Request, now time.Time) (float64, error) {
	n, err := uc.negotiationRepo.GetByID(ctx, *req.NegotiationID)
	if err != nil {
		if errors.Is(err, negotiationRepo.ErrNegotiationNotFound) {
			uc.logger.Warn("CreateReservation: negotiation id=%d not found", *req.NegotiationID)
			return 0, ErrNegotiationNotFound
		}
		uc.logger.Error("CreateReservation: failed to get negotiation id=%d: %v", *req.NegotiationID, err)
		return 0, fmt.Errorf("%w: failed to get negotiation: %w", ErrInternal, err)
	}

	if err := checkNegotiation(n, req); err != nil {
		uc.logger.Warn("CreateReservation: %v", err)
		return 0, err
	}

	// Принятые переговоры не истекают, открытые после срока считаются истекшими
	if n.ExpireIfDue(now) {
		uc.logger.Warn("CreateReservation: negotiation id=%d has expired", n.ID)
		return 0, domain.ErrNegotiationExpired
	}

	rate, err := n.AgreedRate()
	if err != nil {
		uc.logger.Warn("CreateReservation: %v", err)
		return 0, err
	}
	return rate, nil
}

// notifyOwner уведомление владельцу о новом бронировании
func (uc *UseCase) notifyOwner(r *domain.Reservation) aftercommit.Hook {
	message := fmt.Sprintf("Бронирование #%d с %s по %s ожидает подтверждения",
		r.ID, r.StartAt.Format(notifyTimeFormat), r.EndAt.Format(notifyTimeFormat))

	return aftercommit.Hook{
		Name: "notify.reservation_created",
		Fn: func(ctx context.Context) error {
			return uc.notifier.Notify(ctx, domain.Notification{
				Audience: domain.SingleUser(r.OwnerID),
				Type:     domain.NotifyReservationCreated,
				Title:    "Новое бронирование",
				Message:  message,
				Link:     fmt.Sprintf("/reservations/%d", r.ID),
			})
		},
	}
}
