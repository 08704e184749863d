package negotiations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	negotiationRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/negotiation"
	resourceRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/resource"
	"github.com/m04kA/SMC-RentalService/internal/service/negotiations/models"
	"github.com/m04kA/SMC-RentalService/pkg/aftercommit"
)

// Service сервис переговоров о цене аренды
type Service struct {
	negotiationRepo NegotiationRepository
	resourceRepo    ResourceRepository
	txManager       TransactionManager
	afterCommit     AfterCommit
	notifier        Notifier
	ttl             time.Duration
	maxRounds       int
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса переговоров
// maxRounds ограничивает число встречных предложений, 0 - без ограничений
func NewService(
	negotiationRepo NegotiationRepository,
	resourceRepo ResourceRepository,
	txManager TransactionManager,
	afterCommit AfterCommit,
	notifier Notifier,
	ttl time.Duration,
	maxRounds int,
	logger Logger,
) *Service {
	return &Service{
		negotiationRepo: negotiationRepo,
		resourceRepo:    resourceRepo,
		txManager:       txManager,
		afterCommit:     afterCommit,
		notifier:        notifier,
		ttl:             ttl,
		maxRounds:       maxRounds,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Propose открывает переговоры о ставке за окно аренды
// Клиент предлагает цену владельцу, владелец может сам предложить цену конкретному клиенту
func (s *Service) Propose(ctx context.Context, actor domain.Actor, req *models.ProposeRequest) (*models.NegotiationResponse, error) {
	s.logger.Info("Propose: actor=%d, resource=%d, rate=%.2f, rateType=%s", actor.ID, req.ResourceID, req.ProposedRate, req.RateType)

	now := s.timeProvider.Now()

	// 1. Валидация
	var initiator domain.Party
	switch actor.Role {
	case domain.RoleCustomer:
		initiator = domain.PartyCustomer
		if req.CustomerID != nil && *req.CustomerID != actor.ID {
			s.logger.Warn("Propose: customer id=%d proposes on behalf of id=%d", actor.ID, *req.CustomerID)
			return nil, fmt.Errorf("%w: customers propose only for themselves", ErrAccessDenied)
		}
	case domain.RoleOwner:
		initiator = domain.PartyOwner
		if req.CustomerID == nil {
			s.logger.Warn("Propose: owner id=%d did not name a customer", actor.ID)
			return nil, fmt.Errorf("%w: customerId is required for an owner offer", ErrInvalidInput)
		}
		if *req.CustomerID == actor.ID {
			s.logger.Warn("Propose: owner id=%d names themself as customer", actor.ID)
			return nil, fmt.Errorf("%w: owner cannot negotiate with themself", ErrInvalidInput)
		}
	default:
		s.logger.Warn("Propose: role %s may not propose", actor.Role)
		return nil, fmt.Errorf("%w: only customers and owners can propose a rate", ErrAccessDenied)
	}

	rateType := domain.RateType(req.RateType)
	if !rateType.IsValid() {
		s.logger.Warn("Propose: invalid rate type %q", req.RateType)
		return nil, fmt.Errorf("%w: rateType must be hourly or daily", ErrInvalidInput)
	}

	if req.ProposedRate <= 0 {
		s.logger.Warn("Propose: non-positive rate %.2f", req.ProposedRate)
		return nil, domain.ErrInvalidNegotiationRate
	}

	window := domain.Window{Start: req.StartAt, End: req.EndAt}
	if err := window.Validate(); err != nil {
		s.logger.Warn("Propose: invalid window: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if window.Start.Before(now) {
		s.logger.Warn("Propose: window starts in the past")
		return nil, fmt.Errorf("%w: window cannot start in the past", ErrInvalidInput)
	}

	if req.Message != nil && len(*req.Message) > domain.MaxMessageLength {
		s.logger.Warn("Propose: message is too long")
		return nil, fmt.Errorf("%w: message must be at most %d characters", ErrInvalidInput, domain.MaxMessageLength)
	}

	// 2. Машина и ее текущая ставка
	car, err := s.resourceRepo.GetByID(ctx, req.ResourceID)
	if err != nil {
		if errors.Is(err, resourceRepo.ErrCarNotFound) {
			s.logger.Warn("Propose: resource id=%d not found", req.ResourceID)
			return nil, ErrResourceNotFound
		}
		s.logger.Error("Propose: failed to get resource id=%d: %v", req.ResourceID, err)
		return nil, fmt.Errorf("%w: Propose - failed to get resource: %w", ErrInternal, err)
	}

	customerID := actor.ID
	if initiator == domain.PartyOwner {
		if car.OwnerID != actor.ID {
			s.logger.Warn("Propose: actor=%d does not own resource id=%d", actor.ID, car.ID)
			return nil, fmt.Errorf("%w: resource belongs to another owner", ErrAccessDenied)
		}
		customerID = *req.CustomerID
	} else if car.OwnerID == actor.ID {
		s.logger.Warn("Propose: owner id=%d negotiates own resource id=%d", actor.ID, car.ID)
		return nil, fmt.Errorf("%w: owner cannot negotiate own resource", ErrAccessDenied)
	}

	originalRate, err := car.RateFor(rateType)
	if err != nil {
		s.logger.Warn("Propose: resource id=%d cannot be priced: %v", car.ID, err)
		return nil, err
	}

	// 3. Сохраняем
	created, err := s.negotiationRepo.Create(ctx, &domain.Negotiation{
		ResourceID:    car.ID,
		CustomerID:    customerID,
		OwnerID:       car.OwnerID,
		InitiatedBy:   initiator,
		OriginalRate:  originalRate,
		ProposedRate:  req.ProposedRate,
		RateType:      rateType,
		StartAt:       req.StartAt,
		EndAt:         req.EndAt,
		Message:       req.Message,
		Status:        domain.NegotiationPending,
		CounterOffers: []domain.CounterOffer{},
		ExpiresAt:     now.Add(s.ttl),
	})
	if err != nil {
		s.logger.Error("Propose: failed to create negotiation: %v", err)
		return nil, fmt.Errorf("%w: Propose - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("Propose: successfully created negotiation id=%d", created.ID)

	recipient, sender := created.OwnerID, "Клиент"
	if initiator == domain.PartyOwner {
		recipient, sender = created.CustomerID, "Владелец"
	}

	s.afterCommit.Run(ctx, s.notifyHook(domain.Notification{
		Audience: domain.SingleUser(recipient),
		Type:     domain.NotifyNegotiationProposed,
		Title:    "Предложение цены",
		Message:  fmt.Sprintf("%s предлагает ставку %.2f вместо %.2f", sender, created.ProposedRate, created.OriginalRate),
		Link:     negotiationLink(created.ID),
	}))

	return models.FromDomainNegotiation(created), nil
}

// Respond принимает, отклоняет или перебивает последнее предложение
// Просроченные переговоры переводятся в expired и сохраняются, даже если ответ отклонен
func (s *Service) Respond(ctx context.Context, id int64, actor domain.Actor, req *models.RespondRequest) (*models.NegotiationResponse, error) {
	s.logger.Info("Respond: negotiation id=%d, action=%s, actor=%d", id, req.Action, actor.ID)

	action := domain.NegotiationAction(req.Action)
	if !action.IsValid() {
		s.logger.Warn("Respond: unknown action %q", req.Action)
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownNegotiationAction, req.Action)
	}

	now := s.timeProvider.Now()

	var (
		result  *domain.Negotiation
		expired bool
	)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		n, err := s.get(txCtx, "Respond", id)
		if err != nil {
			return err
		}

		if !n.IsParty(actor) {
			s.logger.Warn("Respond: actor=%d is not a party to negotiation id=%d", actor.ID, id)
			return domain.ErrNotNegotiationParty
		}

		// Ленивое истечение фиксируется в той же транзакции
		if n.ExpireIfDue(now) {
			expired = true
			if _, err := s.negotiationRepo.Update(txCtx, n); err != nil {
				s.logger.Error("Respond: failed to persist expiry of negotiation id=%d: %v", id, err)
				return fmt.Errorf("%w: Respond - repository error: %w", ErrInternal, err)
			}
			return nil
		}

		if err := n.Respond(actor, action, req.Rate, req.Message, now, s.maxRounds); err != nil {
			s.logger.Warn("Respond: negotiation id=%d: %v", id, err)
			return err
		}

		updated, err := s.negotiationRepo.Update(txCtx, n)
		if err != nil {
			s.logger.Error("Respond: failed to update negotiation id=%d: %v", id, err)
			return fmt.Errorf("%w: Respond - repository error: %w", ErrInternal, err)
		}

		result = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	if expired {
		s.logger.Warn("Respond: negotiation id=%d has expired", id)
		return nil, domain.ErrNegotiationExpired
	}

	s.logger.Info("Respond: negotiation id=%d is now %s", id, result.Status)

	s.afterCommit.Run(ctx, s.notifyHook(responseNotification(result, actor)))

	return models.FromDomainNegotiation(result), nil
}

// Get получает переговоры, просроченные сохраняются как expired
func (s *Service) Get(ctx context.Context, id int64, actor domain.Actor) (*models.NegotiationResponse, error) {
	s.logger.Info("Get: negotiation id=%d for actor=%d", id, actor.ID)

	now := s.timeProvider.Now()

	var result *domain.Negotiation

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		n, err := s.get(txCtx, "Get", id)
		if err != nil {
			return err
		}

		if !n.IsParty(actor) && !actor.IsAdmin() {
			s.logger.Warn("Get: access denied for actor=%d to negotiation id=%d", actor.ID, id)
			return ErrAccessDenied
		}

		if n.ExpireIfDue(now) {
			s.logger.Info("Get: negotiation id=%d expired at %s", id, n.ExpiresAt.Format(time.RFC3339))
			if n, err = s.negotiationRepo.Update(txCtx, n); err != nil {
				s.logger.Error("Get: failed to persist expiry of negotiation id=%d: %v", id, err)
				return fmt.Errorf("%w: Get - repository error: %w", ErrInternal, err)
			}
		}

		result = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	return models.FromDomainNegotiation(result), nil
}

// get получает переговоры и конвертирует ошибку репозитория
func (s *Service) get(ctx context.Context, op string, id int64) (*domain.Negotiation, error) {
	n, err := s.negotiationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, negotiationRepo.ErrNegotiationNotFound) {
			s.logger.Warn("%s: negotiation id=%d not found", op, id)
			return nil, ErrNegotiationNotFound
		}
		s.logger.Error("%s: repository error for negotiation id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}
	return n, nil
}

func (s *Service) notifyHook(n domain.Notification) aftercommit.Hook {
	return aftercommit.Hook{
		Name: "notify." + string(n.Type),
		Fn: func(ctx context.Context) error {
			return s.notifier.Notify(ctx, n)
		},
	}
}

func negotiationLink(id int64) string {
	return fmt.Sprintf("/negotiations/%d", id)
}

// responseNotification уведомление второй стороне об ответе
func responseNotification(n *domain.Negotiation, actor domain.Actor) domain.Notification {
	recipient := n.OwnerID
	if actor.ID == n.OwnerID {
		recipient = n.CustomerID
	}

	result := domain.Notification{
		Audience: domain.SingleUser(recipient),
		Link:     negotiationLink(n.ID),
	}

	switch n.Status {
	case domain.NegotiationAccepted:
		result.Type = domain.NotifyNegotiationAccepted
		result.Title = "Предложение принято"
		result.Message = fmt.Sprintf("Согласована ставка %.2f", n.ProposedRate)
	case domain.NegotiationRejected:
		result.Type = domain.NotifyNegotiationRejected
		result.Title = "Предложение отклонено"
		result.Message = "Вторая сторона отклонила предложение"
	default:
		result.Type = domain.NotifyNegotiationCountered
		result.Title = "Встречное предложение"
		result.Message = fmt.Sprintf("Новая предложенная ставка %.2f", n.ProposedRate)
	}

	return result
}
