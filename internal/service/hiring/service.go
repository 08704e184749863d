package hiring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	applicationRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/application"
	"github.com/m04kA/SMC-RentalService/internal/service/hiring/models"
)

// Service сервис найма водителей: отклики, собеседования, контракты
type Service struct {
	applicationRepo ApplicationRepository
	jobRepo         JobRepository
	txManager       TransactionManager
	afterCommit     AfterCommit
	notifier        Notifier
	contractTTL     time.Duration
	enforceExpiry   bool
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса найма
// enforceExpiry включает отказ в подписи просроченного контракта
func NewService(
	applicationRepo ApplicationRepository,
	jobRepo JobRepository,
	txManager TransactionManager,
	afterCommit AfterCommit,
	notifier Notifier,
	contractTTL time.Duration,
	enforceExpiry bool,
	logger Logger,
) *Service {
	return &Service{
		applicationRepo: applicationRepo,
		jobRepo:         jobRepo,
		txManager:       txManager,
		afterCommit:     afterCommit,
		notifier:        notifier,
		contractTTL:     contractTTL,
		enforceExpiry:   enforceExpiry,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Apply создает отклик водителя на открытую вакансию
// Один водитель может откликнуться на вакансию только один раз
func (s *Service) Apply(ctx context.Context, jobID int64, actor domain.Actor, req *models.ApplyRequest) (*models.ApplicationResponse, error) {
	s.logger.Info("Apply: driver=%d, job=%d", actor.ID, jobID)

	if actor.Role != domain.RoleDriver {
		s.logger.Warn("Apply: role %s may not apply", actor.Role)
		return nil, fmt.Errorf("%w: only drivers can apply", ErrAccessDenied)
	}

	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, applicationRepo.ErrJobNotFound) {
			s.logger.Warn("Apply: job id=%d not found", jobID)
			return nil, ErrJobNotFound
		}
		s.logger.Error("Apply: failed to get job id=%d: %v", jobID, err)
		return nil, fmt.Errorf("%w: Apply - failed to get job: %w", ErrInternal, err)
	}

	if job.Status != domain.JobOpen {
		s.logger.Warn("Apply: job id=%d is %s", jobID, job.Status)
		return nil, ErrJobNotOpen
	}

	if job.OwnerID == actor.ID {
		s.logger.Warn("Apply: owner id=%d applies to own job id=%d", actor.ID, jobID)
		return nil, fmt.Errorf("%w: cannot apply to own job", ErrAccessDenied)
	}

	created, err := s.applicationRepo.Create(ctx, &domain.JobApplication{
		JobID:       job.ID,
		DriverID:    actor.ID,
		OwnerID:     job.OwnerID,
		Status:      domain.ApplicationPending,
		CoverLetter: req.CoverLetter,
		Messages:    []domain.Message{},
	})
	if err != nil {
		if errors.Is(err, applicationRepo.ErrDuplicateApplication) {
			s.logger.Warn("Apply: driver=%d already applied to job=%d", actor.ID, jobID)
			return nil, ErrAlreadyApplied
		}
		s.logger.Error("Apply: failed to create application: %v", err)
		return nil, fmt.Errorf("%w: Apply - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("Apply: successfully created application id=%d", created.ID)

	s.afterCommit.Run(ctx, s.notifyHook(domain.Notification{
		Audience: domain.SingleUser(created.OwnerID),
		Type:     domain.NotifyApplicationReceived,
		Title:    "Новый отклик",
		Message:  fmt.Sprintf("Водитель откликнулся на вакансию \"%s\"", job.Title),
		Link:     applicationLink(created.ID),
	}))

	return models.FromDomainApplication(created), nil
}

// Get получает отклик, доступно сторонам и администратору
func (s *Service) Get(ctx context.Context, id int64, actor domain.Actor) (*models.ApplicationResponse, error) {
	s.logger.Info("Get: application id=%d for actor=%d", id, actor.ID)

	application, err := s.get(ctx, "Get", id)
	if err != nil {
		return nil, err
	}

	if !application.IsParty(actor) {
		s.logger.Warn("Get: access denied for actor=%d to application id=%d", actor.ID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainApplication(application), nil
}

// UpdateStatus выполняет shortlist, reject или withdraw
func (s *Service) UpdateStatus(ctx context.Context, id int64, actor domain.Actor, req *models.UpdateStatusRequest) (*models.ApplicationResponse, error) {
	s.logger.Info("UpdateStatus: application id=%d, action=%s, actor=%d", id, req.Action, actor.ID)

	application, err := s.mutate(ctx, "UpdateStatus", id, func(_ context.Context, a *domain.JobApplication) error {
		return a.Apply(actor, domain.ApplicationAction(req.Action))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("UpdateStatus: application id=%d is now %s", id, application.Status)

	s.afterCommit.Run(ctx, s.notifyHook(domain.Notification{
		Audience: domain.SingleUser(otherParty(application, actor)),
		Type:     domain.NotifyApplicationStatus,
		Title:    "Статус отклика изменен",
		Message:  fmt.Sprintf("Отклик #%d: новый статус %s", application.ID, application.Status),
		Link:     applicationLink(application.ID),
	}))

	return models.FromDomainApplication(application), nil
}

// ScheduleInterview назначает или переносит собеседование
func (s *Service) ScheduleInterview(ctx context.Context, id int64, actor domain.Actor, req *models.ScheduleInterviewRequest) (*models.ApplicationResponse, error) {
	s.logger.Info("ScheduleInterview: application id=%d at %s by actor=%d", id, req.ScheduledAt.Format(time.RFC3339), actor.ID)

	now := s.timeProvider.Now()

	application, err := s.mutate(ctx, "ScheduleInterview", id, func(_ context.Context, a *domain.JobApplication) error {
		return a.ScheduleInterview(actor, req.ScheduledAt, req.DurationMinutes, req.Location, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ScheduleInterview: interview for application id=%d scheduled", id)

	s.afterCommit.Run(ctx, s.notifyHook(domain.Notification{
		Audience: domain.SingleUser(application.DriverID),
		Type:     domain.NotifyInterviewScheduled,
		Title:    "Назначено собеседование",
		Message:  fmt.Sprintf("Собеседование назначено на %s", req.ScheduledAt.Format("02.01.2006 15:04")),
		Link:     applicationLink(application.ID),
	}))

	return models.FromDomainApplication(application), nil
}

// CompleteInterview фиксирует оценку собеседования
func (s *Service) CompleteInterview(ctx context.Context, id int64, actor domain.Actor, req *models.CompleteInterviewRequest) (*models.ApplicationResponse, error) {
	s.logger.Info("CompleteInterview: application id=%d, rating=%d by actor=%d", id, req.Rating, actor.ID)

	now := s.timeProvider.Now()

	application, err := s.mutate(ctx, "CompleteInterview", id, func(_ context.Context, a *domain.JobApplication) error {
		return a.CompleteInterview(actor, req.Rating, req.Feedback, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("CompleteInterview: interview for application id=%d completed", id)
	return models.FromDomainApplication(application), nil
}

// CreateContract создает контракт, ожидающий подписи водителя
func (s *Service) CreateContract(ctx context.Context, id int64, actor domain.Actor, req *models.CreateContractRequest) (*models.ApplicationResponse, error) {
	s.logger.Info("CreateContract: application id=%d by actor=%d", id, actor.ID)

	now := s.timeProvider.Now()

	application, err := s.mutate(ctx, "CreateContract", id, func(_ context.Context, a *domain.JobApplication) error {
		return a.CreateContract(actor, req.Terms, now, s.contractTTL)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("CreateContract: contract for application id=%d expires at %s",
		id, application.Contract.ExpiresAt.Format(time.RFC3339))

	s.afterCommit.Run(ctx, s.notifyHook(domain.Notification{
		Audience: domain.SingleUser(application.DriverID),
		Type:     domain.NotifyContractCreated,
		Title:    "Контракт ожидает подписи",
		Message:  fmt.Sprintf("Подпишите контракт до %s", application.Contract.ExpiresAt.Format("02.01.2006")),
		Link:     applicationLink(application.ID),
	}))

	return models.FromDomainApplication(application), nil
}

// SignContract записывает подпись стороны: сначала водитель, затем владелец
// Подпись владельца принимает отклик и закрывает вакансию в той же транзакции
func (s *Service) SignContract(ctx context.Context, id int64, actor domain.Actor, req *models.SignContractRequest, ipAddress string) (*models.ApplicationResponse, error) {
	s.logger.Info("SignContract: application id=%d by actor=%d, ip=%s", id, actor.ID, ipAddress)

	now := s.timeProvider.Now()

	application, err := s.mutate(ctx, "SignContract", id, func(txCtx context.Context, a *domain.JobApplication) error {
		if err := a.SignContract(actor, req.SignatureURL, ipAddress, now, s.enforceExpiry); err != nil {
			return err
		}
		if a.Status != domain.ApplicationAccepted {
			return nil
		}
		return s.fillJob(txCtx, a)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("SignContract: application id=%d contract is %s", id, application.Contract.Status)

	link := applicationLink(application.ID)
	if application.Contract.Status == domain.ContractPendingOwner {
		s.afterCommit.Run(ctx, s.notifyHook(domain.Notification{
			Audience: domain.SingleUser(application.OwnerID),
			Type:     domain.NotifyContractDriverSigned,
			Title:    "Водитель подписал контракт",
			Message:  fmt.Sprintf("Контракт по отклику #%d ожидает вашей подписи", application.ID),
			Link:     link,
		}))
	} else {
		s.afterCommit.Run(ctx,
			s.notifyHook(domain.Notification{
				Audience: domain.SingleUser(application.DriverID),
				Type:     domain.NotifyContractSigned,
				Title:    "Контракт подписан",
				Message:  fmt.Sprintf("Контракт по отклику #%d подписан обеими сторонами", application.ID),
				Link:     link,
			}),
			s.notifyHook(domain.Notification{
				Audience: domain.RoleGroup(domain.RoleAdmin),
				Type:     domain.NotifyContractSigned,
				Title:    "Подписан контракт с водителем",
				Message:  fmt.Sprintf("Вакансия #%d закрыта, водитель %d", application.JobID, application.DriverID),
				Link:     link,
			}),
		)
	}

	return models.FromDomainApplication(application), nil
}

// PostMessage добавляет сообщение в переписку по отклику
func (s *Service) PostMessage(ctx context.Context, id int64, actor domain.Actor, req *models.PostMessageRequest) (*models.ApplicationResponse, error) {
	s.logger.Info("PostMessage: application id=%d by actor=%d", id, actor.ID)

	now := s.timeProvider.Now()

	application, err := s.mutate(ctx, "PostMessage", id, func(_ context.Context, a *domain.JobApplication) error {
		_, err := a.PostMessage(actor, req.Body, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit.Run(ctx, s.notifyHook(domain.Notification{
		Audience: domain.SingleUser(otherParty(application, actor)),
		Type:     domain.NotifyApplicationMessage,
		Title:    "Новое сообщение",
		Message:  fmt.Sprintf("Новое сообщение по отклику #%d", application.ID),
		Link:     applicationLink(application.ID),
	}))

	return models.FromDomainApplication(application), nil
}

// Вспомогательные методы

// mutate получает отклик с блокировкой, применяет изменение и сохраняет в одной транзакции
func (s *Service) mutate(ctx context.Context, op string, id int64, change func(txCtx context.Context, a *domain.JobApplication) error) (*domain.JobApplication, error) {
	var result *domain.JobApplication

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		a, err := s.get(txCtx, op, id)
		if err != nil {
			return err
		}

		if err := change(txCtx, a); err != nil {
			if domain.KindOf(err) == domain.KindInternal {
				s.logger.Error("%s: application id=%d: %v", op, id, err)
				return fmt.Errorf("%w: %s: %w", ErrInternal, op, err)
			}
			s.logger.Warn("%s: application id=%d: %v", op, id, err)
			return err
		}

		updated, err := s.applicationRepo.Update(txCtx, a)
		if err != nil {
			s.logger.Error("%s: failed to update application id=%d: %v", op, id, err)
			return fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
		}

		result = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// fillJob закрывает вакансию после подписи контракта обеими сторонами
func (s *Service) fillJob(ctx context.Context, a *domain.JobApplication) error {
	job, err := s.jobRepo.GetByID(ctx, a.JobID)
	if err != nil {
		if errors.Is(err, applicationRepo.ErrJobNotFound) {
			return ErrJobNotFound
		}
		return fmt.Errorf("failed to get job id=%d: %w", a.JobID, err)
	}

	if err := job.MarkFilled(a.DriverID); err != nil {
		return err
	}

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to update job id=%d: %w", job.ID, err)
	}
	return nil
}

// get получает отклик и конвертирует ошибку репозитория
func (s *Service) get(ctx context.Context, op string, id int64) (*domain.JobApplication, error) {
	application, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, applicationRepo.ErrApplicationNotFound) {
			s.logger.Warn("%s: application id=%d not found", op, id)
			return nil, ErrApplicationNotFound
		}
		s.logger.Error("%s: repository error for application id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}
	return application, nil
}

// otherParty возвращает вторую сторону отклика относительно actor
func otherParty(a *domain.JobApplication, actor domain.Actor) int64 {
	if actor.ID == a.DriverID {
		return a.OwnerID
	}
	return a.DriverID
}

func applicationLink(id int64) string {
	return fmt.Sprintf("/applications/%d", id)
}
