package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	reviewRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/review"
	"github.com/m04kA/SMC-RentalService/internal/service/reviews/models"
)

// Service сервис отзывов и рейтингов
type Service struct {
	reviewRepo ReviewRepository
	targetRepo TargetRepository
	txManager  TransactionManager
	logger     Logger
}

// NewService создает новый экземпляр сервиса отзывов
func NewService(
	reviewRepo ReviewRepository,
	targetRepo TargetRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		reviewRepo: reviewRepo,
		targetRepo: targetRepo,
		txManager:  txManager,
		logger:     logger,
	}
}

// Submit сохраняет отзыв и пересчитывает рейтинг объекта
// Рейтинг считается по всем сохраненным отзывам, объект блокируется до конца транзакции
func (s *Service) Submit(ctx context.Context, actor domain.Actor, req *models.SubmitReviewRequest) (*models.ReviewResponse, error) {
	target := req.Target()
	s.logger.Info("Submit: review of %s id=%d by actor=%d, rating=%d", target.Kind, target.ID, actor.ID, req.Rating)

	review := &domain.Review{
		Target:   target,
		AuthorID: actor.ID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	}

	if err := review.Validate(); err != nil {
		s.logger.Warn("Submit: validation failed: %v", err)
		return nil, err
	}

	if target.Kind == domain.TargetDriver && target.ID == actor.ID {
		s.logger.Warn("Submit: driver id=%d reviews self", actor.ID)
		return nil, ErrSelfReview
	}

	var (
		created   *domain.Review
		aggregate domain.RatingAggregate
	)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		// 1. Загружаем объект, строка блокируется до конца транзакции
		rateable, err := s.targetRepo.Get(txCtx, target)
		if err != nil {
			if errors.Is(err, reviewRepo.ErrTargetNotFound) {
				s.logger.Warn("Submit: %s id=%d not found", target.Kind, target.ID)
				return ErrTargetNotFound
			}
			s.logger.Error("Submit: failed to get %s id=%d: %v", target.Kind, target.ID, err)
			return fmt.Errorf("%w: Submit - failed to get target: %w", ErrInternal, err)
		}

		// 2. Сохраняем отзыв
		created, err = s.reviewRepo.Create(txCtx, review)
		if err != nil {
			if errors.Is(err, reviewRepo.ErrDuplicateReview) {
				s.logger.Warn("Submit: actor=%d already reviewed %s id=%d", actor.ID, target.Kind, target.ID)
				return ErrAlreadyReviewed
			}
			s.logger.Error("Submit: failed to create review: %v", err)
			return fmt.Errorf("%w: Submit - repository error: %w", ErrInternal, err)
		}

		// 3. Пересчитываем рейтинг с учетом нового отзыва
		aggregate, err = s.reviewRepo.Aggregate(txCtx, target)
		if err != nil {
			s.logger.Error("Submit: failed to aggregate rating: %v", err)
			return fmt.Errorf("%w: Submit - aggregate error: %w", ErrInternal, err)
		}

		rateable.ApplyRatingUpdate(aggregate.Avg, aggregate.Count)

		// 4. Сохраняем рейтинг объекта
		if err := s.targetRepo.SaveRating(txCtx, target, aggregate); err != nil {
			s.logger.Error("Submit: failed to save rating of %s id=%d: %v", target.Kind, target.ID, err)
			return fmt.Errorf("%w: Submit - save rating error: %w", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Submit: review id=%d saved, %s id=%d rating %.2f (%d)",
		created.ID, target.Kind, target.ID, aggregate.Avg, aggregate.Count)
	return models.FromDomainReview(created, aggregate), nil
}
