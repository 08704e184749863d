package models

import (
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

// Request модели

// SubmitReviewRequest отзыв на водителя, товар или машину
type SubmitReviewRequest struct {
	TargetKind string  `json:"targetType" validate:"required,oneof=driver product car"`
	TargetID   int64   `json:"targetId" validate:"required,gt=0"`
	Rating     int     `json:"rating" validate:"required,min=1,max=5"`
	Comment    *string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

// Target возвращает оцениваемый объект
func (r *SubmitReviewRequest) Target() domain.ReviewTarget {
	return domain.ReviewTarget{
		Kind: domain.ReviewTargetKind(r.TargetKind),
		ID:   r.TargetID,
	}
}

// Response модели

// RatingResponse пересчитанный рейтинг объекта
type RatingResponse struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// ReviewResponse ответ с данными отзыва и новым рейтингом объекта
type ReviewResponse struct {
	ID         int64          `json:"id"`
	TargetKind string         `json:"targetType"`
	TargetID   int64          `json:"targetId"`
	AuthorID   int64          `json:"authorId"`
	Rating     int            `json:"rating"`
	Comment    *string        `json:"comment,omitempty"`
	Target     RatingResponse `json:"targetRating"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// FromDomainReview конвертирует domain модель в DTO
func FromDomainReview(r *domain.Review, aggregate domain.RatingAggregate) *ReviewResponse {
	if r == nil {
		return nil
	}

	return &ReviewResponse{
		ID:         r.ID,
		TargetKind: string(r.Target.Kind),
		TargetID:   r.Target.ID,
		AuthorID:   r.AuthorID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		Target: RatingResponse{
			Average: aggregate.Avg,
			Count:   aggregate.Count,
		},
		CreatedAt: r.CreatedAt,
	}
}
