package reviews

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

var (
	// ErrTargetNotFound возвращается, когда оцениваемый объект не найден
	ErrTargetNotFound = fmt.Errorf("review target not found: %w", domain.ErrNotFound)

	// ErrAlreadyReviewed возвращается при повторном отзыве на тот же объект
	ErrAlreadyReviewed = fmt.Errorf("target already reviewed by this author: %w", domain.ErrConflict)

	// ErrSelfReview возвращается, когда водитель оценивает сам себя
	ErrSelfReview = fmt.Errorf("cannot review yourself: %w", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
