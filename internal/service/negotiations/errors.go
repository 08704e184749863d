package negotiations

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

var (
	// ErrNegotiationNotFound возвращается, когда переговоры не найдены
	ErrNegotiationNotFound = fmt.Errorf("negotiation not found: %w", domain.ErrNotFound)

	// ErrResourceNotFound возвращается, когда машина не найдена
	ErrResourceNotFound = fmt.Errorf("resource not found: %w", domain.ErrNotFound)

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = fmt.Errorf("access denied: %w", domain.ErrUnauthorized)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("invalid input data: %w", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
