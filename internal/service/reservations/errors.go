package reservations

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = fmt.Errorf("reservation not found: %w", domain.ErrNotFound)

	// ErrResourceNotFound возвращается, когда машина не найдена
	ErrResourceNotFound = fmt.Errorf("resource not found: %w", domain.ErrNotFound)

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = fmt.Errorf("access denied: %w", domain.ErrUnauthorized)

	// ErrReservationConflict возвращается, когда новое окно пересекается с другим бронированием
	ErrReservationConflict = fmt.Errorf("time window is already booked: %w", domain.ErrConflict)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("invalid input data: %w", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
