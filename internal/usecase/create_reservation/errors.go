package create_reservation

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("create_reservation: invalid input data: %w", domain.ErrValidation)

	// ErrResourceNotFound возвращается, когда машина не найдена
	ErrResourceNotFound = fmt.Errorf("create_reservation: resource not found: %w", domain.ErrNotFound)

	// ErrNegotiationNotFound возвращается, когда указанные переговоры не найдены
	ErrNegotiationNotFound = fmt.Errorf("create_reservation: negotiation not found: %w", domain.ErrNotFound)

	// ErrForbidden возвращается, когда роль не позволяет бронировать или владелец бронирует свою машину
	ErrForbidden = fmt.Errorf("create_reservation: not allowed to book this resource: %w", domain.ErrUnauthorized)

	// ErrReservationConflict возвращается, когда окно пересекается с активным бронированием
	ErrReservationConflict = fmt.Errorf("create_reservation: time window is already booked: %w", domain.ErrConflict)

	// ErrNegotiationMismatch возвращается, когда переговоры относятся к другой машине, клиенту или тарифу
	ErrNegotiationMismatch = fmt.Errorf("create_reservation: negotiation does not match the request: %w", domain.ErrValidation)

	// ErrNegotiationUsed возвращается, когда по переговорам уже создано бронирование
	ErrNegotiationUsed = fmt.Errorf("create_reservation: negotiation is already used: %w", domain.ErrConflict)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_reservation: internal error")
)
