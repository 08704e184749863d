package schedule

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

var (
	// ErrResourceNotFound возвращается, когда машина не найдена
	ErrResourceNotFound = fmt.Errorf("resource not found: %w", domain.ErrNotFound)

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = fmt.Errorf("access denied: %w", domain.ErrUnauthorized)

	// ErrScheduleConflict возвращается, если расписание того же уровня создано параллельно
	ErrScheduleConflict = fmt.Errorf("schedule was created concurrently: %w", domain.ErrConflict)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
