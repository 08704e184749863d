package hiring

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

var (
	// ErrApplicationNotFound возвращается, когда отклик не найден
	ErrApplicationNotFound = fmt.Errorf("application not found: %w", domain.ErrNotFound)

	// ErrJobNotFound возвращается, когда вакансия не найдена
	ErrJobNotFound = fmt.Errorf("job not found: %w", domain.ErrNotFound)

	// ErrJobNotOpen возвращается при отклике на закрытую вакансию
	ErrJobNotOpen = fmt.Errorf("job is not open: %w", domain.ErrConflict)

	// ErrAlreadyApplied возвращается при повторном отклике на ту же вакансию
	ErrAlreadyApplied = fmt.Errorf("driver already applied to this job: %w", domain.ErrConflict)

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = fmt.Errorf("access denied: %w", domain.ErrUnauthorized)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
