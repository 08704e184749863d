package lock

import (
	"fmt"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

// ErrResourceBusy блокировку не удалось получить за время ожидания
var ErrResourceBusy = fmt.Errorf("lock: resource is busy, try again: %w", domain.ErrConflict)
