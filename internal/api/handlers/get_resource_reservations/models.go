package get_resource_reservations

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
	"github.com/m04kA/SMC-RentalService/internal/service/reservations/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
// status, from, to (RFC3339) и includeInactive опциональны
func ToServiceRequest(resourceID int64, r *http.Request) (*models.ListByResourceRequest, error) {
	req := &models.ListByResourceRequest{
		ResourceID:      resourceID,
		Status:          handlers.QueryString(r, "status"),
		IncludeInactive: false, // По умолчанию только активные
	}

	from, err := handlers.QueryTime(r, "from")
	if err != nil {
		return nil, err
	}
	req.From = from

	to, err := handlers.QueryTime(r, "to")
	if err != nil {
		return nil, err
	}
	req.To = to

	if includeInactiveStr := r.URL.Query().Get("includeInactive"); includeInactiveStr != "" {
		includeInactive, err := strconv.ParseBool(includeInactiveStr)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid includeInactive value", handlers.ErrInvalidQueryParam)
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}
