package get_availability

import (
	"net/http"

	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
)

const (
	route = "GET /resources/{resourceId}/availability"

	msgInvalidResourceID = "некорректный ID машины"
	msgInvalidPeriod     = "параметры from и to обязательны, формат RFC3339"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/resources/{resourceId}/availability
// Query params: from, to (required, RFC3339)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	resourceID, err := handlers.PathID(r, "resourceId")
	if err != nil {
		h.logger.Warn("%s - Invalid resource ID: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidResourceID)
		return
	}

	from, err := handlers.QueryTime(r, "from")
	if err != nil || from == nil {
		h.logger.Warn("%s - Invalid from: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidPeriod)
		return
	}

	to, err := handlers.QueryTime(r, "to")
	if err != nil || to == nil {
		h.logger.Warn("%s - Invalid to: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidPeriod)
		return
	}

	result, err := h.service.GetAvailability(r.Context(), resourceID, *from, *to)
	if err != nil {
		handlers.RespondServiceError(w, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Calendar built: resource_id=%d, entries=%d", route, resourceID, len(result.Entries))
	handlers.RespondJSON(w, http.StatusOK, result)
}
