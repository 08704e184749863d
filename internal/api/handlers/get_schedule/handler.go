package get_schedule

import (
	"net/http"

	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
)

const (
	route = "GET /resources/{resourceId}/schedule"

	msgInvalidResourceID = "некорректный ID машины"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/resources/{resourceId}/schedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	resourceID, err := handlers.PathID(r, "resourceId")
	if err != nil {
		h.logger.Warn("%s - Invalid resourceId: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidResourceID)
		return
	}

	schedule, err := h.service.Get(r.Context(), resourceID)
	if err != nil {
		handlers.RespondServiceError(w, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Schedule retrieved: resource_id=%d, level=%s", route, resourceID, schedule.Level)
	handlers.RespondJSON(w, http.StatusOK, schedule)
}
