package get_application

import (
	"net/http"

	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
	"github.com/m04kA/SMC-RentalService/internal/api/middleware"
)

const (
	route = "GET /applications/{applicationId}"

	msgInvalidApplicationID = "некорректный ID отклика"
	msgMissingUserID        = "отсутствует ID пользователя"
)

type Handler struct {
	service HiringService
	logger  Logger
}

func NewHandler(service HiringService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/applications/{applicationId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	applicationID, err := handlers.PathID(r, "applicationId")
	if err != nil {
		h.logger.Warn("%s - Invalid applicationId: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidApplicationID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", route)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	application, err := h.service.Get(r.Context(), applicationID, actor)
	if err != nil {
		handlers.RespondServiceError(w, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Application retrieved: application_id=%d, user_id=%d", route, applicationID, actor.ID)
	handlers.RespondJSON(w, http.StatusOK, application)
}
