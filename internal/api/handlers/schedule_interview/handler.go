package schedule_interview

import (
	"net/http"

	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
	"github.com/m04kA/SMC-RentalService/internal/api/middleware"
	"github.com/m04kA/SMC-RentalService/internal/service/hiring/models"
)

const (
	route = "POST /applications/{applicationId}/interview"

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

// Handle POST /api/v1/applications/{applicationId}/interview
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

	var req models.ScheduleInterviewRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondDomainError(w, err)
		return
	}

	application, err := h.service.ScheduleInterview(r.Context(), applicationID, actor, &req)
	if err != nil {
		handlers.RespondServiceError(w, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Interview scheduled: application_id=%d, at=%s", route, applicationID, req.ScheduledAt)
	handlers.RespondJSON(w, http.StatusOK, application)
}
