package complete_interview

import (
	"net/http"

	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
	"github.com/m04kA/SMC-RentalService/internal/api/middleware"
	"github.com/m04kA/SMC-RentalService/internal/service/hiring/models"
)

const (
	route = "PATCH /applications/{applicationId}/interview/complete"

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

// Handle PATCH /api/v1/applications/{applicationId}/interview/complete
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

	var req models.CompleteInterviewRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondDomainError(w, err)
		return
	}

	application, err := h.service.CompleteInterview(r.Context(), applicationID, actor, &req)
	if err != nil {
		handlers.RespondServiceError(w, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Interview completed: application_id=%d, rating=%d", route, applicationID, req.Rating)
	handlers.RespondJSON(w, http.StatusOK, application)
}
