package apply_to_job

import (
	"net/http"

	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
	"github.com/m04kA/SMC-RentalService/internal/api/middleware"
	"github.com/m04kA/SMC-RentalService/internal/service/hiring/models"
)

const (
	route = "POST /jobs/{jobId}/applications"

	msgInvalidJobID  = "некорректный ID вакансии"
	msgMissingUserID = "отсутствует ID пользователя"
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

// Handle POST /api/v1/jobs/{jobId}/applications
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	jobID, err := handlers.PathID(r, "jobId")
	if err != nil {
		h.logger.Warn("%s - Invalid jobId: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidJobID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", route)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.ApplyRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondDomainError(w, err)
		return
	}

	application, err := h.service.Apply(r.Context(), jobID, actor, &req)
	if err != nil {
		handlers.RespondServiceError(w, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Application created: application_id=%d, job_id=%d, user_id=%d", route, application.ID, jobID, actor.ID)
	handlers.RespondJSON(w, http.StatusCreated, application)
}
