package create_contract

import (
	"net/http"

	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
	"github.com/m04kA/SMC-RentalService/internal/api/middleware"
	"github.com/m04kA/SMC-RentalService/internal/service/hiring/models"
)

const (
	route = "POST /applications/{applicationId}/contract"

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

// Handle POST /api/v1/applications/{applicationId}/contract
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

	var req models.CreateContractRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondDomainError(w, err)
		return
	}

	application, err := h.service.CreateContract(r.Context(), applicationID, actor, &req)
	if err != nil {
		handlers.RespondServiceError(w, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Contract created: application_id=%d, user_id=%d", route, applicationID, actor.ID)
	handlers.RespondJSON(w, http.StatusCreated, application)
}
