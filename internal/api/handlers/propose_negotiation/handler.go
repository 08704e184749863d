package propose_negotiation

import (
	"net/http"

	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
	"github.com/m04kA/SMC-RentalService/internal/api/middleware"
	"github.com/m04kA/SMC-RentalService/internal/service/negotiations/models"
)

const (
	route = "POST /negotiations"

	msgMissingUserID = "отсутствует ID пользователя"
)

type Handler struct {
	service NegotiationService
	logger  Logger
}

func NewHandler(service NegotiationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/negotiations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", route)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.ProposeRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondDomainError(w, err)
		return
	}

	negotiation, err := h.service.Propose(r.Context(), actor, &req)
	if err != nil {
		handlers.RespondServiceError(w, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Negotiation proposed: negotiation_id=%d, resource_id=%d, user_id=%d", route, negotiation.ID, req.ResourceID, actor.ID)
	handlers.RespondJSON(w, http.StatusCreated, negotiation)
}
