package respond_negotiation

import (
	"net/http"

	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
	"github.com/m04kA/SMC-RentalService/internal/api/middleware"
	"github.com/m04kA/SMC-RentalService/internal/service/negotiations/models"
)

const (
	route = "POST /negotiations/{negotiationId}/respond"

	msgInvalidNegotiationID = "некорректный ID переговоров"
	msgMissingUserID        = "отсутствует ID пользователя"
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

// Handle POST /api/v1/negotiations/{negotiationId}/respond
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	negotiationID, err := handlers.PathID(r, "negotiationId")
	if err != nil {
		h.logger.Warn("%s - Invalid negotiationId: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidNegotiationID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", route)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.RespondRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondDomainError(w, err)
		return
	}

	negotiation, err := h.service.Respond(r.Context(), negotiationID, actor, &req)
	if err != nil {
		handlers.RespondServiceError(w, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Negotiation answered: negotiation_id=%d, action=%s, status=%s", route, negotiationID, req.Action, negotiation.Status)
	handlers.RespondJSON(w, http.StatusOK, negotiation)
}
