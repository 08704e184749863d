package get_negotiation

import (
	"net/http"

	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
	"github.com/m04kA/SMC-RentalService/internal/api/middleware"
)

const (
	route = "GET /negotiations/{negotiationId}"

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

// Handle GET /api/v1/negotiations/{negotiationId}
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

	negotiation, err := h.service.Get(r.Context(), negotiationID, actor)
	if err != nil {
		handlers.RespondServiceError(w, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Negotiation retrieved: negotiation_id=%d, status=%s", route, negotiationID, negotiation.Status)
	handlers.RespondJSON(w, http.StatusOK, negotiation)
}
