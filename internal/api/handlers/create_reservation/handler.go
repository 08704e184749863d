package create_reservation

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
	"github.com/m04kA/SMC-RentalService/internal/api/middleware"
	"github.com/m04kA/SMC-RentalService/internal/infra/lock"
	"github.com/m04kA/SMC-RentalService/internal/service/reservations/models"
	createReservation "github.com/m04kA/SMC-RentalService/internal/usecase/create_reservation"
)

const (
	route = "POST /reservations"

	msgMissingUserID    = "отсутствует ID пользователя"
	msgSlotNotAvailable = "выбранное время уже занято"
	msgResourceBusy     = "машина сейчас бронируется другим пользователем, повторите попытку"
	msgNegotiationUsed  = "по этим переговорам уже создано бронирование"
	msgResourceNotFound = "машина не найдена"
)

type Handler struct {
	useCase CreateReservationUseCase
	logger  Logger
}

func NewHandler(useCase CreateReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", route)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateReservationRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondDomainError(w, err)
		return
	}

	reservation, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(actor))
	if err != nil {
		switch {
		case errors.Is(err, createReservation.ErrReservationConflict):
			h.logger.Warn("%s - Window not available: resource_id=%d, user_id=%d", route, req.ResourceID, actor.ID)
			handlers.RespondError(w, http.StatusConflict, msgSlotNotAvailable)

		case errors.Is(err, lock.ErrResourceBusy):
			h.logger.Warn("%s - Resource busy: resource_id=%d, user_id=%d", route, req.ResourceID, actor.ID)
			handlers.RespondError(w, http.StatusConflict, msgResourceBusy)

		case errors.Is(err, createReservation.ErrNegotiationUsed):
			h.logger.Warn("%s - Negotiation already used: negotiation_id=%v", route, req.NegotiationID)
			handlers.RespondError(w, http.StatusConflict, msgNegotiationUsed)

		case errors.Is(err, createReservation.ErrResourceNotFound):
			h.logger.Warn("%s - Resource not found: resource_id=%d", route, req.ResourceID)
			handlers.RespondNotFound(w, msgResourceNotFound)

		default:
			handlers.RespondServiceError(w, h.logger, route, err)
		}
		return
	}

	h.logger.Info("%s - Reservation created successfully: reservation_id=%d, resource_id=%d, user_id=%d",
		route, reservation.ID, reservation.ResourceID, actor.ID)
	handlers.RespondJSON(w, http.StatusCreated, models.FromDomainReservation(reservation))
}
