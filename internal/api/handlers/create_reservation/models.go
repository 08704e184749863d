package create_reservation

import (
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	createReservation "github.com/m04kA/SMC-RentalService/internal/usecase/create_reservation"
)

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	ResourceID         int64                      `json:"resourceId" validate:"required,gt=0"`
	Kind               string                     `json:"kind,omitempty" validate:"omitempty,oneof=rental test_drive service"`
	StartAt            time.Time                  `json:"startAt" validate:"required"`
	EndAt              time.Time                  `json:"endAt" validate:"required"`
	RateType           string                     `json:"rateType,omitempty" validate:"omitempty,oneof=hourly daily"`
	TimeSlots          []domain.TimeSlot          `json:"timeSlots,omitempty"`
	AdditionalServices []domain.AdditionalService `json:"additionalServices,omitempty" validate:"max=20"`
	NegotiationID      *int64                     `json:"negotiationId,omitempty" validate:"omitempty,gt=0"`
	Notes              *string                    `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateReservationRequest) ToUseCaseRequest(actor domain.Actor) *createReservation.Request {
	return &createReservation.Request{
		Actor:              actor,
		ResourceID:         r.ResourceID,
		Kind:               domain.ReservationKind(r.Kind),
		Window:             domain.Window{Start: r.StartAt, End: r.EndAt},
		RateType:           domain.RateType(r.RateType),
		TimeSlots:          r.TimeSlots,
		AdditionalServices: r.AdditionalServices,
		NegotiationID:      r.NegotiationID,
		Notes:              r.Notes,
	}
}
