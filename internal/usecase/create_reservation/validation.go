package create_reservation

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request, now time.Time) error {
	if req.Actor.ID <= 0 {
		return fmt.Errorf("%w: actor id must be positive", ErrInvalidInput)
	}

	if req.ResourceID <= 0 {
		return fmt.Errorf("%w: resourceID must be positive", ErrInvalidInput)
	}

	if !req.Kind.IsValid() {
		return fmt.Errorf("%w: unknown reservation kind %q", ErrInvalidInput, req.Kind)
	}

	// Тариф обязателен только для аренды
	if req.Kind.IsPriced() && !req.RateType.IsValid() {
		return fmt.Errorf("%w: rateType must be hourly or daily", ErrInvalidInput)
	}

	if err := req.Window.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if req.Window.Start.Before(now) {
		return fmt.Errorf("%w: reservation cannot start in the past", ErrInvalidInput)
	}

	if err := validateTimeSlots(req.TimeSlots, req.Window); err != nil {
		return err
	}

	if err := validateServices(req.AdditionalServices); err != nil {
		return err
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateTimeSlots проверяет, что явные слоты лежат внутри окна
func validateTimeSlots(slots []domain.TimeSlot, window domain.Window) error {
	for i, s := range slots {
		if !s.Start.Before(s.End) {
			return fmt.Errorf("%w: time slot %d: start must be before end", ErrInvalidInput, i)
		}
		if s.Start.Before(window.Start) || s.End.After(window.End) {
			return fmt.Errorf("%w: time slot %d is outside the reservation window", ErrInvalidInput, i)
		}
	}
	return nil
}

// validateServices проверяет дополнительные услуги
func validateServices(services []domain.AdditionalService) error {
	if len(services) > domain.MaxAdditionalServices {
		return fmt.Errorf("%w: at most %d additional services allowed", ErrInvalidInput, domain.MaxAdditionalServices)
	}
	for i, s := range services {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("%w: additional service %d: name is required", ErrInvalidInput, i)
		}
		if s.Price < 0 {
			return fmt.Errorf("%w: additional service %q: price must not be negative", ErrInvalidInput, s.Name)
		}
	}
	return nil
}

// checkNegotiation проверяет, что переговоры относятся к этому бронированию
func checkNegotiation(n *domain.Negotiation, req *Request) error {
	if n.ResourceID != req.ResourceID {
		return fmt.Errorf("%w: negotiation %d is for resource %d", ErrNegotiationMismatch, n.ID, n.ResourceID)
	}
	if n.CustomerID != req.Actor.ID {
		return fmt.Errorf("%w: negotiation %d belongs to another customer", ErrNegotiationMismatch, n.ID)
	}
	if n.RateType != req.RateType {
		return fmt.Errorf("%w: negotiation %d is for %s rate", ErrNegotiationMismatch, n.ID, n.RateType)
	}
	return nil
}
