package domain

import (
	"fmt"
	"time"
)

// ReservationKind distinguishes rentals from unpriced appointments on the same car.
type ReservationKind string

const (
	KindRental    ReservationKind = "rental"
	KindTestDrive ReservationKind = "test_drive"
	KindService   ReservationKind = "service"
)

// IsValid reports whether k is a known kind.
func (k ReservationKind) IsValid() bool {
	switch k {
	case KindRental, KindTestDrive, KindService:
		return true
	}
	return false
}

// IsPriced returns true for kinds that go through the pricing calculator.
func (k ReservationKind) IsPriced() bool {
	return k == KindRental
}

// ReservationStatus represents the lifecycle state of a reservation
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusActive    ReservationStatus = "active"
	StatusCompleted ReservationStatus = "completed"
	StatusRejected  ReservationStatus = "rejected"
	StatusCancelled ReservationStatus = "cancelled"
)

// ActiveStatuses hold the car. Only these take part in the overlap check.
var ActiveStatuses = []ReservationStatus{
	StatusPending,
	StatusConfirmed,
	StatusActive,
}

// reservationTransitions is the complete table of allowed status changes.
var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	StatusPending:   {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed: {StatusActive, StatusCancelled},
	StatusActive:    {StatusCompleted, StatusCancelled},
}

// IsValid reports whether s is a known status.
func (s ReservationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusActive, StatusCompleted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// IsActive returns true if the status holds the car's time window.
func (s ReservationStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusActive
}

// IsTerminal returns true if no further transitions are possible.
func (s ReservationStatus) IsTerminal() bool {
	_, ok := reservationTransitions[s]
	return !ok
}

// CanTransitionTo checks the transition table only, without authorization.
func (s ReservationStatus) CanTransitionTo(target ReservationStatus) bool {
	for _, allowed := range reservationTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// RateType is the pricing unit of a rental.
type RateType string

const (
	RateHourly RateType = "hourly"
	RateDaily  RateType = "daily"
)

// IsValid reports whether t is a known rate type.
func (t RateType) IsValid() bool {
	return t == RateHourly || t == RateDaily
}

// Window is a reservation time range. Stored as [Start, End); the overlap
// check treats both ends as inclusive.
type Window struct {
	Start time.Time
	End   time.Time
}

// Validate rejects empty and inverted windows.
func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return fmt.Errorf("%w: window start and end are required", ErrValidation)
	}
	if !w.Start.Before(w.End) {
		return fmt.Errorf("%w: window start must be before end", ErrValidation)
	}
	return nil
}

// Duration of the window.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// TimeSlot is an explicitly requested hourly slot inside the window.
type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AdditionalService is an extra priced on top of the rate (driver, child seat, ...).
type AdditionalService struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Deposit is the upfront share of the total.
type Deposit struct {
	Amount float64
	Paid   bool
}

// StatusHistoryEntry is one record of the append-only status log.
type StatusHistoryEntry struct {
	Status  ReservationStatus `json:"status"`
	ActorID int64             `json:"actorId"`
	Note    string            `json:"note,omitempty"`
	At      time.Time         `json:"at"`
}

// Cancellation records who cancelled the reservation and what was refunded.
type Cancellation struct {
	CancelledBy  int64     `json:"cancelledBy"`
	Reason       string    `json:"reason"`
	RefundAmount float64   `json:"refundAmount"`
	At           time.Time `json:"at"`
}

// Reservation is a time-bounded claim on a car: a rental, a test drive or a service visit.
type Reservation struct {
	ID         int64
	Kind       ReservationKind
	ResourceID int64
	CustomerID int64
	OwnerID    int64
	StartAt    time.Time
	EndAt      time.Time

	// Pricing, set for rentals only
	RateType           RateType
	Rate               *float64
	TotalHours         *float64
	TotalDays          *int
	TimeSlots          []TimeSlot
	AdditionalServices []AdditionalService
	ServicesAmount     float64
	TotalAmount        float64
	OriginalAmount     *float64 // amount at the listed rate, set when negotiated
	IsNegotiated       bool
	NegotiationID      *int64
	Deposit            Deposit

	Status        ReservationStatus
	StatusHistory []StatusHistoryEntry
	Cancellation  *Cancellation
	Notes         *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Window returns the reservation's time range.
func (r *Reservation) Window() Window {
	return Window{Start: r.StartAt, End: r.EndAt}
}

// IsParty returns true if the actor is the customer, the owner, an admin or the system.
func (r *Reservation) IsParty(actor Actor) bool {
	return actor.ID == r.CustomerID || actor.ID == r.OwnerID ||
		actor.Role == RoleAdmin || actor.Role == RoleSystem
}

// CheckTransition validates that actor may move the reservation to target.
// Checks run in order: relationship (Unauthorized), state table (InvalidStateTransition),
// then the role allowed to perform this particular transition (Unauthorized).
func (r *Reservation) CheckTransition(actor Actor, target ReservationStatus) error {
	if !r.IsParty(actor) {
		return fmt.Errorf("%w: actor %d is not a party to reservation %d", ErrUnauthorized, actor.ID, r.ID)
	}

	if !r.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: reservation %d cannot move from %s to %s", ErrInvalidStateTransition, r.ID, r.Status, target)
	}

	isOwner := actor.ID == r.OwnerID
	isCustomer := actor.ID == r.CustomerID
	isAdmin := actor.Role == RoleAdmin
	isSystem := actor.Role == RoleSystem

	var allowed bool
	switch target {
	case StatusConfirmed, StatusRejected:
		allowed = isOwner || isAdmin
	case StatusActive, StatusCompleted:
		allowed = isOwner || isAdmin || isSystem
	case StatusCancelled:
		allowed = isCustomer || isOwner || isAdmin
	}

	if !allowed {
		return fmt.Errorf("%w: actor %d may not move reservation %d to %s", ErrUnauthorized, actor.ID, r.ID, target)
	}
	return nil
}

// Transition moves the reservation to target and appends a history entry.
// On error nothing is changed.
func (r *Reservation) Transition(actor Actor, target ReservationStatus, note string, at time.Time) error {
	if err := r.CheckTransition(actor, target); err != nil {
		return err
	}

	r.Status = target
	r.StatusHistory = append(r.StatusHistory, StatusHistoryEntry{
		Status:  target,
		ActorID: actor.ID,
		Note:    note,
		At:      at,
	})
	return nil
}

// Cancel cancels the reservation and records the refund computed by the cancellation policy.
func (r *Reservation) Cancel(actor Actor, reason string, now time.Time) (float64, error) {
	if err := r.CheckTransition(actor, StatusCancelled); err != nil {
		return 0, err
	}

	refund := RefundAmount(r.TotalAmount, r.StartAt, now)

	r.Status = StatusCancelled
	r.StatusHistory = append(r.StatusHistory, StatusHistoryEntry{
		Status:  StatusCancelled,
		ActorID: actor.ID,
		Note:    reason,
		At:      now,
	})
	r.Cancellation = &Cancellation{
		CancelledBy:  actor.ID,
		Reason:       reason,
		RefundAmount: refund,
		At:           now,
	}
	return refund, nil
}

// CanReschedule returns nil if actor may move the window of this reservation.
func (r *Reservation) CanReschedule(actor Actor) error {
	if actor.ID != r.CustomerID && actor.Role != RoleAdmin {
		return fmt.Errorf("%w: only the customer or an admin can reschedule reservation %d", ErrUnauthorized, r.ID)
	}
	if r.Status != StatusPending && r.Status != StatusConfirmed {
		return fmt.Errorf("%w: reservation %d in status %s cannot be rescheduled", ErrInvalidStateTransition, r.ID, r.Status)
	}
	return nil
}

// AvailabilityAfter returns the car flag a rental transition from -> to should set.
// ok is false when the transition does not affect the car.
func AvailabilityAfter(kind ReservationKind, from, to ReservationStatus) (status AvailabilityStatus, ok bool) {
	if kind != KindRental {
		return "", false
	}

	switch to {
	case StatusConfirmed, StatusActive:
		return AvailabilityRented, true
	case StatusCompleted:
		return AvailabilityAvailable, true
	case StatusCancelled:
		// A cancelled pending rental never marked the car as rented
		if from == StatusConfirmed || from == StatusActive {
			return AvailabilityAvailable, true
		}
	}
	return "", false
}

// ReservationFilter is used by the owner list.
type ReservationFilter struct {
	ResourceID      int64              // required
	Status          *ReservationStatus // optional
	From            *time.Time         // reservations ending at or after From
	To              *time.Time         // reservations starting at or before To
	IncludeInactive bool
}
