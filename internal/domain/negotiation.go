package domain

import (
	"fmt"
	"time"
)

// NegotiationStatus represents the state of a rate negotiation
type NegotiationStatus string

const (
	NegotiationPending   NegotiationStatus = "pending"
	NegotiationAccepted  NegotiationStatus = "accepted"
	NegotiationRejected  NegotiationStatus = "rejected"
	NegotiationCountered NegotiationStatus = "countered"
	NegotiationExpired   NegotiationStatus = "expired"
)

// IsTerminal returns true for accepted, rejected and expired negotiations.
func (s NegotiationStatus) IsTerminal() bool {
	return s == NegotiationAccepted || s == NegotiationRejected || s == NegotiationExpired
}

// NegotiationAction is a response to the last offer.
type NegotiationAction string

const (
	ActionAccept  NegotiationAction = "accept"
	ActionReject  NegotiationAction = "reject"
	ActionCounter NegotiationAction = "counter"
)

// IsValid reports whether a is a known action.
func (a NegotiationAction) IsValid() bool {
	return a == ActionAccept || a == ActionReject || a == ActionCounter
}

// Party is a side of a negotiation.
type Party string

const (
	PartyCustomer Party = "customer"
	PartyOwner    Party = "owner"
)

var (
	ErrNegotiationExpired       = fmt.Errorf("negotiation has expired: %w", ErrInvalidStateTransition)
	ErrNegotiationClosed        = fmt.Errorf("negotiation is closed: %w", ErrInvalidStateTransition)
	ErrNotYourTurn              = fmt.Errorf("cannot respond to your own offer: %w", ErrInvalidStateTransition)
	ErrCounterLimitReached      = fmt.Errorf("counter-offer limit reached: %w", ErrInvalidStateTransition)
	ErrNotNegotiationParty      = fmt.Errorf("not a party to the negotiation: %w", ErrUnauthorized)
	ErrInvalidNegotiationRate   = fmt.Errorf("rate must be positive: %w", ErrValidation)
	ErrUnknownNegotiationAction = fmt.Errorf("unknown negotiation action: %w", ErrValidation)
)

// CounterOffer is one entry of the offer log.
type CounterOffer struct {
	Proposer   Party     `json:"proposer"`
	ProposerID int64     `json:"proposerId"`
	Rate       float64   `json:"rate"`
	Message    string    `json:"message,omitempty"`
	At         time.Time `json:"at"`
}

// Negotiation is a proposed deviation from the car's listed rate.
// Either side makes the initial offer; parties then alternate.
type Negotiation struct {
	ID            int64
	ResourceID    int64
	CustomerID    int64
	OwnerID       int64
	InitiatedBy   Party // side that made the initial offer
	OriginalRate  float64
	ProposedRate  float64 // the offer currently on the table
	RateType      RateType
	StartAt       time.Time
	EndAt         time.Time
	Message       *string
	Status        NegotiationStatus
	CounterOffers []CounterOffer
	ExpiresAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Window returns the requested reservation window.
func (n *Negotiation) Window() Window {
	return Window{Start: n.StartAt, End: n.EndAt}
}

// PartyOf returns the side the actor is on.
func (n *Negotiation) PartyOf(actor Actor) (Party, error) {
	switch actor.ID {
	case n.CustomerID:
		return PartyCustomer, nil
	case n.OwnerID:
		return PartyOwner, nil
	}
	return "", ErrNotNegotiationParty
}

// IsParty returns true for the customer and the owner.
func (n *Negotiation) IsParty(actor Actor) bool {
	_, err := n.PartyOf(actor)
	return err == nil
}

// Initiator returns the side that opened the negotiation.
func (n *Negotiation) Initiator() Party {
	if n.InitiatedBy == "" {
		return PartyCustomer
	}
	return n.InitiatedBy
}

// LastProposer is the side whose offer is on the table.
func (n *Negotiation) LastProposer() Party {
	if len(n.CounterOffers) == 0 {
		return n.Initiator()
	}
	return n.CounterOffers[len(n.CounterOffers)-1].Proposer
}

// ExpireIfDue moves an open negotiation past ExpiresAt to expired.
// Returns true if the status changed.
func (n *Negotiation) ExpireIfDue(now time.Time) bool {
	if n.Status.IsTerminal() || now.Before(n.ExpiresAt) {
		return false
	}
	n.Status = NegotiationExpired
	return true
}

// Respond applies action on behalf of actor. maxRounds limits the number of
// counter-offers; 0 means unlimited. On error nothing is changed except a lazy expiry.
func (n *Negotiation) Respond(actor Actor, action NegotiationAction, rate *float64, message string, now time.Time, maxRounds int) error {
	party, err := n.PartyOf(actor)
	if err != nil {
		return err
	}

	if !action.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownNegotiationAction, action)
	}

	n.ExpireIfDue(now)
	if n.Status == NegotiationExpired {
		return ErrNegotiationExpired
	}
	if n.Status.IsTerminal() {
		return fmt.Errorf("%w: status %s", ErrNegotiationClosed, n.Status)
	}

	switch action {
	case ActionReject:
		n.Status = NegotiationRejected
		return nil
	case ActionAccept:
		if party == n.LastProposer() {
			return ErrNotYourTurn
		}
		n.Status = NegotiationAccepted
		return nil
	default:
		if party == n.LastProposer() {
			return ErrNotYourTurn
		}
		if rate == nil || *rate <= 0 {
			return ErrInvalidNegotiationRate
		}
		if maxRounds > 0 && len(n.CounterOffers) >= maxRounds {
			return ErrCounterLimitReached
		}
		n.CounterOffers = append(n.CounterOffers, CounterOffer{
			Proposer:   party,
			ProposerID: actor.ID,
			Rate:       *rate,
			Message:    message,
			At:         now,
		})
		n.ProposedRate = *rate
		n.Status = NegotiationCountered
		return nil
	}
}

// AgreedRate returns the rate to book with, or an error if the negotiation is not accepted.
func (n *Negotiation) AgreedRate() (float64, error) {
	if n.Status != NegotiationAccepted {
		return 0, fmt.Errorf("%w: negotiation %d is %s, not accepted", ErrConflict, n.ID, n.Status)
	}
	return n.ProposedRate, nil
}
