package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RentalService/pkg/ptr"
)

func newNegotiation(now time.Time) *Negotiation {
	return &Negotiation{
		ID:           5,
		ResourceID:   10,
		CustomerID:   testCustomerID,
		OwnerID:      testOwnerID,
		OriginalRate: 10,
		ProposedRate: 8,
		RateType:     RateDaily,
		StartAt:      datetime(2026, 7, 1, 0, 0),
		EndAt:        datetime(2026, 7, 3, 0, 0),
		Status:       NegotiationPending,
		ExpiresAt:    now.Add(48 * time.Hour),
	}
}

func TestNegotiation_CounterThenAccept(t *testing.T) {
	now := datetime(2026, 6, 1, 12, 0)
	n := newNegotiation(now)

	// Customer cannot accept their own opening offer
	assert.ErrorIs(t, n.Respond(customer, ActionAccept, nil, "", now, 0), ErrNotYourTurn)

	require.NoError(t, n.Respond(owner, ActionCounter, ptr.Ptr(9.0), "meet me halfway", now, 0))
	assert.Equal(t, NegotiationCountered, n.Status)
	assert.Equal(t, 9.0, n.ProposedRate)
	require.Len(t, n.CounterOffers, 1)
	assert.Equal(t, PartyOwner, n.CounterOffers[0].Proposer)
	assert.Equal(t, testOwnerID, n.CounterOffers[0].ProposerID)

	assert.ErrorIs(t, n.Respond(owner, ActionAccept, nil, "", now, 0), ErrNotYourTurn)

	require.NoError(t, n.Respond(customer, ActionAccept, nil, "", now, 0))
	assert.Equal(t, NegotiationAccepted, n.Status)

	rate, err := n.AgreedRate()
	require.NoError(t, err)
	assert.Equal(t, 9.0, rate)
}

func TestNegotiation_OwnerOpensOffer(t *testing.T) {
	now := datetime(2026, 6, 1, 12, 0)
	n := newNegotiation(now)
	n.InitiatedBy = PartyOwner

	assert.Equal(t, PartyOwner, n.LastProposer())
	assert.ErrorIs(t, n.Respond(owner, ActionAccept, nil, "", now, 0), ErrNotYourTurn)
	assert.ErrorIs(t, n.Respond(owner, ActionCounter, ptr.Ptr(9.0), "", now, 0), ErrNotYourTurn)

	require.NoError(t, n.Respond(customer, ActionCounter, ptr.Ptr(7.5), "", now, 0))
	assert.Equal(t, PartyCustomer, n.LastProposer())

	require.NoError(t, n.Respond(owner, ActionAccept, nil, "", now, 0))
	rate, err := n.AgreedRate()
	require.NoError(t, err)
	assert.Equal(t, 7.5, rate)
}

func TestNegotiation_TerminalStatesRejectEverything(t *testing.T) {
	now := datetime(2026, 6, 1, 12, 0)

	for _, status := range []NegotiationStatus{NegotiationAccepted, NegotiationRejected, NegotiationExpired} {
		for _, action := range []NegotiationAction{ActionAccept, ActionReject, ActionCounter} {
			n := newNegotiation(now)
			n.Status = status
			n.CounterOffers = []CounterOffer{{Proposer: PartyOwner, Rate: 9}}

			err := n.Respond(customer, action, ptr.Ptr(8.5), "", now, 0)
			assert.ErrorIs(t, err, ErrInvalidStateTransition, "%s/%s", status, action)
			assert.Equal(t, status, n.Status)
			assert.Len(t, n.CounterOffers, 1)
		}
	}
}

func TestNegotiation_LazyExpiry(t *testing.T) {
	now := datetime(2026, 6, 1, 12, 0)
	n := newNegotiation(now)

	assert.False(t, n.ExpireIfDue(now.Add(47*time.Hour)))
	assert.Equal(t, NegotiationPending, n.Status)

	err := n.Respond(owner, ActionCounter, ptr.Ptr(9.0), "", now.Add(48*time.Hour), 0)
	assert.ErrorIs(t, err, ErrNegotiationExpired)
	assert.Equal(t, NegotiationExpired, n.Status)
	assert.Empty(t, n.CounterOffers)
}

func TestNegotiation_CounterRoundsLimit(t *testing.T) {
	now := datetime(2026, 6, 1, 12, 0)

	unlimited := newNegotiation(now)
	actors := []Actor{owner, customer}
	for i := 0; i < 10; i++ {
		require.NoError(t, unlimited.Respond(actors[i%2], ActionCounter, ptr.Ptr(8.0+float64(i)/10), "", now, 0))
	}
	assert.Len(t, unlimited.CounterOffers, 10)

	limited := newNegotiation(now)
	require.NoError(t, limited.Respond(owner, ActionCounter, ptr.Ptr(9.5), "", now, 2))
	require.NoError(t, limited.Respond(customer, ActionCounter, ptr.Ptr(8.5), "", now, 2))
	assert.ErrorIs(t, limited.Respond(owner, ActionCounter, ptr.Ptr(9.0), "", now, 2), ErrCounterLimitReached)
	assert.Equal(t, 8.5, limited.ProposedRate)

	// Accepting is still possible once the limit is reached
	require.NoError(t, limited.Respond(owner, ActionAccept, nil, "", now, 2))
}

func TestNegotiation_Validation(t *testing.T) {
	now := datetime(2026, 6, 1, 12, 0)
	n := newNegotiation(now)

	assert.ErrorIs(t, n.Respond(stranger, ActionReject, nil, "", now, 0), ErrUnauthorized)
	assert.ErrorIs(t, n.Respond(admin, ActionReject, nil, "", now, 0), ErrUnauthorized)
	assert.ErrorIs(t, n.Respond(owner, ActionCounter, nil, "", now, 0), ErrValidation)
	assert.ErrorIs(t, n.Respond(owner, ActionCounter, ptr.Ptr(-1.0), "", now, 0), ErrValidation)
	assert.ErrorIs(t, n.Respond(owner, "haggle", nil, "", now, 0), ErrValidation)
	assert.Equal(t, NegotiationPending, n.Status)

	_, err := n.AgreedRate()
	assert.ErrorIs(t, err, ErrConflict)

	// Either party may walk away
	require.NoError(t, n.Respond(customer, ActionReject, nil, "", now, 0))
	assert.Equal(t, NegotiationRejected, n.Status)
}
