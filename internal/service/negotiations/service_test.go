package negotiations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	negotiationRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/negotiation"
	resourceRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/resource"
	"github.com/m04kA/SMC-RentalService/internal/service/negotiations/models"
	"github.com/m04kA/SMC-RentalService/pkg/aftercommit"
	"github.com/m04kA/SMC-RentalService/pkg/logger"
	"github.com/m04kA/SMC-RentalService/pkg/ptr"
)

type fakeNegotiations struct {
	items   map[int64]*domain.Negotiation
	nextID  int64
	updates int
}

func clone(n *domain.Negotiation) *domain.Negotiation {
	c := *n
	c.CounterOffers = append([]domain.CounterOffer(nil), n.CounterOffers...)
	return &c
}

func (f *fakeNegotiations) Create(_ context.Context, n *domain.Negotiation) (*domain.Negotiation, error) {
	f.nextID++
	n.ID = f.nextID
	f.items[n.ID] = clone(n)
	return n, nil
}

func (f *fakeNegotiations) GetByID(_ context.Context, id int64) (*domain.Negotiation, error) {
	n, ok := f.items[id]
	if !ok {
		return nil, negotiationRepo.ErrNegotiationNotFound
	}
	return clone(n), nil
}

func (f *fakeNegotiations) Update(_ context.Context, n *domain.Negotiation) (*domain.Negotiation, error) {
	f.updates++
	f.items[n.ID] = clone(n)
	return n, nil
}

type fakeResources struct {
	cars map[int64]*domain.Car
}

func (f *fakeResources) GetByID(_ context.Context, id int64) (*domain.Car, error) {
	car, ok := f.cars[id]
	if !ok {
		return nil, resourceRepo.ErrCarNotFound
	}
	return car, nil
}

type passthroughTx struct{}

func (passthroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeNotifier struct {
	sent []domain.Notification
}

func (f *fakeNotifier) Notify(_ context.Context, n domain.Notification) error {
	f.sent = append(f.sent, n)
	return nil
}

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time {
	return f.now
}

const (
	ownerID    int64 = 200
	customerID int64 = 100
	carID      int64 = 1
)

var (
	now      = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	owner    = domain.Actor{ID: ownerID, Role: domain.RoleOwner}
	client   = domain.Actor{ID: customerID, Role: domain.RoleCustomer}
	stranger = domain.Actor{ID: 999, Role: domain.RoleCustomer}
)

type fixture struct {
	svc          *Service
	negotiations *fakeNegotiations
	notifier     *fakeNotifier
	clock        *fixedTime
}

func newFixture(maxRounds int) *fixture {
	cars := map[int64]*domain.Car{
		carID: {ID: carID, OwnerID: ownerID, DailyRate: ptr.Ptr(10.0)},
	}

	f := &fixture{
		negotiations: &fakeNegotiations{items: map[int64]*domain.Negotiation{}},
		notifier:     &fakeNotifier{},
		clock:        &fixedTime{now: now},
	}

	log := logger.NewNop()
	f.svc = NewService(
		f.negotiations,
		&fakeResources{cars: cars},
		passthroughTx{},
		aftercommit.NewRunner(log, nil),
		f.notifier,
		48*time.Hour,
		maxRounds,
		log,
	)
	f.svc.timeProvider = f.clock
	return f
}

func proposeRequest() *models.ProposeRequest {
	return &models.ProposeRequest{
		ResourceID:   carID,
		ProposedRate: 8,
		RateType:     "daily",
		StartAt:      time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
		EndAt:        time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC),
	}
}

func TestPropose(t *testing.T) {
	f := newFixture(0)

	got, err := f.svc.Propose(context.Background(), client, proposeRequest())
	require.NoError(t, err)

	assert.Equal(t, "pending", got.Status)
	assert.Equal(t, 10.0, got.OriginalRate)
	assert.Equal(t, 8.0, got.ProposedRate)
	assert.Equal(t, ownerID, got.OwnerID)
	assert.Equal(t, "customer", got.InitiatedBy)
	assert.Equal(t, now.Add(48*time.Hour), got.ExpiresAt)
	assert.Empty(t, got.CounterOffers)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, domain.SingleUser(ownerID), f.notifier.sent[0].Audience)
	assert.Equal(t, domain.NotifyNegotiationProposed, f.notifier.sent[0].Type)
}

func TestPropose_ByOwner(t *testing.T) {
	f := newFixture(0)
	req := proposeRequest()
	req.CustomerID = ptr.Ptr(customerID)

	got, err := f.svc.Propose(context.Background(), owner, req)
	require.NoError(t, err)

	assert.Equal(t, customerID, got.CustomerID)
	assert.Equal(t, ownerID, got.OwnerID)
	assert.Equal(t, "owner", got.InitiatedBy)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, domain.SingleUser(customerID), f.notifier.sent[0].Audience)

	// Владелец не может принять собственное предложение, клиент может
	_, err = f.svc.Respond(context.Background(), got.ID, owner, &models.RespondRequest{Action: "accept"})
	assert.Equal(t, domain.KindInvalidStateTransition, domain.KindOf(err))

	accepted, err := f.svc.Respond(context.Background(), got.ID, client, &models.RespondRequest{Action: "accept"})
	require.NoError(t, err)
	assert.Equal(t, "accepted", accepted.Status)
	assert.Equal(t, 8.0, accepted.ProposedRate)
}

func TestPropose_Errors(t *testing.T) {
	tests := []struct {
		name     string
		actor    domain.Actor
		mutate   func(r *models.ProposeRequest)
		wantKind domain.Kind
	}{
		{"owner without customer", owner, nil, domain.KindValidation},
		{"owner names themself", owner, func(r *models.ProposeRequest) { r.CustomerID = ptr.Ptr(ownerID) }, domain.KindValidation},
		{"owner of another car", domain.Actor{ID: 300, Role: domain.RoleOwner}, func(r *models.ProposeRequest) { r.CustomerID = ptr.Ptr(customerID) }, domain.KindUnauthorized},
		{"customer on behalf of another", client, func(r *models.ProposeRequest) { r.CustomerID = ptr.Ptr(int64(101)) }, domain.KindUnauthorized},
		{"admin role", domain.Actor{ID: 1, Role: domain.RoleAdmin}, nil, domain.KindUnauthorized},
		{"zero rate", client, func(r *models.ProposeRequest) { r.ProposedRate = 0 }, domain.KindValidation},
		{"unknown rate type", client, func(r *models.ProposeRequest) { r.RateType = "weekly" }, domain.KindValidation},
		{"no hourly rate on car", client, func(r *models.ProposeRequest) { r.RateType = "hourly" }, domain.KindConfiguration},
		{"inverted window", client, func(r *models.ProposeRequest) { r.StartAt, r.EndAt = r.EndAt, r.StartAt }, domain.KindValidation},
		{"unknown car", client, func(r *models.ProposeRequest) { r.ResourceID = 404 }, domain.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(0)
			req := proposeRequest()
			if tt.mutate != nil {
				tt.mutate(req)
			}

			_, err := f.svc.Propose(context.Background(), tt.actor, req)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, domain.KindOf(err))
			assert.Empty(t, f.negotiations.items)
		})
	}
}

func TestRespond_CounterThenAccept(t *testing.T) {
	f := newFixture(0)
	created, err := f.svc.Propose(context.Background(), client, proposeRequest())
	require.NoError(t, err)

	// Клиент не может ответить на собственное предложение
	_, err = f.svc.Respond(context.Background(), created.ID, client, &models.RespondRequest{Action: "accept"})
	assert.ErrorIs(t, err, domain.ErrNotYourTurn)

	countered, err := f.svc.Respond(context.Background(), created.ID, owner, &models.RespondRequest{Action: "counter", Rate: ptr.Ptr(9.0), Message: "meet halfway"})
	require.NoError(t, err)
	assert.Equal(t, "countered", countered.Status)
	assert.Equal(t, 9.0, countered.ProposedRate)
	require.Len(t, countered.CounterOffers, 1)
	assert.Equal(t, "owner", countered.CounterOffers[0].Proposer)

	accepted, err := f.svc.Respond(context.Background(), created.ID, client, &models.RespondRequest{Action: "accept"})
	require.NoError(t, err)
	assert.Equal(t, "accepted", accepted.Status)
	assert.Equal(t, 9.0, accepted.ProposedRate)

	require.Len(t, f.notifier.sent, 3)
	assert.Equal(t, domain.NotifyNegotiationCountered, f.notifier.sent[1].Type)
	assert.Equal(t, domain.SingleUser(customerID), f.notifier.sent[1].Audience)
	assert.Equal(t, domain.NotifyNegotiationAccepted, f.notifier.sent[2].Type)
	assert.Equal(t, domain.SingleUser(ownerID), f.notifier.sent[2].Audience)

	// Закрытые переговоры не принимают ответов
	_, err = f.svc.Respond(context.Background(), created.ID, owner, &models.RespondRequest{Action: "reject"})
	assert.ErrorIs(t, err, domain.ErrNegotiationClosed)
}

func TestRespond_CounterLimit(t *testing.T) {
	f := newFixture(1)
	created, err := f.svc.Propose(context.Background(), client, proposeRequest())
	require.NoError(t, err)

	_, err = f.svc.Respond(context.Background(), created.ID, owner, &models.RespondRequest{Action: "counter", Rate: ptr.Ptr(9.5)})
	require.NoError(t, err)

	_, err = f.svc.Respond(context.Background(), created.ID, client, &models.RespondRequest{Action: "counter", Rate: ptr.Ptr(8.5)})
	assert.ErrorIs(t, err, domain.ErrCounterLimitReached)
}

func TestRespond_ExpiredIsPersisted(t *testing.T) {
	f := newFixture(0)
	created, err := f.svc.Propose(context.Background(), client, proposeRequest())
	require.NoError(t, err)

	f.clock.now = now.Add(49 * time.Hour)

	_, err = f.svc.Respond(context.Background(), created.ID, owner, &models.RespondRequest{Action: "accept"})
	assert.ErrorIs(t, err, domain.ErrNegotiationExpired)
	assert.Equal(t, domain.KindInvalidStateTransition, domain.KindOf(err))
	assert.Equal(t, domain.NegotiationExpired, f.negotiations.items[created.ID].Status)
}

func TestRespond_Errors(t *testing.T) {
	f := newFixture(0)
	created, err := f.svc.Propose(context.Background(), client, proposeRequest())
	require.NoError(t, err)

	_, err = f.svc.Respond(context.Background(), created.ID, stranger, &models.RespondRequest{Action: "accept"})
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))

	_, err = f.svc.Respond(context.Background(), created.ID, owner, &models.RespondRequest{Action: "haggle"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = f.svc.Respond(context.Background(), created.ID, owner, &models.RespondRequest{Action: "counter"})
	assert.ErrorIs(t, err, domain.ErrInvalidNegotiationRate)

	_, err = f.svc.Respond(context.Background(), 404, owner, &models.RespondRequest{Action: "accept"})
	assert.ErrorIs(t, err, ErrNegotiationNotFound)
}

func TestGet_LazyExpiry(t *testing.T) {
	f := newFixture(0)
	created, err := f.svc.Propose(context.Background(), client, proposeRequest())
	require.NoError(t, err)

	got, err := f.svc.Get(context.Background(), created.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Status)
	assert.Zero(t, f.negotiations.updates)

	f.clock.now = now.Add(48 * time.Hour)

	got, err = f.svc.Get(context.Background(), created.ID, client)
	require.NoError(t, err)
	assert.Equal(t, "expired", got.Status)
	assert.Equal(t, 1, f.negotiations.updates)
	assert.Equal(t, domain.NegotiationExpired, f.negotiations.items[created.ID].Status)

	_, err = f.svc.Get(context.Background(), created.ID, stranger)
	assert.ErrorIs(t, err, ErrAccessDenied)
}
