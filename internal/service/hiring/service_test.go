package hiring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	applicationRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/application"
	"github.com/m04kA/SMC-RentalService/internal/service/hiring/models"
	"github.com/m04kA/SMC-RentalService/pkg/aftercommit"
	"github.com/m04kA/SMC-RentalService/pkg/logger"
)

type fakeApplications struct {
	items  map[int64]*domain.JobApplication
	nextID int64
}

func clone(a *domain.JobApplication) *domain.JobApplication {
	c := *a
	c.Messages = append([]domain.Message(nil), a.Messages...)
	if a.Interview != nil {
		interview := *a.Interview
		c.Interview = &interview
	}
	if a.Contract != nil {
		contract := *a.Contract
		c.Contract = &contract
	}
	return &c
}

func (f *fakeApplications) Create(_ context.Context, a *domain.JobApplication) (*domain.JobApplication, error) {
	for _, existing := range f.items {
		if existing.JobID == a.JobID && existing.DriverID == a.DriverID {
			return nil, applicationRepo.ErrDuplicateApplication
		}
	}
	f.nextID++
	a.ID = f.nextID
	f.items[a.ID] = clone(a)
	return a, nil
}

func (f *fakeApplications) GetByID(_ context.Context, id int64) (*domain.JobApplication, error) {
	a, ok := f.items[id]
	if !ok {
		return nil, applicationRepo.ErrApplicationNotFound
	}
	return clone(a), nil
}

func (f *fakeApplications) Update(_ context.Context, a *domain.JobApplication) (*domain.JobApplication, error) {
	f.items[a.ID] = clone(a)
	return a, nil
}

type fakeJobs struct {
	items map[int64]*domain.Job
}

func (f *fakeJobs) GetByID(_ context.Context, id int64) (*domain.Job, error) {
	job, ok := f.items[id]
	if !ok {
		return nil, applicationRepo.ErrJobNotFound
	}
	c := *job
	return &c, nil
}

func (f *fakeJobs) Update(_ context.Context, job *domain.Job) error {
	c := *job
	f.items[job.ID] = &c
	return nil
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
	ownerID  int64 = 200
	driverID int64 = 300
	jobID    int64 = 10
)

var (
	now      = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	owner    = domain.Actor{ID: ownerID, Role: domain.RoleOwner}
	driver   = domain.Actor{ID: driverID, Role: domain.RoleDriver}
	stranger = domain.Actor{ID: 999, Role: domain.RoleDriver}
)

type fixture struct {
	svc          *Service
	applications *fakeApplications
	jobs         *fakeJobs
	notifier     *fakeNotifier
	clock        *fixedTime
}

func newFixture(enforceExpiry bool) *fixture {
	f := &fixture{
		applications: &fakeApplications{items: map[int64]*domain.JobApplication{}},
		jobs: &fakeJobs{items: map[int64]*domain.Job{
			jobID: {ID: jobID, OwnerID: ownerID, Title: "Личный водитель", Status: domain.JobOpen},
		}},
		notifier: &fakeNotifier{},
		clock:    &fixedTime{now: now},
	}

	log := logger.NewNop()
	f.svc = NewService(
		f.applications,
		f.jobs,
		passthroughTx{},
		aftercommit.NewRunner(log, nil),
		f.notifier,
		7*24*time.Hour,
		enforceExpiry,
		log,
	)
	f.svc.timeProvider = f.clock
	return f
}

// shortlisted отклик, готовый к контракту
func (f *fixture) shortlisted(t *testing.T) int64 {
	t.Helper()

	created, err := f.svc.Apply(context.Background(), jobID, driver, &models.ApplyRequest{})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), created.ID, owner, &models.UpdateStatusRequest{Action: "shortlist"})
	require.NoError(t, err)

	return created.ID
}

func TestApply(t *testing.T) {
	f := newFixture(false)

	got, err := f.svc.Apply(context.Background(), jobID, driver, &models.ApplyRequest{})
	require.NoError(t, err)

	assert.Equal(t, "pending", got.Status)
	assert.Equal(t, ownerID, got.OwnerID)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, domain.SingleUser(ownerID), f.notifier.sent[0].Audience)
	assert.Equal(t, domain.NotifyApplicationReceived, f.notifier.sent[0].Type)

	_, err = f.svc.Apply(context.Background(), jobID, driver, &models.ApplyRequest{})
	assert.ErrorIs(t, err, ErrAlreadyApplied)
}

func TestApply_Errors(t *testing.T) {
	f := newFixture(false)
	f.jobs.items[11] = &domain.Job{ID: 11, OwnerID: ownerID, Status: domain.JobFilled}

	_, err := f.svc.Apply(context.Background(), 404, driver, &models.ApplyRequest{})
	assert.ErrorIs(t, err, ErrJobNotFound)

	_, err = f.svc.Apply(context.Background(), 11, driver, &models.ApplyRequest{})
	assert.ErrorIs(t, err, ErrJobNotOpen)

	_, err = f.svc.Apply(context.Background(), jobID, owner, &models.ApplyRequest{})
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(false)
	created, err := f.svc.Apply(context.Background(), jobID, driver, &models.ApplyRequest{})
	require.NoError(t, err)

	// Водитель не может сам себя отобрать
	_, err = f.svc.UpdateStatus(context.Background(), created.ID, driver, &models.UpdateStatusRequest{Action: "shortlist"})
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))

	got, err := f.svc.UpdateStatus(context.Background(), created.ID, driver, &models.UpdateStatusRequest{Action: "withdraw"})
	require.NoError(t, err)
	assert.Equal(t, "withdrawn", got.Status)
	assert.Equal(t, domain.SingleUser(ownerID), f.notifier.sent[len(f.notifier.sent)-1].Audience)

	_, err = f.svc.UpdateStatus(context.Background(), created.ID, owner, &models.UpdateStatusRequest{Action: "shortlist"})
	assert.Equal(t, domain.KindInvalidStateTransition, domain.KindOf(err))
}

func TestInterviewFlow(t *testing.T) {
	f := newFixture(false)
	id := f.shortlisted(t)

	scheduledAt := now.Add(24 * time.Hour)
	got, err := f.svc.ScheduleInterview(context.Background(), id, owner, &models.ScheduleInterviewRequest{
		ScheduledAt:     scheduledAt,
		DurationMinutes: 30,
		Location:        "Офис",
	})
	require.NoError(t, err)
	assert.Equal(t, "interview_scheduled", got.Status)
	require.NotNil(t, got.Interview)
	assert.Equal(t, domain.InterviewScheduled, got.Interview.Status)

	last := f.notifier.sent[len(f.notifier.sent)-1]
	assert.Equal(t, domain.NotifyInterviewScheduled, last.Type)
	assert.Equal(t, domain.SingleUser(driverID), last.Audience)

	_, err = f.svc.CompleteInterview(context.Background(), id, owner, &models.CompleteInterviewRequest{Rating: 6})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	got, err = f.svc.CompleteInterview(context.Background(), id, owner, &models.CompleteInterviewRequest{Rating: 4, Feedback: "хорошо"})
	require.NoError(t, err)
	assert.Equal(t, "interview_completed", got.Status)
	require.NotNil(t, got.Interview.Rating)
	assert.Equal(t, 4, *got.Interview.Rating)
}

func TestContractSigning(t *testing.T) {
	f := newFixture(false)
	id := f.shortlisted(t)

	got, err := f.svc.CreateContract(context.Background(), id, owner, &models.CreateContractRequest{Terms: "5/2, 8 часов"})
	require.NoError(t, err)
	require.NotNil(t, got.Contract)
	assert.Equal(t, domain.ContractPendingDriver, got.Contract.Status)
	assert.Equal(t, now.Add(7*24*time.Hour), got.Contract.ExpiresAt)

	_, err = f.svc.CreateContract(context.Background(), id, owner, &models.CreateContractRequest{Terms: "again"})
	assert.ErrorIs(t, err, domain.ErrContractExists)

	// Владелец не может подписать раньше водителя
	_, err = f.svc.SignContract(context.Background(), id, owner, &models.SignContractRequest{SignatureURL: "https://sign/owner"}, "10.0.0.1")
	assert.ErrorIs(t, err, domain.ErrNotPendingSignature)

	got, err = f.svc.SignContract(context.Background(), id, driver, &models.SignContractRequest{SignatureURL: "https://sign/driver"}, "10.0.0.2")
	require.NoError(t, err)
	assert.Equal(t, domain.ContractPendingOwner, got.Contract.Status)
	assert.Equal(t, "10.0.0.2", got.Contract.DriverSignature.IPAddress)
	assert.Equal(t, domain.NotifyContractDriverSigned, f.notifier.sent[len(f.notifier.sent)-1].Type)

	_, err = f.svc.SignContract(context.Background(), id, driver, &models.SignContractRequest{SignatureURL: "https://sign/driver"}, "10.0.0.2")
	assert.ErrorIs(t, err, domain.ErrAlreadySigned)

	sent := len(f.notifier.sent)
	got, err = f.svc.SignContract(context.Background(), id, owner, &models.SignContractRequest{SignatureURL: "https://sign/owner"}, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, domain.ContractSigned, got.Contract.Status)
	assert.Equal(t, "accepted", got.Status)

	job := f.jobs.items[jobID]
	assert.Equal(t, domain.JobFilled, job.Status)
	require.NotNil(t, job.HiredDriverID)
	assert.Equal(t, driverID, *job.HiredDriverID)

	require.Len(t, f.notifier.sent, sent+2)
	assert.Equal(t, domain.SingleUser(driverID), f.notifier.sent[sent].Audience)
	assert.Equal(t, domain.RoleGroup(domain.RoleAdmin), f.notifier.sent[sent+1].Audience)
}

func TestSignContract_FilledJobRollsBack(t *testing.T) {
	f := newFixture(false)
	id := f.shortlisted(t)

	_, err := f.svc.CreateContract(context.Background(), id, owner, &models.CreateContractRequest{Terms: "terms"})
	require.NoError(t, err)
	_, err = f.svc.SignContract(context.Background(), id, driver, &models.SignContractRequest{SignatureURL: "https://sign/driver"}, "")
	require.NoError(t, err)

	// Вакансию закрыли по другому отклику
	f.jobs.items[jobID].Status = domain.JobFilled

	_, err = f.svc.SignContract(context.Background(), id, owner, &models.SignContractRequest{SignatureURL: "https://sign/owner"}, "")
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	assert.Equal(t, domain.ContractPendingOwner, f.applications.items[id].Contract.Status)
}

func TestSignContract_ExpiryEnforcement(t *testing.T) {
	for _, enforce := range []bool{false, true} {
		f := newFixture(enforce)
		id := f.shortlisted(t)

		_, err := f.svc.CreateContract(context.Background(), id, owner, &models.CreateContractRequest{Terms: "terms"})
		require.NoError(t, err)

		f.clock.now = now.Add(8 * 24 * time.Hour)

		_, err = f.svc.SignContract(context.Background(), id, driver, &models.SignContractRequest{SignatureURL: "https://sign/driver"}, "")
		if enforce {
			assert.ErrorIs(t, err, domain.ErrContractExpired)
		} else {
			assert.NoError(t, err)
		}
	}
}

func TestMessagesAndAccess(t *testing.T) {
	f := newFixture(false)
	created, err := f.svc.Apply(context.Background(), jobID, driver, &models.ApplyRequest{})
	require.NoError(t, err)

	got, err := f.svc.PostMessage(context.Background(), created.ID, owner, &models.PostMessageRequest{Body: "Когда сможете приехать?"})
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, ownerID, got.Messages[0].SenderID)
	assert.Equal(t, domain.SingleUser(driverID), f.notifier.sent[len(f.notifier.sent)-1].Audience)

	_, err = f.svc.PostMessage(context.Background(), created.ID, stranger, &models.PostMessageRequest{Body: "hi"})
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))

	_, err = f.svc.Get(context.Background(), created.ID, stranger)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.Get(context.Background(), created.ID, domain.Actor{ID: 1, Role: domain.RoleAdmin})
	assert.NoError(t, err)

	_, err = f.svc.Get(context.Background(), 404, owner)
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}
