package domain

import (
	"fmt"
	"strings"
	"time"
)

// JobStatus represents the state of a job posting
type JobStatus string

const (
	JobOpen   JobStatus = "open"
	JobFilled JobStatus = "filled"
	JobClosed JobStatus = "closed"
)

// Job is an owner's posting for a driver.
type Job struct {
	ID            int64
	OwnerID       int64
	Title         string
	Status        JobStatus
	HiredDriverID *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MarkFilled records the hired driver. A job can be filled only once.
func (j *Job) MarkFilled(driverID int64) error {
	if j.Status != JobOpen {
		return fmt.Errorf("%w: job %d is %s", ErrConflict, j.ID, j.Status)
	}
	j.Status = JobFilled
	j.HiredDriverID = &driverID
	return nil
}

// ApplicationStatus represents the progress of a driver's application
type ApplicationStatus string

const (
	ApplicationPending            ApplicationStatus = "pending"
	ApplicationShortlisted        ApplicationStatus = "shortlisted"
	ApplicationInterviewScheduled ApplicationStatus = "interview_scheduled"
	ApplicationInterviewCompleted ApplicationStatus = "interview_completed"
	ApplicationRejected           ApplicationStatus = "rejected"
	ApplicationAccepted           ApplicationStatus = "accepted"
	ApplicationWithdrawn          ApplicationStatus = "withdrawn"
)

// applicationTransitions lists moves available through explicit actions.
// accepted is reached only by the owner's contract signature.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationPending:            {ApplicationShortlisted, ApplicationInterviewScheduled, ApplicationRejected, ApplicationWithdrawn},
	ApplicationShortlisted:        {ApplicationInterviewScheduled, ApplicationRejected, ApplicationWithdrawn},
	ApplicationInterviewScheduled: {ApplicationInterviewScheduled, ApplicationInterviewCompleted, ApplicationRejected, ApplicationWithdrawn},
	ApplicationInterviewCompleted: {ApplicationRejected, ApplicationWithdrawn},
}

// IsTerminal returns true for accepted, rejected and withdrawn applications.
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationAccepted || s == ApplicationRejected || s == ApplicationWithdrawn
}

// CanTransitionTo checks the transition table.
func (s ApplicationStatus) CanTransitionTo(target ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// ApplicationAction is an explicit status change requested by a party.
type ApplicationAction string

const (
	ActionShortlist ApplicationAction = "shortlist"
	ActionRejectApp ApplicationAction = "reject"
	ActionWithdraw  ApplicationAction = "withdraw"
)

// InterviewStatus represents the state of the interview sub-record
type InterviewStatus string

const (
	InterviewScheduled InterviewStatus = "scheduled"
	InterviewCompleted InterviewStatus = "completed"
	InterviewCancelled InterviewStatus = "cancelled"
)

// Interview is embedded in the application.
type Interview struct {
	ScheduledAt     time.Time       `json:"scheduledAt"`
	DurationMinutes int             `json:"durationMinutes"`
	Location        string          `json:"location"`
	Status          InterviewStatus `json:"status"`
	Rating          *int            `json:"rating,omitempty"`
	Feedback        string          `json:"feedback,omitempty"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
}

// ContractStatus follows pending_driver -> pending_owner -> signed, strictly in order.
type ContractStatus string

const (
	ContractPendingDriver ContractStatus = "pending_driver"
	ContractPendingOwner  ContractStatus = "pending_owner"
	ContractSigned        ContractStatus = "signed"
)

// Signature of one party. Immutable once Signed is true.
type Signature struct {
	Signed       bool       `json:"signed"`
	SignedAt     *time.Time `json:"signedAt,omitempty"`
	SignatureURL string     `json:"signatureUrl,omitempty"`
	IPAddress    string     `json:"ipAddress,omitempty"`
}

// Contract is the bilateral agreement closing an application.
type Contract struct {
	Terms           string         `json:"terms"`
	Status          ContractStatus `json:"status"`
	DriverSignature Signature      `json:"driverSignature"`
	OwnerSignature  Signature      `json:"ownerSignature"`
	CreatedAt       time.Time      `json:"createdAt"`
	ExpiresAt       time.Time      `json:"expiresAt"`
}

// IsExpired reports whether the contract is past ExpiresAt.
func (c *Contract) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Message is one entry of the append-only application thread.
type Message struct {
	SenderID int64     `json:"senderId"`
	Body     string    `json:"body"`
	At       time.Time `json:"at"`
}

var (
	ErrAlreadySigned          = fmt.Errorf("already signed: %w", ErrInvalidStateTransition)
	ErrNotPendingSignature    = fmt.Errorf("contract is not pending your signature: %w", ErrInvalidStateTransition)
	ErrContractExists         = fmt.Errorf("contract already exists: %w", ErrInvalidStateTransition)
	ErrNoContract             = fmt.Errorf("application has no contract: %w", ErrInvalidStateTransition)
	ErrContractExpired        = fmt.Errorf("contract has expired: %w", ErrInvalidStateTransition)
	ErrNotApplicationParty    = fmt.Errorf("not a party to the application: %w", ErrUnauthorized)
	ErrApplicationClosed      = fmt.Errorf("application is closed: %w", ErrInvalidStateTransition)
	ErrUnknownApplicationStep = fmt.Errorf("unknown application action: %w", ErrValidation)
)

// JobApplication is a driver's candidacy for a job, evolving into a contract.
type JobApplication struct {
	ID          int64
	JobID       int64
	DriverID    int64
	OwnerID     int64
	Status      ApplicationStatus
	CoverLetter *string
	Interview   *Interview
	Contract    *Contract
	Messages    []Message
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsParty returns true for the driver, the owner and admins.
func (a *JobApplication) IsParty(actor Actor) bool {
	return actor.ID == a.DriverID || actor.ID == a.OwnerID || actor.IsAdmin()
}

func (a *JobApplication) requireOwner(actor Actor) error {
	if actor.ID != a.OwnerID && !actor.IsAdmin() {
		return fmt.Errorf("%w: only the job owner can do this", ErrNotApplicationParty)
	}
	return nil
}

func (a *JobApplication) moveTo(target ApplicationStatus) error {
	if !a.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: application %d cannot move from %s to %s", ErrInvalidStateTransition, a.ID, a.Status, target)
	}
	a.Status = target
	return nil
}

// Apply performs shortlist, reject or withdraw.
// Shortlist and reject belong to the owner, withdraw to the driver.
func (a *JobApplication) Apply(actor Actor, action ApplicationAction) error {
	switch action {
	case ActionShortlist, ActionRejectApp:
		if err := a.requireOwner(actor); err != nil {
			return err
		}
		if action == ActionShortlist {
			return a.moveTo(ApplicationShortlisted)
		}
		return a.moveTo(ApplicationRejected)
	case ActionWithdraw:
		if actor.ID != a.DriverID {
			return fmt.Errorf("%w: only the applicant can withdraw", ErrNotApplicationParty)
		}
		return a.moveTo(ApplicationWithdrawn)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownApplicationStep, action)
	}
}

// ScheduleInterview sets (or moves) the interview. Owner only.
func (a *JobApplication) ScheduleInterview(actor Actor, scheduledAt time.Time, durationMinutes int, location string, now time.Time) error {
	if err := a.requireOwner(actor); err != nil {
		return err
	}
	if !scheduledAt.After(now) {
		return fmt.Errorf("%w: interview must be scheduled in the future", ErrValidation)
	}
	if durationMinutes <= 0 {
		return fmt.Errorf("%w: interview duration must be positive", ErrValidation)
	}
	if err := a.moveTo(ApplicationInterviewScheduled); err != nil {
		return err
	}

	a.Interview = &Interview{
		ScheduledAt:     scheduledAt,
		DurationMinutes: durationMinutes,
		Location:        strings.TrimSpace(location),
		Status:          InterviewScheduled,
	}
	return nil
}

// CompleteInterview records the owner's rating and moves the application to interview_completed.
func (a *JobApplication) CompleteInterview(actor Actor, rating int, feedback string, now time.Time) error {
	if err := a.requireOwner(actor); err != nil {
		return err
	}
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d", ErrValidation, MinRating, MaxRating)
	}
	if a.Interview == nil || a.Interview.Status != InterviewScheduled {
		return fmt.Errorf("%w: no scheduled interview", ErrInvalidStateTransition)
	}
	if err := a.moveTo(ApplicationInterviewCompleted); err != nil {
		return err
	}

	a.Interview.Status = InterviewCompleted
	a.Interview.Rating = &rating
	a.Interview.Feedback = feedback
	a.Interview.CompletedAt = &now
	return nil
}

// CreateContract drafts the contract. Allowed once, from shortlisted or interview_completed.
func (a *JobApplication) CreateContract(actor Actor, terms string, now time.Time, ttl time.Duration) error {
	if err := a.requireOwner(actor); err != nil {
		return err
	}
	if strings.TrimSpace(terms) == "" {
		return fmt.Errorf("%w: contract terms are required", ErrValidation)
	}
	if a.Contract != nil {
		return ErrContractExists
	}
	if a.Status != ApplicationShortlisted && a.Status != ApplicationInterviewCompleted {
		return fmt.Errorf("%w: contract cannot be created in status %s", ErrInvalidStateTransition, a.Status)
	}

	a.Contract = &Contract{
		Terms:     terms,
		Status:    ContractPendingDriver,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	return nil
}

// SignContract records the actor's signature. The driver signs first, then the owner.
// The owner's signature completes the contract and accepts the application.
// enforceExpiry rejects signatures after ExpiresAt.
func (a *JobApplication) SignContract(actor Actor, signatureURL, ipAddress string, now time.Time, enforceExpiry bool) error {
	isDriver := actor.ID == a.DriverID
	isOwner := actor.ID == a.OwnerID
	if !isDriver && !isOwner {
		return ErrNotApplicationParty
	}
	if strings.TrimSpace(signatureURL) == "" {
		return fmt.Errorf("%w: signature url is required", ErrValidation)
	}
	if a.Contract == nil {
		return ErrNoContract
	}
	if a.Status.IsTerminal() {
		return fmt.Errorf("%w: status %s", ErrApplicationClosed, a.Status)
	}

	var (
		sig      *Signature
		expected ContractStatus
		next     ContractStatus
	)
	if isDriver {
		sig, expected, next = &a.Contract.DriverSignature, ContractPendingDriver, ContractPendingOwner
	} else {
		sig, expected, next = &a.Contract.OwnerSignature, ContractPendingOwner, ContractSigned
	}

	if sig.Signed {
		return ErrAlreadySigned
	}
	if a.Contract.Status != expected {
		return fmt.Errorf("%w: contract is %s", ErrNotPendingSignature, a.Contract.Status)
	}
	if enforceExpiry && a.Contract.IsExpired(now) {
		return ErrContractExpired
	}

	signedAt := now
	*sig = Signature{
		Signed:       true,
		SignedAt:     &signedAt,
		SignatureURL: signatureURL,
		IPAddress:    ipAddress,
	}
	a.Contract.Status = next

	if next == ContractSigned {
		a.Status = ApplicationAccepted
	}
	return nil
}

// PostMessage appends to the thread. Driver and owner only.
func (a *JobApplication) PostMessage(actor Actor, body string, now time.Time) (*Message, error) {
	if actor.ID != a.DriverID && actor.ID != a.OwnerID {
		return nil, ErrNotApplicationParty
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: message body is required", ErrValidation)
	}
	if len(body) > MaxMessageLength {
		return nil, fmt.Errorf("%w: message is longer than %d characters", ErrValidation, MaxMessageLength)
	}

	msg := Message{SenderID: actor.ID, Body: body, At: now}
	a.Messages = append(a.Messages, msg)
	return &msg, nil
}
