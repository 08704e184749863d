package domain

import "fmt"

// AudienceKind selects how a notification's recipients are resolved.
type AudienceKind string

const (
	AudienceUser      AudienceKind = "user"
	AudienceAllAdmins AudienceKind = "all_admins"
	AudienceRole      AudienceKind = "role"
)

// Audience is the recipient of a notification.
type Audience struct {
	Kind   AudienceKind
	UserID int64 // AudienceUser
	Role   Role  // AudienceRole
}

// SingleUser addresses one user.
func SingleUser(id int64) Audience {
	return Audience{Kind: AudienceUser, UserID: id}
}

// AllAdmins addresses every administrator.
func AllAdmins() Audience {
	return Audience{Kind: AudienceAllAdmins}
}

// RoleGroup addresses every user with the role.
func RoleGroup(role Role) Audience {
	return Audience{Kind: AudienceRole, Role: role}
}

func (a Audience) String() string {
	switch a.Kind {
	case AudienceUser:
		return fmt.Sprintf("user:%d", a.UserID)
	case AudienceRole:
		return fmt.Sprintf("role:%s", a.Role)
	default:
		return string(a.Kind)
	}
}

// NotificationType identifies the event for the delivery side.
type NotificationType string

const (
	NotifyReservationCreated   NotificationType = "reservation_created"
	NotifyReservationStatus    NotificationType = "reservation_status_changed"
	NotifyReservationCancelled NotificationType = "reservation_cancelled"
	NotifyReservationMoved     NotificationType = "reservation_rescheduled"
	NotifyNegotiationProposed  NotificationType = "negotiation_proposed"
	NotifyNegotiationCountered NotificationType = "negotiation_countered"
	NotifyNegotiationAccepted  NotificationType = "negotiation_accepted"
	NotifyNegotiationRejected  NotificationType = "negotiation_rejected"
	NotifyApplicationReceived  NotificationType = "application_received"
	NotifyApplicationStatus    NotificationType = "application_status_changed"
	NotifyInterviewScheduled   NotificationType = "interview_scheduled"
	NotifyContractCreated      NotificationType = "contract_created"
	NotifyContractDriverSigned NotificationType = "contract_driver_signed"
	NotifyContractSigned       NotificationType = "contract_signed"
	NotifyApplicationMessage   NotificationType = "application_message"
)

// Notification is handed to the notification sink after the primary write commits.
type Notification struct {
	Audience Audience
	Type     NotificationType
	Title    string
	Message  string
	Link     string
}
