package notifier

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

// Event сообщение, которое получает сервис доставки уведомлений
type Event struct {
	EventID    string    `json:"eventId"`
	Type       string    `json:"type"`
	Audience   Audience  `json:"audience"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Link       string    `json:"link,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Audience получатели уведомления: конкретный пользователь, все администраторы или роль
type Audience struct {
	Kind   string `json:"kind"`
	UserID *int64 `json:"userId,omitempty"`
	Role   string `json:"role,omitempty"`
}

func newEvent(id string, n domain.Notification, at time.Time) Event {
	audience := Audience{Kind: string(n.Audience.Kind)}
	switch n.Audience.Kind {
	case domain.AudienceUser:
		userID := n.Audience.UserID
		audience.UserID = &userID
	case domain.AudienceRole:
		audience.Role = string(n.Audience.Role)
	}

	return Event{
		EventID:    id,
		Type:       string(n.Type),
		Audience:   audience,
		Title:      n.Title,
		Message:    n.Message,
		Link:       n.Link,
		OccurredAt: at,
	}
}

// RoutingKey ключ маршрутизации в topic exchange:
// notification.user, notification.admins, notification.role.<role>
func RoutingKey(audience domain.Audience) string {
	switch audience.Kind {
	case domain.AudienceAllAdmins:
		return "notification.admins"
	case domain.AudienceRole:
		return fmt.Sprintf("notification.role.%s", audience.Role)
	default:
		return "notification.user"
	}
}
