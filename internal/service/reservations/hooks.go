package reservations

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/pkg/aftercommit"
)

const timeFormat = "02.01.2006 15:04"

// availabilityHook синхронизирует флаг доступности машины после смены статуса аренды
func (s *Service) availabilityHook(r *domain.Reservation, from domain.ReservationStatus) (aftercommit.Hook, bool) {
	status, ok := domain.AvailabilityAfter(r.Kind, from, r.Status)
	if !ok {
		return aftercommit.Hook{}, false
	}

	resourceID := r.ResourceID
	return aftercommit.Hook{
		Name: "resource.availability",
		Fn: func(ctx context.Context) error {
			return s.resourceRepo.UpdateAvailability(ctx, resourceID, status)
		},
	}, true
}

// notifyHook оборачивает уведомление в хук
func (s *Service) notifyHook(n domain.Notification) aftercommit.Hook {
	return aftercommit.Hook{
		Name: "notify." + string(n.Type),
		Fn: func(ctx context.Context) error {
			return s.notifier.Notify(ctx, n)
		},
	}
}

// counterparty возвращает вторую сторону бронирования относительно actor
// Для администратора это клиент
func counterparty(r *domain.Reservation, actor domain.Actor) int64 {
	if actor.ID == r.CustomerID {
		return r.OwnerID
	}
	return r.CustomerID
}

func reservationLink(id int64) string {
	return fmt.Sprintf("/reservations/%d", id)
}

func statusChangedNotification(r *domain.Reservation) domain.Notification {
	return domain.Notification{
		Audience: domain.SingleUser(r.CustomerID),
		Type:     domain.NotifyReservationStatus,
		Title:    "Статус бронирования изменен",
		Message:  fmt.Sprintf("Бронирование #%d: новый статус %s", r.ID, r.Status),
		Link:     reservationLink(r.ID),
	}
}

func cancelledNotifications(r *domain.Reservation, actor domain.Actor, refund float64) []domain.Notification {
	message := fmt.Sprintf("Бронирование #%d с %s отменено", r.ID, r.StartAt.Format(timeFormat))
	if refund > 0 {
		message += fmt.Sprintf(", к возврату %.2f", refund)
	}

	result := []domain.Notification{{
		Audience: domain.SingleUser(counterparty(r, actor)),
		Type:     domain.NotifyReservationCancelled,
		Title:    "Бронирование отменено",
		Message:  message,
		Link:     reservationLink(r.ID),
	}}

	// Возврат обрабатывают администраторы
	if refund > 0 {
		result = append(result, domain.Notification{
			Audience: domain.AllAdmins(),
			Type:     domain.NotifyReservationCancelled,
			Title:    "Требуется возврат средств",
			Message:  fmt.Sprintf("Бронирование #%d отменено, сумма возврата %.2f", r.ID, refund),
			Link:     reservationLink(r.ID),
		})
	}

	return result
}

func rescheduledNotification(r *domain.Reservation, actor domain.Actor) domain.Notification {
	message := fmt.Sprintf("Бронирование #%d перенесено на %s - %s",
		r.ID, r.StartAt.Format(timeFormat), r.EndAt.Format(timeFormat))

	return domain.Notification{
		Audience: domain.SingleUser(counterparty(r, actor)),
		Type:     domain.NotifyReservationMoved,
		Title:    "Бронирование перенесено",
		Message:  message,
		Link:     reservationLink(r.ID),
	}
}
