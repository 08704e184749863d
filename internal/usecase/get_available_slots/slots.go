package get_available_slots

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

// generateSlots строит сетку слотов фиксированной длины от открытия до закрытия
// Последний слот, не помещающийся до закрытия целиком, отбрасывается
func generateSlots(date time.Time, loc *time.Location, schedule *domain.ResourceSchedule) ([]domain.Slot, error) {
	if schedule.SlotDurationMinutes <= 0 {
		return nil, fmt.Errorf("slot duration must be positive, got %d", schedule.SlotDurationMinutes)
	}

	open, err := schedule.OpenTime.OnDate(date, loc)
	if err != nil {
		return nil, fmt.Errorf("open time: %w", err)
	}
	closeAt, err := schedule.CloseTime.OnDate(date, loc)
	if err != nil {
		return nil, fmt.Errorf("close time: %w", err)
	}

	step := time.Duration(schedule.SlotDurationMinutes) * time.Minute
	slots := make([]domain.Slot, 0, int(closeAt.Sub(open)/step))

	for start := open; !start.Add(step).After(closeAt); start = start.Add(step) {
		slots = append(slots, domain.Slot{Start: start, End: start.Add(step)})
	}

	return slots, nil
}

// filterAvailable отбрасывает слоты, начавшиеся до now, и слоты, пересекающиеся с активными бронированиями
// Пересечение проверяется так же, как при создании бронирования: касание границ - конфликт
func filterAvailable(slots []domain.Slot, reservations []*domain.Reservation, now time.Time) []domain.Slot {
	available := make([]domain.Slot, 0, len(slots))
	for _, slot := range slots {
		if slot.Start.Before(now) {
			continue
		}
		if domain.HasConflict(reservations, slot.Window(), nil) {
			continue
		}
		available = append(available, slot)
	}
	return available
}
