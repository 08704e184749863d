package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-RentalService/internal/usecase/get_available_slots"
)

// SlotResponse свободный слот
type SlotResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	ResourceID          int64          `json:"resourceId"`
	Date                string         `json:"date"`
	TimeZone            string         `json:"timeZone"`
	SlotDurationMinutes int            `json:"slotDurationMinutes"`
	Slots               []SlotResponse `json:"slots"`
}

// ToUseCaseRequest формирует запрос к use case (с парсингом даты)
func ToUseCaseRequest(resourceID int64, dateStr string) (*getAvailableSlots.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	return &getAvailableSlots.Request{
		ResourceID: resourceID,
		Date:       date,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, slot := range resp.Slots {
		slots = append(slots, SlotResponse{
			Start: slot.Start,
			End:   slot.End,
		})
	}

	return &AvailableSlotsResponse{
		ResourceID:          resp.ResourceID,
		Date:                resp.Date.Format(domain.DateFormat),
		TimeZone:            resp.TimeZone,
		SlotDurationMinutes: resp.SlotDurationMinutes,
		Slots:               slots,
	}
}
