package create_reservation

import "github.com/m04kA/SMC-RentalService/internal/domain"

// Request модель запроса на создание бронирования
type Request struct {
	Actor              domain.Actor               // Кто бронирует (из заголовков шлюза)
	ResourceID         int64                      // ID машины
	Kind               domain.ReservationKind     // Тип бронирования, по умолчанию аренда
	Window             domain.Window              // Окно [start, end)
	RateType           domain.RateType            // hourly или daily, только для аренды
	TimeSlots          []domain.TimeSlot          // Явные часовые слоты (опционально)
	AdditionalServices []domain.AdditionalService // Дополнительные услуги
	NegotiationID      *int64                     // Принятые переговоры о цене (опционально)
	Notes              *string                    // Заметки (опционально)
}
