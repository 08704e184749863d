package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	ResourceID int64     // ID машины
	Date       time.Time // Календарный день; год, месяц и число берутся в часовом поясе машины
}

// Response модель ответа со списком доступных слотов
type Response struct {
	ResourceID          int64         // ID машины
	Date                time.Time     // Начало запрошенного дня в часовом поясе машины
	TimeZone            string        // Часовой пояс, в котором построена сетка
	SlotDurationMinutes int           // Шаг сетки
	Slots               []domain.Slot // Свободные слоты по возрастанию начала
}
