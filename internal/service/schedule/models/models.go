package models

import (
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/pkg/ptr"
	"github.com/m04kA/SMC-RentalService/pkg/types"
)

// Уровни расписания в иерархии
const (
	LevelResource = "resource"
	LevelOwner    = "owner"
	LevelDefault  = "default"
)

// Request модели

// UpdateScheduleRequest запрос на изменение расписания машины
// Все поля опциональны - незаданные берутся из действующего расписания
// OwnerWide = true сохраняет расписание для всех машин владельца
type UpdateScheduleRequest struct {
	SlotDurationMinutes *int              `json:"slotDurationMinutes,omitempty"`
	OpenTime            *types.TimeString `json:"openTime,omitempty"`
	CloseTime           *types.TimeString `json:"closeTime,omitempty"`
	OwnerWide           bool              `json:"ownerWide"`
}

// ApplyTo применяет обновления к расписанию
// Обновляются только непустые (not nil) поля из request
func (r *UpdateScheduleRequest) ApplyTo(s *domain.ResourceSchedule) {
	s.SlotDurationMinutes = ptr.Deref(r.SlotDurationMinutes, s.SlotDurationMinutes)
	s.OpenTime = ptr.Deref(r.OpenTime, s.OpenTime)
	s.CloseTime = ptr.Deref(r.CloseTime, s.CloseTime)
}

// Response модели

// ScheduleResponse действующее расписание машины
type ScheduleResponse struct {
	ID                  *int64           `json:"id,omitempty"`
	OwnerID             int64            `json:"ownerId"`
	ResourceID          *int64           `json:"resourceId,omitempty"`
	Level               string           `json:"level"`
	SlotDurationMinutes int              `json:"slotDurationMinutes"`
	OpenTime            types.TimeString `json:"openTime"`
	CloseTime           types.TimeString `json:"closeTime"`
	UpdatedAt           *time.Time       `json:"updatedAt,omitempty"`
}

// FromDomainSchedule конвертирует domain модель в DTO
func FromDomainSchedule(s *domain.ResourceSchedule) *ScheduleResponse {
	if s == nil {
		return nil
	}

	resp := &ScheduleResponse{
		OwnerID:             s.OwnerID,
		ResourceID:          s.ResourceID,
		Level:               Level(s),
		SlotDurationMinutes: s.SlotDurationMinutes,
		OpenTime:            s.OpenTime,
		CloseTime:           s.CloseTime,
	}

	// У встроенного расписания нет ни id, ни даты изменения
	if !s.IsDefault() {
		id := s.ID
		updatedAt := s.UpdatedAt
		resp.ID = &id
		resp.UpdatedAt = &updatedAt
	}

	return resp
}

// Level определяет уровень расписания в иерархии
func Level(s *domain.ResourceSchedule) string {
	switch {
	case s.IsDefault():
		return LevelDefault
	case s.IsOwnerWide():
		return LevelOwner
	default:
		return LevelResource
	}
}
