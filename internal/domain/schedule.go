package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-RentalService/pkg/types"
)

// ResourceSchedule is the slot grid configuration for a car.
// Supports hierarchical configuration:
// 1. Car-specific (owner_id, resource_id)
// 2. Owner-wide (owner_id, NULL)
// 3. Service defaults
type ResourceSchedule struct {
	ID                  int64
	OwnerID             int64
	ResourceID          *int64 // NULL = schedule for all of the owner's cars
	SlotDurationMinutes int
	OpenTime            types.TimeString
	CloseTime           types.TimeString
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsOwnerWide returns true if this schedule applies to all of the owner's cars
func (s *ResourceSchedule) IsOwnerWide() bool {
	return s.ResourceID == nil
}

// IsDefault returns true for the built-in schedule that is not stored
func (s *ResourceSchedule) IsDefault() bool {
	return s.ID == 0
}

// Validate checks the slot duration and operating hours
func (s *ResourceSchedule) Validate() error {
	if s.SlotDurationMinutes < MinSlotDurationMinutes || s.SlotDurationMinutes > MaxSlotDurationMinutes {
		return fmt.Errorf("%w: slot duration must be between %d and %d minutes",
			ErrValidation, MinSlotDurationMinutes, MaxSlotDurationMinutes)
	}
	if err := s.OpenTime.Validate(); err != nil {
		return fmt.Errorf("%w: open time: %v", ErrValidation, err)
	}
	if err := s.CloseTime.Validate(); err != nil {
		return fmt.Errorf("%w: close time: %v", ErrValidation, err)
	}
	if !s.OpenTime.IsBefore(s.CloseTime) {
		return fmt.Errorf("%w: close time must be after open time", ErrValidation)
	}
	return nil
}

// ScheduleDefaults are the service-wide values used when no schedule is stored.
type ScheduleDefaults struct {
	SlotDurationMinutes int
	OpenTime            types.TimeString
	CloseTime           types.TimeString
}

// For returns the built-in schedule for the owner's car.
func (d ScheduleDefaults) For(ownerID, resourceID int64) *ResourceSchedule {
	return &ResourceSchedule{
		OwnerID:             ownerID,
		ResourceID:          &resourceID,
		SlotDurationMinutes: d.SlotDurationMinutes,
		OpenTime:            d.OpenTime,
		CloseTime:           d.CloseTime,
	}
}
