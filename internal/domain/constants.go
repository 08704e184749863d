package domain

// Default schedule values, used when neither the car nor its owner has a schedule
const (
	DefaultSlotDurationMinutes = 60
	DefaultOpenTime            = "09:00"
	DefaultCloseTime           = "18:00"
)

// Business validation constants
const (
	MinSlotDurationMinutes      = 15
	MaxSlotDurationMinutes      = 480 // 8 hours
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MaxMessageLength            = 2000
	MaxAdditionalServices       = 20
	MinRating                   = 1
	MaxRating                   = 5
)

// Pricing constants
const (
	// DepositPercent is a fixed share of the total, not configurable per car.
	DepositPercent = 20
)

// Refund tiers by hours left until the reservation starts
const (
	FullRefundHours = 48
	HalfRefundHours = 24
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// NoteRescheduled is written to the status history on reschedule.
const NoteRescheduled = "rescheduled"
