package domain

import "time"

// Slot is a bookable interval of the daily grid
type Slot struct {
	Start time.Time
	End   time.Time
}

// Window returns the slot as a reservation window
func (s Slot) Window() Window {
	return Window{Start: s.Start, End: s.End}
}

// CalendarState marks a calendar interval as booked or free
type CalendarState string

const (
	CalendarBooked    CalendarState = "booked"
	CalendarAvailable CalendarState = "available"
)

// CalendarEntry is one interval of the availability calendar
type CalendarEntry struct {
	Start         time.Time
	End           time.Time
	State         CalendarState
	ReservationID *int64 // set for booked entries
}
