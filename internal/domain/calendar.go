package domain

import (
	"sort"
	"time"
)

// BuildCalendar splits [from, to] into booked intervals (active reservations clipped
// to the range) and the available gaps between them, ordered by start.
func BuildCalendar(reservations []*Reservation, from, to time.Time) []CalendarEntry {
	active := make([]*Reservation, 0, len(reservations))
	for _, r := range reservations {
		if r == nil || !r.Status.IsActive() {
			continue
		}
		if r.EndAt.Before(from) || r.StartAt.After(to) {
			continue
		}
		active = append(active, r)
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].StartAt.Before(active[j].StartAt)
	})

	entries := make([]CalendarEntry, 0, 2*len(active)+1)
	cursor := from
	for _, r := range active {
		start := maxTime(r.StartAt, from)
		end := minTime(r.EndAt, to)

		if start.After(cursor) {
			entries = append(entries, CalendarEntry{Start: cursor, End: start, State: CalendarAvailable})
		}

		id := r.ID
		entries = append(entries, CalendarEntry{Start: start, End: end, State: CalendarBooked, ReservationID: &id})

		if end.After(cursor) {
			cursor = end
		}
	}

	if cursor.Before(to) {
		entries = append(entries, CalendarEntry{Start: cursor, End: to, State: CalendarAvailable})
	}

	return entries
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
