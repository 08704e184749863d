package domain

// Overlaps reports whether two windows intersect.
// Both ends are inclusive: a window ending exactly when another starts conflicts with it.
func Overlaps(a, b Window) bool {
	return !a.Start.After(b.End) && !a.End.Before(b.Start)
}

// FindConflict returns the first active reservation whose window overlaps window.
// excludeID skips the reservation being rescheduled.
func FindConflict(existing []*Reservation, window Window, excludeID *int64) *Reservation {
	for _, r := range existing {
		if r == nil || !r.Status.IsActive() {
			continue
		}
		if excludeID != nil && r.ID == *excludeID {
			continue
		}
		if Overlaps(r.Window(), window) {
			return r
		}
	}
	return nil
}

// HasConflict reports whether window conflicts with any active reservation in existing.
func HasConflict(existing []*Reservation, window Window, excludeID *int64) bool {
	return FindConflict(existing, window, excludeID) != nil
}
