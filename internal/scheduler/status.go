package scheduler

import "time"

// DeriveStatus computes the status r should carry at now. Cancelled is
// terminal. The end instant itself still counts as in progress.
func DeriveStatus(r Reservation, now time.Time) Status {
	if r.Status == StatusCancelled {
		return StatusCancelled
	}

	loc := now.Location()
	start, end := r.StartsAt(loc), r.EndsAt(loc)
	switch {
	case now.After(end):
		return StatusCompleted
	case !now.Before(start):
		return StatusInProgress
	default:
		return StatusScheduled
	}
}

// RefreshStatus returns r with its derived status. UpdatedAt moves to now only
// when the status actually changes; otherwise r is returned untouched.
func RefreshStatus(r Reservation, now time.Time) Reservation {
	next := DeriveStatus(r, now)
	if next == r.Status {
		return r
	}
	r.Status = next
	r.UpdatedAt = now
	return r
}

// RefreshAll applies RefreshStatus to every reservation, preserving order. It
// reports whether any reservation changed.
func RefreshAll(list []Reservation, now time.Time) ([]Reservation, bool) {
	refreshed := make([]Reservation, len(list))
	changed := false
	for i, r := range list {
		refreshed[i] = RefreshStatus(r, now)
		if refreshed[i].Status != r.Status {
			changed = true
		}
	}
	return refreshed, changed
}

// CanEdit reports whether a reservation in status s may be modified.
func CanEdit(s Status) bool {
	return s == StatusScheduled
}

// CanCancel reports whether a reservation in status s may be cancelled.
func CanCancel(s Status) bool {
	return s == StatusScheduled || s == StatusInProgress
}
