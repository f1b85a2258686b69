package scheduler

import "github.com/example/room-reservations/internal/calendar"

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd calendar.TimeOfDay) bool {
	return aStart < bEnd && bStart < aEnd
}

// relevant reports whether r competes for the same room on the same day.
func relevant(r Reservation, roomID string, date calendar.Date, excludeID string) bool {
	if r.RoomID != roomID || r.Date.Compare(date) != 0 {
		return false
	}
	if r.Status == StatusCancelled {
		return false
	}
	return excludeID == "" || r.ID != excludeID
}

// HasConflict reports whether the candidate window clashes with any active
// reservation of the same room on the same day. A reservation whose ID equals
// excludeID is ignored so an edited booking never conflicts with itself.
func HasConflict(existing []Reservation, roomID string, date calendar.Date, start, end calendar.TimeOfDay, excludeID string) bool {
	for _, r := range existing {
		if relevant(r, roomID, date, excludeID) && Overlaps(start, end, r.Start, r.End) {
			return true
		}
	}
	return false
}

// FindConflicts returns every reservation HasConflict would report, in input order.
func FindConflicts(existing []Reservation, roomID string, date calendar.Date, start, end calendar.TimeOfDay, excludeID string) []Reservation {
	var conflicts []Reservation
	for _, r := range existing {
		if relevant(r, roomID, date, excludeID) && Overlaps(start, end, r.Start, r.End) {
			conflicts = append(conflicts, r)
		}
	}
	return conflicts
}

// AvailableSlots filters slots down to those not covered by an active
// reservation of the room on date. A slot s is covered by r when
// r.Start <= s < r.End. When nothing is booked the input is returned as is.
func AvailableSlots(existing []Reservation, roomID string, date calendar.Date, slots []calendar.TimeOfDay) []calendar.TimeOfDay {
	booked := make([]Reservation, 0, len(existing))
	for _, r := range existing {
		if relevant(r, roomID, date, "") {
			booked = append(booked, r)
		}
	}
	if len(booked) == 0 {
		return slots
	}

	free := make([]calendar.TimeOfDay, 0, len(slots))
	for _, slot := range slots {
		occupied := false
		for _, r := range booked {
			if calendar.InHalfOpen(slot, r.Start, r.End) {
				occupied = true
				break
			}
		}
		if !occupied {
			free = append(free, slot)
		}
	}
	return free
}
