package scheduler

import (
	"time"

	"github.com/example/room-reservations/internal/calendar"
)

// Status is the lifecycle stage of a reservation.
type Status string

const (
	StatusScheduled  Status = "Agendado"
	StatusInProgress Status = "Em andamento"
	StatusCompleted  Status = "Realizado"
	StatusCancelled  Status = "Cancelado"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Reservation books one room for a window on a single day.
//
// RoomName and UserName are copied at creation time and are not rewritten when
// the room or user changes later.
type Reservation struct {
	ID          string
	RoomID      string
	RoomName    string
	Date        calendar.Date
	Start       calendar.TimeOfDay
	End         calendar.TimeOfDay
	UserID      string
	UserName    string
	Sector      string
	Title       string
	Description string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Window renders the booked interval as "HH:MM–HH:MM".
func (r Reservation) Window() string {
	return r.Start.String() + "–" + r.End.String()
}

// StartsAt returns the start instant in loc.
func (r Reservation) StartsAt(loc *time.Location) time.Time {
	return calendar.Combine(r.Date, r.Start, loc)
}

// EndsAt returns the end instant in loc.
func (r Reservation) EndsAt(loc *time.Location) time.Time {
	return calendar.Combine(r.Date, r.End, loc)
}
