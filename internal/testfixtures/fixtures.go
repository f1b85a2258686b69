package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/calendar"
	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/scheduler"
)

var (
	userCounter        uint64
	reservationCounter uint64
)

// referenceTime is a Tuesday morning, inside business hours.
var referenceTime = time.Date(2024, time.January, 2, 10, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDate returns the calendar day of ReferenceTime.
func ReferenceDate() calendar.Date {
	return calendar.DateOf(referenceTime)
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic user that can be materialised for
// application tests.
type UserFixture struct {
	ID     string
	Name   string
	Email  string
	Role   application.Role
	Sector string
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic regular user with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	fixture := UserFixture{
		ID:     id,
		Name:   fmt.Sprintf("User %03d", idx),
		Email:  fmt.Sprintf("%s@example.com", id),
		Role:   application.RoleRegular,
		Sector: "TI",
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserName overrides the generated display name.
func WithUserName(name string) UserOption {
	return func(f *UserFixture) {
		f.Name = name
	}
}

// WithUserRole sets the role of the generated fixture.
func WithUserRole(role application.Role) UserOption {
	return func(f *UserFixture) {
		f.Role = role
	}
}

// WithUserSector overrides the generated sector.
func WithUserSector(sector string) UserOption {
	return func(f *UserFixture) {
		f.Sector = sector
	}
}

// Application returns the fixture as an application.User value.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:     f.ID,
		Name:   f.Name,
		Email:  f.Email,
		Role:   f.Role,
		Sector: f.Sector,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f UserFixture) Principal() application.Principal {
	return application.PrincipalFor(f.Application())
}

// -------------------------- Reservation fixtures --------------------------

// ReservationFixture represents a deterministic reservation.
type ReservationFixture struct {
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
	Status      scheduler.Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ReservationOption configures the generated reservation fixture.
type ReservationOption func(*ReservationFixture)

// NewReservationFixture returns a Scheduled reservation of room 1 on the
// reference date, 14:00 to 15:00, with optional overrides.
func NewReservationFixture(opts ...ReservationOption) ReservationFixture {
	idx := atomic.AddUint64(&reservationCounter, 1)
	fixture := ReservationFixture{
		ID:        fmt.Sprintf("reservation-%03d", idx),
		RoomID:    "1",
		RoomName:  "Sala de Reunião 1",
		Date:      ReferenceDate(),
		Start:     calendar.NewTime(14, 0),
		End:       calendar.NewTime(15, 0),
		UserID:    "user-fixture",
		UserName:  "Fixture User",
		Sector:    "TI",
		Title:     fmt.Sprintf("Reservation %03d", idx),
		Status:    scheduler.StatusScheduled,
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithReservationID overrides the generated reservation ID.
func WithReservationID(id string) ReservationOption {
	return func(f *ReservationFixture) {
		f.ID = id
	}
}

// WithReservationRoom sets the room of the reservation.
func WithReservationRoom(id, name string) ReservationOption {
	return func(f *ReservationFixture) {
		f.RoomID = id
		f.RoomName = name
	}
}

// WithReservationDate sets the reservation day.
func WithReservationDate(date calendar.Date) ReservationOption {
	return func(f *ReservationFixture) {
		f.Date = date
	}
}

// WithReservationWindow sets the start and end times from HH:MM literals.
func WithReservationWindow(start, end string) ReservationOption {
	return func(f *ReservationFixture) {
		f.Start = calendar.MustParseTime(start)
		f.End = calendar.MustParseTime(end)
	}
}

// WithReservationOwner sets the booking user.
func WithReservationOwner(user UserFixture) ReservationOption {
	return func(f *ReservationFixture) {
		f.UserID = user.ID
		f.UserName = user.Name
		f.Sector = user.Sector
	}
}

// WithReservationStatus sets the stored status.
func WithReservationStatus(status scheduler.Status) ReservationOption {
	return func(f *ReservationFixture) {
		f.Status = status
	}
}

// WithReservationTitle overrides the generated title.
func WithReservationTitle(title string) ReservationOption {
	return func(f *ReservationFixture) {
		f.Title = title
	}
}

// Scheduler returns the fixture as a scheduler.Reservation value.
func (f ReservationFixture) Scheduler() scheduler.Reservation {
	return scheduler.Reservation{
		ID:          f.ID,
		RoomID:      f.RoomID,
		RoomName:    f.RoomName,
		Date:        f.Date,
		Start:       f.Start,
		End:         f.End,
		UserID:      f.UserID,
		UserName:    f.UserName,
		Sector:      f.Sector,
		Title:       f.Title,
		Description: f.Description,
		Status:      f.Status,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Persistence returns the fixture as a stored persistence.Reservation.
func (f ReservationFixture) Persistence() persistence.Reservation {
	return persistence.Reservation{
		ID:          f.ID,
		RoomID:      f.RoomID,
		RoomName:    f.RoomName,
		Date:        f.Date.String(),
		StartTime:   f.Start.String(),
		EndTime:     f.End.String(),
		UserID:      f.UserID,
		UserName:    f.UserName,
		Sector:      f.Sector,
		Title:       f.Title,
		Description: f.Description,
		Status:      string(f.Status),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// PersistenceRecords converts fixtures into stored records, preserving order.
func PersistenceRecords(fixtures ...ReservationFixture) []persistence.Reservation {
	records := make([]persistence.Reservation, len(fixtures))
	for i, f := range fixtures {
		records[i] = f.Persistence()
	}
	return records
}
