package application

import (
	"errors"
	"fmt"

	"github.com/example/room-reservations/internal/calendar"
	"github.com/example/room-reservations/internal/scheduler"
)

var (
	// ErrUnauthorized is returned when no valid session backs the call.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrInvalidCredentials is returned when login details do not match a user.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrForbidden is returned when the principal may not act on the reservation.
	ErrForbidden = errors.New("application: forbidden")
	// ErrReservationNotFound is returned when no reservation has the requested id.
	ErrReservationNotFound = errors.New("application: reservation not found")
	// ErrRoomNotFound is returned when the room id is not in the catalog.
	ErrRoomNotFound = errors.New("application: room not found")
	// ErrInvalidState is returned when the reservation status forbids the operation.
	ErrInvalidState = errors.New("application: invalid reservation state")
	// ErrSchedulingConflict is wrapped by *ConflictError.
	ErrSchedulingConflict = errors.New("application: scheduling conflict")
	// ErrPersistence wraps every failure of the underlying slot store.
	ErrPersistence = errors.New("application: persistence failure")
	// ErrInvalidFormat is returned for malformed dates and times.
	ErrInvalidFormat = calendar.ErrInvalidFormat
)

// ConflictError reports the reservations blocking a requested window.
type ConflictError struct {
	// Conflicts lists the blocking reservations in stored order.
	Conflicts []scheduler.Reservation
	// Rescheduling is true when an existing reservation was being moved.
	Rescheduling bool
}

// Window returns the first blocking window as "HH:MM–HH:MM".
func (e *ConflictError) Window() string {
	if e == nil || len(e.Conflicts) == 0 {
		return ""
	}
	return e.Conflicts[0].Window()
}

func (e *ConflictError) Error() string {
	if w := e.Window(); w != "" {
		return fmt.Sprintf("%s: room already booked %s", ErrSchedulingConflict, w)
	}
	return ErrSchedulingConflict.Error()
}

func (e *ConflictError) Unwrap() error { return ErrSchedulingConflict }

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error. The first message per field wins.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	if _, exists := v.FieldErrors[field]; exists {
		return
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

// errOrNil avoids returning a typed nil inside an error interface.
func (v *ValidationError) errOrNil() error {
	if v.HasErrors() {
		return v
	}
	return nil
}
