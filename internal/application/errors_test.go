package application

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/room-reservations/internal/calendar"
	"github.com/example/room-reservations/internal/scheduler"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	assert.Empty(t, err.Error())
	assert.Equal(t, "validation failed", (&ValidationError{}).Error())

	withFields := &ValidationError{FieldErrors: map[string]string{"field": "invalid"}}
	assert.Equal(t, "validation failed", withFields.Error())
}

func TestValidationError_HasErrors(t *testing.T) {
	t.Parallel()

	assert.False(t, (&ValidationError{}).HasErrors())
	assert.True(t, (&ValidationError{FieldErrors: map[string]string{"field": "bad"}}).HasErrors())
	assert.NoError(t, (&ValidationError{}).errOrNil())
}

func TestValidationError_AddAndMerge(t *testing.T) {
	t.Parallel()

	base := &ValidationError{}
	base.add("first", "value")
	base.add("first", "ignored")
	assert.Equal(t, "value", base.FieldErrors["first"])

	other := &ValidationError{FieldErrors: map[string]string{"second": "another"}}
	base.merge(other)
	assert.Equal(t, "another", base.FieldErrors["second"])

	base.merge(nil)
	assert.Len(t, base.FieldErrors, 2)
}

func TestConflictError(t *testing.T) {
	t.Parallel()

	blocking := scheduler.Reservation{
		ID:    "r-1",
		Start: calendar.NewTime(9, 0),
		End:   calendar.NewTime(10, 30),
	}
	err := &ConflictError{Conflicts: []scheduler.Reservation{blocking}}

	assert.Equal(t, "09:00–10:30", err.Window())
	assert.True(t, errors.Is(err, ErrSchedulingConflict))
	assert.Contains(t, err.Error(), "09:00–10:30")

	empty := &ConflictError{}
	assert.Empty(t, empty.Window())
	assert.Equal(t, ErrSchedulingConflict.Error(), empty.Error())
}
