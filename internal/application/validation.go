package application

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/example/room-reservations/internal/calendar"
)

var fieldNames = map[string]string{
	"RoomID":      "room_id",
	"Date":        "date",
	"StartTime":   "start_time",
	"EndTime":     "end_time",
	"Sector":      "sector",
	"Title":       "title",
	"Description": "description",
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// structErrors runs tag validation on input and converts failures into field messages.
func structErrors(v *validator.Validate, input any) *ValidationError {
	vErr := &ValidationError{}
	err := v.Struct(input)
	if err == nil {
		return vErr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		vErr.add("input", err.Error())
		return vErr
	}
	for _, fe := range fieldErrs {
		name, ok := fieldNames[fe.StructField()]
		if !ok {
			name = strings.ToLower(fe.StructField())
		}
		label := strings.ReplaceAll(name, "_", " ")
		switch fe.Tag() {
		case "required":
			vErr.add(name, label+" is required")
		case "max":
			vErr.add(name, label+" is too long")
		default:
			vErr.add(name, label+" is invalid")
		}
	}
	return vErr
}

// parseWindow parses and checks a date with a start and end time. Fields that
// already carry an error are not checked again.
func parseWindow(vErr *ValidationError, dateValue, startValue, endValue string) (calendar.Date, calendar.TimeOfDay, calendar.TimeOfDay) {
	var (
		date       calendar.Date
		start, end calendar.TimeOfDay
		startOK    bool
		endOK      bool
		err        error
	)

	if _, failed := vErr.FieldErrors["date"]; !failed {
		if date, err = calendar.ParseDate(dateValue); err != nil {
			vErr.add("date", "date must be YYYY-MM-DD")
		}
	}

	if _, failed := vErr.FieldErrors["start_time"]; !failed {
		start, err = calendar.ParseTime(startValue)
		switch {
		case err != nil:
			vErr.add("start_time", "start time must be HH:MM")
		case !calendar.IsWithinBusinessHours(start):
			vErr.add("start_time", "start time must be within business hours")
		default:
			startOK = true
		}
	}

	if _, failed := vErr.FieldErrors["end_time"]; !failed {
		end, err = calendar.ParseTime(endValue)
		switch {
		case err != nil:
			vErr.add("end_time", "end time must be HH:MM")
		case !calendar.IsWithinBusinessHours(end):
			vErr.add("end_time", "end time must be within business hours")
		default:
			endOK = true
		}
	}

	if startOK && endOK && !calendar.IsStartBeforeEnd(start, end) {
		vErr.add("end_time", "end time must be after start time")
	}
	return date, start, end
}
