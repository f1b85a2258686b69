package calendar

import (
	"fmt"
	"time"
)

// Business hours bound every bookable start and end time, inclusive at both ends.
var (
	BusinessOpen  = NewTime(8, 0)
	BusinessClose = NewTime(17, 30)
)

// SlotInterval is the spacing of the bookable time grid.
const SlotInterval = 30 * time.Minute

// ReminderLead is how long before a reservation starts a reminder becomes due.
const ReminderLead = 30 * time.Minute

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// Today returns the current calendar day according to clock.
func Today(clock Clock) Date {
	return DateOf(now(clock))
}

// CurrentTime returns the current time of day according to clock, truncated to the minute.
func CurrentTime(clock Clock) TimeOfDay {
	n := now(clock)
	return NewTime(n.Hour(), n.Minute())
}

func now(clock Clock) time.Time {
	if clock == nil {
		return time.Now()
	}
	return clock.Now()
}

// Combine joins a date and a time of day into an instant in loc.
func Combine(date Date, t TimeOfDay, loc *time.Location) time.Time {
	return date.In(loc).Add(time.Duration(t) * time.Minute)
}

// InHalfOpen reports whether t lies within [start, end).
func InHalfOpen(t, start, end TimeOfDay) bool {
	return start <= t && t < end
}

// IsStartBeforeEnd reports whether start strictly precedes end.
func IsStartBeforeEnd(start, end TimeOfDay) bool {
	return start < end
}

// IsWithinBusinessHours reports whether t lies within [08:00, 17:30].
func IsWithinBusinessHours(t TimeOfDay) bool {
	return BusinessOpen <= t && t <= BusinessClose
}

// DurationMinutes returns the number of minutes from start to end on the same day.
func DurationMinutes(start, end TimeOfDay) int {
	return int(end - start)
}

// AddDays shifts date by n calendar days. Negative n moves backwards.
func AddDays(date Date, n int) Date {
	return Date{t: date.t.AddDate(0, 0, n)}
}

// IsWeekend reports whether date falls on a Saturday or Sunday.
func IsWeekend(date Date) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsFutureDate reports whether date is today or later relative to now.
func IsFutureDate(date Date, now time.Time) bool {
	return !date.Before(DateOf(now))
}

// IsFutureTime reports whether the instant formed by date and t is after now.
func IsFutureTime(date Date, t TimeOfDay, now time.Time) bool {
	return Combine(date, t, now.Location()).After(now)
}

// ShouldSendReminder reports whether now falls within the lead window before start.
func ShouldSendReminder(date Date, start TimeOfDay, now time.Time) bool {
	until := Combine(date, start, now.Location()).Sub(now)
	return until > 0 && until <= ReminderLead
}

// FormatDate renders date as DD/MM/YYYY.
func FormatDate(date Date) string {
	if date.IsZero() {
		return ""
	}
	return date.t.Format(displayDateLayout)
}

// FormatDateTime renders date and time as "DD/MM/YYYY às HH:MM".
func FormatDateTime(date Date, t TimeOfDay) string {
	return fmt.Sprintf("%s às %s", FormatDate(date), t)
}

// TimeSlots returns the bookable grid from opening to closing, every SlotInterval.
func TimeSlots() []TimeOfDay {
	step := TimeOfDay(SlotInterval / time.Minute)
	slots := make([]TimeOfDay, 0, int((BusinessClose-BusinessOpen)/step)+1)
	for t := BusinessOpen; t <= BusinessClose; t += step {
		slots = append(slots, t)
	}
	return slots
}
