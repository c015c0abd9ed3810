package validation

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"

	DefaultBookingHorizonDays = 180
	DefaultTimezone           = "Asia/Kolkata"
)

var (
	timeSlots = buildTimeSlots()

	ErrDateRequired = NewError(Required, "Appointment date is required.")
	ErrDateFormat   = NewError(InvalidFormat, "Invalid date format. Use YYYY-MM-DD.")
	ErrPastDate     = NewError(PastDate, "Appointment date cannot be in the past.")
	ErrTimeRequired = NewError(Required, "Time slot is required.")
	ErrInvalidSlot  = NewError(InvalidSlot, "Invalid time slot. Must be between 8:00 AM and 8:00 PM.")
)

// buildTimeSlots lists every half-hour start from 08:00 to 20:00 inclusive.
func buildTimeSlots() []string {
	start := time.Date(2000, 1, 1, 8, 0, 0, 0, time.UTC)
	end := time.Date(2000, 1, 1, 20, 0, 0, 0, time.UTC)

	var slots []string
	for t := start; !t.After(end); t = t.Add(30 * time.Minute) {
		slots = append(slots, t.Format("03:04 PM"))
	}
	return slots
}

// TimeSlots returns the bookable slot labels in order.
func TimeSlots() []string {
	out := make([]string, len(timeSlots))
	copy(out, timeSlots)
	return out
}

type DateTimeValidator struct {
	loc         *time.Location
	now         func() time.Time
	horizonDays int
}

func NewDateTimeValidator(loc *time.Location, horizonDays int) *DateTimeValidator {
	if loc == nil {
		loc = time.UTC
	}
	if horizonDays <= 0 {
		horizonDays = DefaultBookingHorizonDays
	}
	return &DateTimeValidator{
		loc:         loc,
		now:         time.Now,
		horizonDays: horizonDays,
	}
}

// WithClock replaces the time source. Used by tests.
func (v *DateTimeValidator) WithClock(now func() time.Time) *DateTimeValidator {
	cp := *v
	cp.now = now
	return &cp
}

// Today is the current calendar date in the clinic's time zone, at midnight UTC.
func (v *DateTimeValidator) Today() time.Time {
	return truncateToDate(v.now().In(v.loc))
}

func (v *DateTimeValidator) HorizonDays() int {
	return v.horizonDays
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (v *DateTimeValidator) ParseAppointmentDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, ErrDateRequired
	}

	d, err := time.Parse(DateLayout, text)
	if err != nil {
		return time.Time{}, ErrDateFormat
	}

	if err := v.ValidateAppointmentDate(d); err != nil {
		return time.Time{}, err
	}
	return d, nil
}

// ValidateAppointmentDate accepts dates from today through today+horizon, both inclusive.
// Only the calendar date of d is considered.
func (v *DateTimeValidator) ValidateAppointmentDate(d time.Time) error {
	if d.IsZero() {
		return ErrDateRequired
	}

	date := truncateToDate(d)
	today := v.Today()

	if date.Before(today) {
		return ErrPastDate
	}

	maxDate := today.AddDate(0, 0, v.horizonDays)
	if date.After(maxDate) {
		return NewError(TooFarFuture,
			fmt.Sprintf("Appointment date cannot be more than %d days in the future.", v.horizonDays))
	}

	return nil
}

func (v *DateTimeValidator) ValidateTimeSlot(slot string) (string, error) {
	slot = strings.TrimSpace(slot)
	if slot == "" {
		return "", ErrTimeRequired
	}
	for _, s := range timeSlots {
		if s == slot {
			return slot, nil
		}
	}
	return "", ErrInvalidSlot
}
