package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinAge = 1
	MaxAge = 120

	DuplicateWindow = 24 * time.Hour
)

var (
	ErrAgeRequired   = NewError(Required, "Age is required.")
	ErrAgeNotANumber = NewError(NotANumber, "Age must be a valid number.")
	ErrAgeOutOfRange = NewError(OutOfRange,
		fmt.Sprintf("Age must be between %d and %d years.", MinAge, MaxAge))

	ErrRecentSubmission = NewError(RateLimited,
		"You have already submitted a request in the last 24 hours. Please wait before submitting again.")
	ErrAlreadyBooked = NewError(AlreadyBooked,
		"You already have an appointment booked for this date.")
)

// SubmissionHistory is the read side of the record store needed by the
// duplicate checks.
type SubmissionHistory interface {
	// ExistsRecentSubmission reports whether a record with the given email or
	// phone was created within window of now.
	ExistsRecentSubmission(ctx context.Context, email, phone string, window time.Duration) (bool, error)
	// ExistsActiveOnDate reports whether a pending or confirmed appointment
	// exists for email on date.
	ExistsActiveOnDate(ctx context.Context, email string, date time.Time) (bool, error)
}

// ValidateAge coerces a decoded JSON value to an age in years.
func ValidateAge(value any) (int, error) {
	age, err := coerceInt(value)
	if err != nil {
		return 0, err
	}
	if age < MinAge || age > MaxAge {
		return 0, ErrAgeOutOfRange
	}
	return age, nil
}

func coerceInt(value any) (int, error) {
	switch v := value.(type) {
	case nil:
		return 0, ErrAgeRequired
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	case json.Number:
		return parseIntString(v.String())
	case string:
		return parseIntString(v)
	default:
		return 0, ErrAgeNotANumber
	}
}

func floatToInt(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrAgeNotANumber
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, ErrAgeOutOfRange
	}
	return int(f), nil
}

func parseIntString(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrAgeRequired
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrAgeNotANumber
	}
	return floatToInt(f)
}

// ValidateMessageLength checks the rune count of msg against [min, max].
func ValidateMessageLength(msg string, min, max int) error {
	n := utf8.RuneCountInString(msg)
	if n < min {
		return NewError(TooShort, fmt.Sprintf("Message must be at least %d characters long.", min))
	}
	if n > max {
		return NewError(TooLong, fmt.Sprintf("Message cannot exceed %d characters.", max))
	}
	return nil
}

// CheckRecentSubmission rejects a second submission from the same email or
// phone within DuplicateWindow.
func CheckRecentSubmission(ctx context.Context, history SubmissionHistory, email, phone string) error {
	recent, err := history.ExistsRecentSubmission(ctx, email, phone, DuplicateWindow)
	if err != nil {
		return err
	}
	if recent {
		return ErrRecentSubmission
	}
	return nil
}

// CheckDuplicateAppointment runs the recent-submission check and then rejects
// a second active booking for the same email and date. Store errors are
// returned unchanged.
func CheckDuplicateAppointment(ctx context.Context, history SubmissionHistory, email, phone string, date time.Time) error {
	if err := CheckRecentSubmission(ctx, history, email, phone); err != nil {
		return err
	}

	booked, err := history.ExistsActiveOnDate(ctx, email, date)
	if err != nil {
		return err
	}
	if booked {
		return ErrAlreadyBooked
	}
	return nil
}
