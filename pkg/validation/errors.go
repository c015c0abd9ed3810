package validation

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies why a value was rejected.
type Kind string

const (
	Required      Kind = "required"
	TooLong       Kind = "too_long"
	TooShort      Kind = "too_short"
	InvalidFormat Kind = "invalid_format"
	InvalidChoice Kind = "invalid_choice"
	Suspicious    Kind = "suspicious"
	InvalidPhone  Kind = "invalid_phone"
	PastDate      Kind = "past_date"
	TooFarFuture  Kind = "too_far_future"
	InvalidSlot   Kind = "invalid_slot"
	NotANumber    Kind = "not_a_number"
	OutOfRange    Kind = "out_of_range"
	RateLimited   Kind = "rate_limited"
	AlreadyBooked Kind = "already_booked"
)

// FieldError is a user-fixable rejection of a single input field.
type FieldError struct {
	Field   string `json:"field"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewError builds a FieldError without a field; callers attach one with WithField.
func NewError(kind Kind, message string) *FieldError {
	return &FieldError{Kind: kind, Message: message}
}

func (e *FieldError) WithField(field string) *FieldError {
	cp := *e
	cp.Field = field
	return &cp
}

type Errors []*FieldError

func (v Errors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Add records err under field. Errors that are not FieldErrors are ignored.
func (v *Errors) Add(field string, err error) {
	if err == nil {
		return
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		*v = append(*v, fe.WithField(field))
	}
}

// Fields maps each field to its first message.
func (v Errors) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for _, err := range v {
		key := err.Field
		if key == "" {
			key = "non_field_errors"
		}
		if _, ok := out[key]; !ok {
			out[key] = err.Message
		}
	}
	return out
}

func (v Errors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// IsKind reports whether err is, or contains, a FieldError of the given kind.
func IsKind(err error, kind Kind) bool {
	var list Errors
	if errors.As(err, &list) {
		for _, fe := range list {
			if fe.Kind == kind {
				return true
			}
		}
		return false
	}
	var fe *FieldError
	return errors.As(err, &fe) && fe.Kind == kind
}
