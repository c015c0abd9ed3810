package validation

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// JSONFieldName makes go-playground report fields by their json names.
func JSONFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

// FromValidator converts go-playground errors into field errors. choiceTags
// name the custom enum tags, reported as InvalidChoice. Other errors are
// returned unchanged.
func FromValidator(err error, choiceTags ...string) error {
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	out := make(Errors, 0, len(validationErrs))
	for _, fe := range validationErrs {
		out = append(out, translate(fe, choiceTags).WithField(baseField(fe.Field())))
	}
	return out
}

// baseField maps "ids[3]" to "ids".
func baseField(field string) string {
	if i := strings.IndexByte(field, '['); i > 0 {
		return field[:i]
	}
	return field
}

func translate(err validator.FieldError, choiceTags []string) *FieldError {
	switch tag := err.Tag(); {
	case tag == "required":
		return NewError(Required, "This field is required.")
	case tag == "max":
		switch err.Kind() {
		case reflect.Slice:
			return NewError(TooLong, fmt.Sprintf("Ensure this list has no more than %s items.", err.Param()))
		case reflect.Int, reflect.Int64:
			return NewError(OutOfRange, fmt.Sprintf("Ensure this value is less than or equal to %s.", err.Param()))
		default:
			return NewError(TooLong, fmt.Sprintf("Ensure this field has no more than %s characters.", err.Param()))
		}
	case tag == "min":
		switch err.Kind() {
		case reflect.Slice:
			return NewError(TooShort, fmt.Sprintf("Ensure this list has at least %s items.", err.Param()))
		case reflect.Int, reflect.Int64:
			return NewError(OutOfRange, fmt.Sprintf("Ensure this value is greater than or equal to %s.", err.Param()))
		default:
			return NewError(TooShort, fmt.Sprintf("Ensure this field has at least %s characters.", err.Param()))
		}
	case tag == "email":
		return NewError(InvalidFormat, "Enter a valid email address.")
	case tag == "datetime":
		return NewError(InvalidFormat, "Invalid date format. Use YYYY-MM-DD.")
	case tag == "mongodb":
		return NewError(InvalidFormat, fmt.Sprintf("%q is not a valid ID.", err.Value()))
	case slices.Contains(choiceTags, tag):
		return NewError(InvalidChoice, fmt.Sprintf("%q is not a valid choice.", err.Value()))
	default:
		return NewError(InvalidFormat, fmt.Sprintf("failed '%s' validation", tag))
	}
}

// InvalidChoiceError reports value as not one of the accepted options of field.
func InvalidChoiceError(field, value string) Errors {
	return Errors{NewError(InvalidChoice, fmt.Sprintf("%q is not a valid choice.", value)).WithField(field)}
}
