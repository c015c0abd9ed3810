package sanitizer

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"truerelief/pkg/validation"
)

const DefaultRegion = "IN"

var (
	rePhoneSeparators = regexp.MustCompile(`[\s\-\(\)]`)
	rePhoneFallback   = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

	ErrPhoneRequired = validation.NewError(validation.Required, "Phone number is required.")
	ErrPhoneInvalid  = validation.NewError(validation.InvalidPhone,
		"Phone number must be between 10-15 digits and can optionally start with '+'")
)

func SanitizePhone(phone string) (string, error) {
	return SanitizePhoneForRegion(phone, DefaultRegion)
}

// SanitizePhoneForRegion returns the E.164 form when the number is valid for
// region, and otherwise accepts 10-15 bare digits as typed.
func SanitizePhoneForRegion(phone, region string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", ErrPhoneRequired
	}

	cleaned := rePhoneSeparators.ReplaceAllString(phone, "")

	parsedNumber, err := phonenumbers.Parse(cleaned, region)
	if err == nil && phonenumbers.IsValidNumber(parsedNumber) {
		return phonenumbers.Format(parsedNumber, phonenumbers.E164), nil
	}

	if rePhoneFallback.MatchString(cleaned) {
		return cleaned, nil
	}
	return "", ErrPhoneInvalid
}
