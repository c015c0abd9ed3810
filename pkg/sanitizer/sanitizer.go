package sanitizer

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"truerelief/pkg/validation"
)

const (
	MaxStringLength = 5000
	MaxEmailLength  = 254
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reEmail = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	suspiciousEmailPatterns = []string{"script", "javascript:", "onerror", "onclick"}

	ErrStringTooLong = validation.NewError(validation.TooLong,
		fmt.Sprintf("Input too long. Maximum %d characters.", MaxStringLength))
	ErrEmailRequired   = validation.NewError(validation.Required, "Email is required.")
	ErrEmailFormat     = validation.NewError(validation.InvalidFormat, "Invalid email format.")
	ErrEmailSuspicious = validation.NewError(validation.Suspicious, "Email contains invalid characters.")
	ErrEmailTooLong    = validation.NewError(validation.TooLong, "Email too long.")
)

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

var stringPipeline = Pipeline{
	html.EscapeString,
	stripControl,
}

// SanitizeString escapes markup and strips control characters. The length limit
// applies to the escaped text.
func SanitizeString(input string) (string, error) {
	if input == "" {
		return "", nil
	}

	s := stringPipeline.Apply(input)
	if utf8.RuneCountInString(s) > MaxStringLength {
		return "", ErrStringTooLong
	}
	return strings.TrimSpace(s), nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SanitizeName collapses inner whitespace before applying SanitizeString.
func SanitizeName(input string) (string, error) {
	return SanitizeString(collapseWhitespace(input))
}

func SanitizeEmail(input string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(input))
	if email == "" {
		return "", ErrEmailRequired
	}

	if !reEmail.MatchString(email) {
		return "", ErrEmailFormat
	}

	for _, pattern := range suspiciousEmailPatterns {
		if strings.Contains(email, pattern) {
			return "", ErrEmailSuspicious
		}
	}

	if len(email) > MaxEmailLength {
		return "", ErrEmailTooLong
	}

	return email, nil
}
