// Package sanitizer provides input normalization and sanitization for public form submissions.
//
// Every function returns the cleaned value or a *validation.FieldError describing why the
// input was rejected. Callers attach the field name.
//
// Normalization includes:
//   - Free text: HTML-escaped, control characters stripped, trimmed, capped at 5000 characters
//   - Emails: Trimmed and lowercased, checked against a standard address shape and a deny-list
//   - Phone numbers: Converted to E.164 (+[country][number]) with India as the default region
//   - Names: Runs of whitespace collapsed to a single space before escaping
//
// Phone and email normalization are idempotent - applying them to their own output
// produces the same result.
package sanitizer
