package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"truerelief/pkg/validation"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   NotFound("Appointment"),
			expected: "NOT_FOUND: Appointment not found",
		},
		{
			name:     "with underlying error",
			appErr:   Internal("internal error", errors.New("server selection timeout")),
			expected: "INTERNAL_ERROR: internal error (caused by: server selection timeout)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestConstructors_Status(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFoundWithID("Contact", "abc"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad", nil), CodeValidation, http.StatusBadRequest},
		{"invalid input", InvalidInput("bad id"), CodeInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("token required"), CodeUnauthorized, http.StatusUnauthorized},
		{"conflict", Conflict("illegal transition"), CodeConflict, http.StatusConflict},
		{"persistence", Persistence(errors.New("write failed")), CodePersistence, http.StatusInternalServerError},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("Database"), CodeUnavailable, http.StatusServiceUnavailable},
		{"rate limited", TooManyRequests("appointments"), CodeTooManyRequests, http.StatusTooManyRequests},
		{"too large", PayloadTooLarge(1024), CodeTooLarge, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.StatusCode() != tt.status {
				t.Errorf("status = %d, want %d", tt.err.StatusCode(), tt.status)
			}
		})
	}
}

func TestFromValidation(t *testing.T) {
	var errs validation.Errors
	errs.Add("email", validation.NewError(validation.InvalidFormat, "Invalid email format."))
	errs.Add("age", validation.NewError(validation.OutOfRange, "Age must be between 1 and 120 years."))

	appErr := FromValidation("Please correct the errors below.", errs)

	fields, ok := appErr.Details["fields"].(map[string]string)
	if !ok {
		t.Fatalf("details.fields has type %T", appErr.Details["fields"])
	}
	if fields["email"] != "Invalid email format." {
		t.Errorf("email = %q", fields["email"])
	}
	if fields["age"] == "" {
		t.Error("expected age message")
	}
	if !validation.IsKind(appErr, validation.OutOfRange) {
		t.Error("field errors should be reachable from the AppError")
	}
}

func TestAsAppError(t *testing.T) {
	notFound := NotFound("Appointment")
	if AsAppError(notFound) != notFound {
		t.Error("AsAppError should return the same AppError")
	}

	wrapped := fmt.Errorf("service: %w", notFound)
	if AsAppError(wrapped) != notFound {
		t.Error("AsAppError should unwrap to the AppError")
	}

	fieldErr := validation.NewError(validation.PastDate, "past").WithField("date")
	if got := AsAppError(fieldErr); got.Code != CodeValidation {
		t.Errorf("field error mapped to %s, want %s", got.Code, CodeValidation)
	}

	plain := errors.New("boom")
	got := AsAppError(plain)
	if got.Code != CodeInternal || got.Err != plain {
		t.Errorf("plain error mapped to %+v", got)
	}
}

func TestWriteError_HidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	_ = WriteError(rec, Persistence(errors.New("E11000 duplicate key on Appointments")))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "E11000") {
		t.Errorf("cause leaked into body: %s", rec.Body.String())
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Code != CodePersistence {
		t.Errorf("code = %s, want %s", resp.Code, CodePersistence)
	}
}

func TestWriteError_ValidationBody(t *testing.T) {
	var errs validation.Errors
	errs.Add("time", validation.ErrInvalidSlot)

	rec := httptest.NewRecorder()
	_ = WriteError(rec, FromValidation("Validation failed", errs))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body struct {
		Code    string `json:"code"`
		Details struct {
			Fields map[string]string `json:"fields"`
		} `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Code != CodeValidation {
		t.Errorf("code = %s", body.Code)
	}
	if body.Details.Fields["time"] == "" {
		t.Errorf("expected time field message, got %v", body.Details.Fields)
	}
}

func TestAppError_ToJSON(t *testing.T) {
	data := NotFoundWithID("Contact", "12345").ToJSON()
	s := string(data)
	if !strings.Contains(s, "NOT_FOUND") || !strings.Contains(s, "12345") {
		t.Errorf("ToJSON() = %s", s)
	}
}
