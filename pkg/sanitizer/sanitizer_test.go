package sanitizer

import (
	"strings"
	"testing"

	"truerelief/pkg/validation"
)

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text untouched",
			input: "Lower back pain since March",
			want:  "Lower back pain since March",
		},
		{
			name:  "script tag escaped",
			input: "<script>alert('x')</script>",
			want:  "&lt;script&gt;alert(&#39;x&#39;)&lt;/script&gt;",
		},
		{
			name:  "ampersand and quotes escaped",
			input: `Tom & "Jerry"`,
			want:  "Tom &amp; &#34;Jerry&#34;",
		},
		{
			name:  "null bytes removed",
			input: "Del\x00hi",
			want:  "Delhi",
		},
		{
			name:  "other control characters removed",
			input: "Noida\x07\x1b",
			want:  "Noida",
		},
		{
			name:  "newlines kept",
			input: "line one\nline two",
			want:  "line one\nline two",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "   Gurgaon  ",
			want:  "Gurgaon",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeString(tt.input)
			if err != nil {
				t.Fatalf("SanitizeString(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("SanitizeString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeString_NeverReturnsRawMarkup(t *testing.T) {
	inputs := []string{
		"<script>",
		"<img src=x onerror=alert(1)>",
		"hello <b>world</b>",
	}
	for _, in := range inputs {
		got, err := SanitizeString(in)
		if err != nil {
			t.Fatalf("SanitizeString(%q) unexpected error: %v", in, err)
		}
		if strings.ContainsAny(got, "<>") {
			t.Errorf("SanitizeString(%q) = %q still contains markup", in, got)
		}
	}
}

func TestSanitizeString_Length(t *testing.T) {
	atLimit := strings.Repeat("a", MaxStringLength)
	if _, err := SanitizeString(atLimit); err != nil {
		t.Errorf("expected %d characters to pass, got %v", MaxStringLength, err)
	}

	overLimit := strings.Repeat("a", MaxStringLength+1)
	_, err := SanitizeString(overLimit)
	if !validation.IsKind(err, validation.TooLong) {
		t.Errorf("expected TooLong, got %v", err)
	}

	// escaping expands the text, the limit applies after escaping
	escapedOver := strings.Repeat("<", MaxStringLength/4+1)
	_, err = SanitizeString(escapedOver)
	if !validation.IsKind(err, validation.TooLong) {
		t.Errorf("expected TooLong after escaping, got %v", err)
	}
}

func TestSanitizeName(t *testing.T) {
	got, err := SanitizeName("  Rahul \t  Kumar  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Rahul Kumar" {
		t.Errorf("SanitizeName = %q, want %q", got, "Rahul Kumar")
	}
}

func TestSanitizeEmail(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     string
		wantKind validation.Kind
	}{
		{
			name:  "lowercased and trimmed",
			input: "  John.Doe@Example.COM ",
			want:  "john.doe@example.com",
		},
		{
			name:  "plus addressing",
			input: "patient+clinic@mail.co.in",
			want:  "patient+clinic@mail.co.in",
		},
		{
			name:     "empty",
			input:    "   ",
			wantKind: validation.Required,
		},
		{
			name:     "missing at sign",
			input:    "john.example.com",
			wantKind: validation.InvalidFormat,
		},
		{
			name:     "missing tld",
			input:    "john@example",
			wantKind: validation.InvalidFormat,
		},
		{
			name:     "markup rejected by format",
			input:    "<script>@x.com",
			wantKind: validation.InvalidFormat,
		},
		{
			name:     "deny-listed substring",
			input:    "javascript@example.com",
			wantKind: validation.Suspicious,
		},
		{
			name:     "onclick substring",
			input:    "onclick.me@example.com",
			wantKind: validation.Suspicious,
		},
		{
			name:     "too long",
			input:    strings.Repeat("a", 250) + "@example.com",
			wantKind: validation.TooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeEmail(tt.input)
			if tt.wantKind != "" {
				if !validation.IsKind(err, tt.wantKind) {
					t.Fatalf("SanitizeEmail(%q) error = %v, want kind %s", tt.input, err, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("SanitizeEmail(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("SanitizeEmail(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeEmail_Idempotent(t *testing.T) {
	first, err := SanitizeEmail(" Priya.S@Gmail.com ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := SanitizeEmail(first)
	if err != nil {
		t.Fatalf("unexpected error on second pass: %v", err)
	}
	if first != second {
		t.Errorf("not idempotent: %q then %q", first, second)
	}
}
