package notification

import "fmt"

// Error is a failed delivery of one email. It is logged and counted by the
// dispatcher and never reaches the HTTP client.
type Error struct {
	Transport string
	RecordID  string
	Recipient string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("notification via %s for record %s to %s: %v", e.Transport, e.RecordID, e.Recipient, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
