package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// Sender sends a pre-built message.
type Sender interface {
	Send(from, to string, msg []byte) error
}

type SMTPSender struct {
	addr string
	auth smtp.Auth
}

// NewSMTPSender uses PLAIN auth when a username is given, otherwise an
// unauthenticated relay.
func NewSMTPSender(host string, port int, username, password string) *SMTPSender {
	host = strings.TrimSpace(host)
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPSender{
		addr: host + ":" + strconv.Itoa(port),
		auth: auth,
	}
}

func (s *SMTPSender) Send(from, to string, msg []byte) error {
	return smtp.SendMail(s.addr, s.auth, from, []string{to}, msg)
}

type SMTPTransport struct {
	sender Sender
	now    func() time.Time
}

func NewSMTPTransport(sender Sender) *SMTPTransport {
	return &SMTPTransport{sender: sender, now: time.Now}
}

func (t *SMTPTransport) Name() string { return "smtp" }

// Send gives up waiting when ctx expires; net/smtp has no cancellation, so
// the dial itself finishes in the background.
func (t *SMTPTransport) Send(ctx context.Context, email Email) error {
	msg := buildMessage(email, t.now())

	done := make(chan error, 1)
	go func() {
		done <- t.sender.Send(email.From, email.To, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send: %w", ctx.Err())
	}
}

func buildMessage(email Email, now time.Time) []byte {
	return []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nDate: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		headerValue(email.From),
		headerValue(email.To),
		headerValue(email.Subject),
		now.Format(time.RFC1123Z),
		strings.ReplaceAll(email.Body, "\n", "\r\n"),
	))
}

// headerValue drops line breaks so submitted names cannot inject headers.
func headerValue(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
