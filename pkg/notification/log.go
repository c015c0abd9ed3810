package notification

import (
	"context"

	"truerelief/pkg/logger"
)

// LogTransport writes emails to the log instead of delivering them. It is the
// default for local runs.
type LogTransport struct {
	log *logger.Logger
}

func NewLogTransport(log *logger.Logger) *LogTransport {
	return &LogTransport{log: log}
}

func (t *LogTransport) Name() string { return "log" }

func (t *LogTransport) Send(ctx context.Context, email Email) error {
	t.log.WithContext(ctx).Debug("Email delivery skipped",
		"kind", email.Kind,
		"record_id", email.RecordID,
		"audience", email.Audience,
		"subject", email.Subject,
		"body", email.Body,
	)
	return nil
}
