package notification

import (
	"context"

	"truerelief/pkg/kafka"
	"truerelief/pkg/logger"
)

const (
	EventEmailRequested = "notification.email.requested"
	emailSchemaVersion  = "1"
)

// Publisher is the part of the Kafka producer the transport needs.
type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaTransport hands emails to a mail worker through a topic.
type KafkaTransport struct {
	publisher Publisher
	source    string
}

func NewKafkaTransport(publisher Publisher, source string) *KafkaTransport {
	return &KafkaTransport{publisher: publisher, source: source}
}

func (t *KafkaTransport) Name() string { return "kafka" }

func (t *KafkaTransport) Send(ctx context.Context, email Email) error {
	msg, err := kafka.NewMessage().
		WithKey(email.RecordID).
		WithValue(email).
		WithEventType(EventEmailRequested).
		WithCorrelationID(logger.RequestIDFromContext(ctx)).
		WithSchemaVersion(emailSchemaVersion).
		WithSource(t.source).
		Build()
	if err != nil {
		return err
	}
	return t.publisher.Publish(ctx, msg)
}
