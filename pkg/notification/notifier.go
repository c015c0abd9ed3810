package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"truerelief/pkg/config"
	"truerelief/pkg/logger"
	"truerelief/pkg/metrics"
	"truerelief/pkg/model"
)

const defaultTimeout = 10 * time.Second

// Notifier is told about every persisted record.
type Notifier interface {
	Notify(ctx context.Context, record model.Record) error
}

// Transport delivers a rendered email.
type Transport interface {
	Name() string
	Send(ctx context.Context, email Email) error
}

type Dispatcher struct {
	renderer  *Renderer
	transport Transport
	timeout   time.Duration
	log       *logger.Logger
}

func NewDispatcher(renderer *Renderer, transport Transport, timeout time.Duration, log *logger.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{
		renderer:  renderer,
		transport: transport,
		timeout:   timeout,
		log:       log,
	}
}

// New builds the dispatcher for the configured transport.
func New(cfg *config.Config) (*Dispatcher, error) {
	transport, err := newTransport(cfg)
	if err != nil {
		return nil, err
	}
	renderer := NewRenderer(cfg.Clinic, cfg.SMTPFrom, cfg.Location())
	return NewDispatcher(renderer, transport, cfg.NotificationTimeout, cfg.Log), nil
}

func newTransport(cfg *config.Config) (Transport, error) {
	switch cfg.NotificationTransport {
	case config.TransportSMTP:
		sender := NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
		return NewSMTPTransport(sender), nil
	case config.TransportKafka:
		if cfg.Client == nil || cfg.Client.Kafka == nil {
			return nil, errors.New("kafka transport selected but no producer is configured")
		}
		return NewKafkaTransport(cfg.Client.Kafka, cfg.ServiceName), nil
	case config.TransportLog, "":
		return NewLogTransport(cfg.Log), nil
	default:
		return nil, fmt.Errorf("unknown notification transport %q", cfg.NotificationTransport)
	}
}

// Notify renders and sends both emails for record. It runs on a context
// detached from the caller's cancellation, bounded by the dispatcher timeout.
// Every failed email is returned as an *Error inside a joined error.
func (d *Dispatcher) Notify(ctx context.Context, record model.Record) error {
	log := d.log.WithContext(ctx)

	emails, err := d.renderer.Render(record)
	if err != nil {
		metrics.IncNotification(d.transport.Name(), err)
		return &Error{Transport: d.transport.Name(), RecordID: record.RecordID(), Err: err}
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	var errs []error
	for _, email := range emails {
		if email.To == "" {
			continue
		}
		err := d.transport.Send(sendCtx, email)
		metrics.IncNotification(d.transport.Name(), err)
		if err != nil {
			errs = append(errs, &Error{
				Transport: d.transport.Name(),
				RecordID:  email.RecordID,
				Recipient: email.Audience,
				Err:       err,
			})
			continue
		}
		log.Info("Notification sent",
			"transport", d.transport.Name(),
			"kind", email.Kind,
			"record_id", email.RecordID,
			"audience", email.Audience,
		)
	}
	return errors.Join(errs...)
}
