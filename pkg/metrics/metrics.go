package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "truerelief"

var (
	once sync.Once

	recordsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_created_total",
			Help:      "Count of persisted submissions by record kind.",
		},
		[]string{"kind"},
	)

	submissionsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_rejected_total",
			Help:      "Count of rejected submissions by record kind and reason.",
		},
		[]string{"kind", "reason"},
	)

	statusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_changes_total",
			Help:      "Count of status updates by record kind and new status.",
		},
		[]string{"kind", "status"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Count of notification deliveries by transport and result.",
		},
		[]string{"transport", "result"},
	)

	throttled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "throttled_requests_total",
			Help:      "Count of requests rejected by the rate limiter per scope.",
		},
		[]string{"scope"},
	)

	kafkaPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_messages_published_total",
			Help:      "Count of Kafka publish attempts by topic and result.",
		},
		[]string{"topic", "result"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and status code.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "code"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			recordsCreated,
			submissionsRejected,
			statusChanges,
			notifications,
			throttled,
			kafkaPublished,
			httpDuration,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func IncRecordCreated(kind string) {
	recordsCreated.WithLabelValues(kind).Inc()
}

func IncSubmissionRejected(kind, reason string) {
	submissionsRejected.WithLabelValues(kind, reason).Inc()
}

func IncStatusChange(kind, status string) {
	statusChanges.WithLabelValues(kind, status).Inc()
}

func IncNotification(transport string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	notifications.WithLabelValues(transport, result).Inc()
}

func IncThrottled(scope string) {
	throttled.WithLabelValues(scope).Inc()
}

func IncKafkaPublished(topic string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	kafkaPublished.WithLabelValues(topic, result).Inc()
}

func ObserveHTTPRequest(method string, status int, d time.Duration) {
	httpDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(d.Seconds())
}
