package middleware

import (
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"

	"truerelief/pkg/logger"
	"truerelief/pkg/metrics"
)

const (
	RequestIDHeader    = "X-Request-ID"
	ResponseTimeHeader = "X-Response-Time"
)

var suspiciousPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"sql_injection", regexp.MustCompile(`(?i)(union\s+select|drop\s+table|insert\s+into|delete\s+from|update\s+\w+\s+set|or\s+1\s*=\s*1|;\s*--)`)},
	{"xss", regexp.MustCompile(`(?i)(<script|javascript:|onerror\s*=|onload\s*=)`)},
	{"path_traversal", regexp.MustCompile(`(\.\./|\.\.\\|%2e%2e)`)},
	{"code_injection", regexp.MustCompile(`(?i)(eval\(|exec\(|system\(|__import__)`)},
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
	start      time.Time
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.Header().Set(ResponseTimeHeader, formatElapsed(time.Since(rw.start)))
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func RequestLogging(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" || len(requestID) > 128 {
				requestID = uuid.NewString()
			}

			r = r.WithContext(logger.ContextWithRequestID(r.Context(), requestID))
			w.Header().Set(RequestIDHeader, requestID)

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				start:          start,
			}

			log.Info("HTTP request started",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"client_ip", remoteIP(r),
				"user_agent", r.UserAgent(),
			)
			detectSuspicious(log, r, requestID)

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			metrics.ObserveHTTPRequest(r.Method, wrapped.statusCode, duration)

			args := []any{
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration_ms", duration.Milliseconds(),
			}
			switch {
			case wrapped.statusCode >= 500:
				log.Error("HTTP request completed", args...)
			case wrapped.statusCode >= 400:
				log.Warn("HTTP request completed", args...)
			default:
				log.Info("HTTP request completed", args...)
			}
		})
	}
}

func detectSuspicious(log *logger.Logger, r *http.Request, requestID string) {
	target := r.URL.Path
	if r.URL.RawQuery != "" {
		query, err := url.QueryUnescape(r.URL.RawQuery)
		if err != nil {
			query = r.URL.RawQuery
		}
		target += "?" + query
	}

	for _, p := range suspiciousPatterns {
		if p.re.MatchString(target) {
			log.Warn("Suspicious request detected",
				"request_id", requestID,
				"pattern", p.name,
				"method", r.Method,
				"path", r.URL.Path,
				"client_ip", remoteIP(r),
			)
		}
	}

	if r.UserAgent() == "" {
		log.Warn("Request without User-Agent",
			"request_id", requestID,
			"path", r.URL.Path,
			"client_ip", remoteIP(r),
		)
	}
}

func formatElapsed(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64) + "s"
}
