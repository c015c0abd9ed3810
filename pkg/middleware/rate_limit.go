package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"

	httputil "truerelief/pkg/http"
	"truerelief/pkg/logger"
	"truerelief/pkg/metrics"
)

// RateLimiter counts hits per key in fixed windows. retryAfter is the time
// left in the current window when the hit is refused.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, retryAfter time.Duration, err error)
	Stop()
}

// Scope is a named bucket with its own quota. Strict scopes are counted for
// admin callers too.
type Scope struct {
	Name   string
	Limit  int
	Window time.Duration
	Strict bool
}

type ThrottleOptions struct {
	TrustProxyHeaders bool
	AdminToken        string
	AdminScope        Scope
	// FailOpen lets requests through when the limiter store errors.
	FailOpen bool
}

type Throttler struct {
	limiter RateLimiter
	log     *logger.Logger
	opts    ThrottleOptions
}

func NewThrottler(limiter RateLimiter, log *logger.Logger, opts ThrottleOptions) *Throttler {
	return &Throttler{limiter: limiter, log: log, opts: opts}
}

// Handle wraps a route with its per-route scopes. Callers holding the admin
// token are counted against the admin scope instead, except for strict scopes.
func (t *Throttler) Handle(next httprouter.Handle, scopes ...Scope) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		active := scopes
		if t.isAdmin(r) && t.opts.AdminScope.Limit > 0 {
			active = adminScopes(scopes, t.opts.AdminScope)
		}

		for _, scope := range active {
			if !t.check(w, r, scope) {
				return
			}
		}
		next(w, r, ps)
	}
}

// Middleware applies a single scope to every request, used for the sustained quota.
func (t *Throttler) Middleware(scope Scope) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !t.check(w, r, scope) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (t *Throttler) check(w http.ResponseWriter, r *http.Request, scope Scope) bool {
	if scope.Limit <= 0 {
		return true
	}

	ip := ClientIP(r, t.opts.TrustProxyHeaders)
	allowed, retryAfter, err := t.limiter.Allow(r.Context(), scope.Name+":"+ip, scope.Limit, scope.Window)
	if err != nil {
		t.log.Warn("Rate limiter unavailable",
			"request_id", logger.RequestIDFromContext(r.Context()),
			"scope", scope.Name,
			"error", err,
		)
		if t.opts.FailOpen {
			return true
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"code":"SERVICE_UNAVAILABLE","message":"Rate limiter unavailable"}`))
		return false
	}
	if allowed {
		return true
	}

	metrics.IncThrottled(scope.Name)
	t.log.Warn("Rate limit exceeded",
		"request_id", logger.RequestIDFromContext(r.Context()),
		"scope", scope.Name,
		"client_ip", ip,
		"path", r.URL.Path,
	)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(retryAfter)))
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": "Rate limit exceeded",
		"scope": scope.Name,
	})
	return false
}

func adminScopes(scopes []Scope, admin Scope) []Scope {
	active := make([]Scope, 0, len(scopes)+1)
	for _, scope := range scopes {
		if scope.Strict {
			active = append(active, scope)
		}
	}
	return append(active, admin)
}

func (t *Throttler) isAdmin(r *http.Request) bool {
	if t.opts.AdminToken == "" {
		return false
	}
	return tokenMatches(httputil.BearerToken(r), t.opts.AdminToken)
}

func retryAfterSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

// ClientIP returns the caller address. Forwarding headers are honoured only
// when the service runs behind a trusted proxy.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			parts := strings.Split(fwd, ",")
			if ip := strings.TrimSpace(parts[0]); ip != "" {
				return ip
			}
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

func remoteIP(r *http.Request) string {
	return ClientIP(r, false)
}

func tokenMatches(got, want string) bool {
	if got == "" || want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

type window struct {
	count   int
	resetAt time.Time
}

// MemoryRateLimiter keeps fixed-window counters in process.
type MemoryRateLimiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewMemoryRateLimiter(cleanupEvery time.Duration) *MemoryRateLimiter {
	rl := &MemoryRateLimiter{
		windows: make(map[string]*window),
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	go rl.cleanup(cleanupInterval(cleanupEvery))

	return rl
}

func (rl *MemoryRateLimiter) Allow(_ context.Context, key string, limit int, win time.Duration) (bool, time.Duration, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w := rl.windows[key]
	if w == nil || !now.Before(w.resetAt) {
		rl.windows[key] = &window{count: 1, resetAt: now.Add(win)}
		return true, 0, nil
	}

	if w.count >= limit {
		return false, w.resetAt.Sub(now), nil
	}
	w.count++
	return true, 0, nil
}

func (rl *MemoryRateLimiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for key, w := range rl.windows {
				if !now.Before(w.resetAt) {
					delete(rl.windows, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *MemoryRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}
