package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"

	"truerelief/pkg/config"
	"truerelief/pkg/contracts"
	"truerelief/pkg/metrics"
	"truerelief/pkg/middleware"
)

const (
	redisKeyPrefix      = "truerelief:rl"
	limiterCleanupEvery = time.Minute
)

type Application struct {
	cfg              *config.Config
	server           *http.Server
	idempotencyStore *middleware.InMemoryIdempotencyStore
	rateLimiter      middleware.RateLimiter
	throttler        *middleware.Throttler
	healthHandler    http.Handler
	appHTTPHandler   http.Handler
}

// NewApplication creates the rate limiter up front so handlers can be built
// with Guards before SetApp.
func NewApplication(cfg *config.Config) *Application {
	a := &Application{cfg: cfg}
	a.setRateLimiter()
	return a
}

func (a *Application) setRateLimiter() {
	if a.cfg.Client != nil && a.cfg.Client.Redis != nil {
		a.rateLimiter = middleware.NewRedisRateLimiter(a.cfg.Client.Redis, redisKeyPrefix)
		a.cfg.Log.Info("Rate limiting backed by Redis", "addr", a.cfg.RedisAddr)
	} else {
		a.rateLimiter = middleware.NewMemoryRateLimiter(limiterCleanupEvery)
		a.cfg.Log.Info("Rate limiting backed by process memory")
	}

	a.throttler = middleware.NewThrottler(a.rateLimiter, a.cfg.Log, middleware.ThrottleOptions{
		TrustProxyHeaders: a.cfg.TrustProxyHeaders,
		AdminToken:        a.cfg.AdminAPIToken,
		AdminScope:        AdminScope(a.cfg),
		FailOpen:          a.cfg.RateLimitFailOpen,
	})
}

// Guards returns the throttling and admin checks handlers register routes with.
func (a *Application) Guards() middleware.RouteGuards {
	return middleware.RouteGuards{
		Throttler: a.throttler,
		Admin:     middleware.RequireAdmin(a.cfg.AdminAPIToken, a.cfg.Log),
	}
}

func (a *Application) SetApp(healthHandler contracts.Handler, appHandlers ...contracts.Handler) {
	metrics.Register()
	a.setHealthHandler(healthHandler)
	a.setAppHandler(appHandlers)
	a.setAppServer()
}

func (a *Application) setHealthHandler(healthHandler contracts.Handler) {
	healthRouter := httprouter.New()
	healthHandler.RegisterRoutes(healthRouter)

	var healthHTTPHandler http.Handler = healthRouter
	healthHTTPHandler = middleware.SecurityHeaders()(healthHTTPHandler)
	healthHTTPHandler = middleware.RequestLogging(a.cfg.Log)(healthHTTPHandler)
	healthHTTPHandler = middleware.Recovery(a.cfg.Log)(healthHTTPHandler)
	a.healthHandler = healthHTTPHandler
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging + Security headers)")
}

func (a *Application) setAppHandler(appHandlers []contracts.Handler) {
	appRouter := httprouter.New()
	for _, h := range appHandlers {
		h.RegisterRoutes(appRouter)
	}

	a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)

	// Recovery → Logging → SecurityHeaders → CORS → MaxSize → ContentType → Sustained → Timeout → Idempotency → Router
	var appHTTPHandler http.Handler = appRouter
	appHTTPHandler = middleware.Idempotency(a.idempotencyStore, a.cfg.TrustProxyHeaders, a.cfg.Log)(appHTTPHandler)
	appHTTPHandler = middleware.RequestTimeout(a.cfg.RequestTimeout)(appHTTPHandler)
	appHTTPHandler = a.throttler.Middleware(SustainedScope(a.cfg))(appHTTPHandler)
	appHTTPHandler = middleware.ContentTypeValidation(a.cfg.Log)(appHTTPHandler)
	appHTTPHandler = middleware.MaxBodySize(int64(a.cfg.MaxRequestSize))(appHTTPHandler)
	if len(a.cfg.CORSAllowedOrigins) > 0 {
		appHTTPHandler = middleware.CORS(middleware.DefaultCORSPolicy(a.cfg.CORSAllowedOrigins))(appHTTPHandler)
		a.cfg.Log.Info("CORS enabled", "origins", a.cfg.CORSAllowedOrigins)
	}
	appHTTPHandler = middleware.SecurityHeaders()(appHTTPHandler)
	appHTTPHandler = middleware.RequestLogging(a.cfg.Log)(appHTTPHandler)
	appHTTPHandler = middleware.Recovery(a.cfg.Log)(appHTTPHandler)
	a.appHTTPHandler = appHTTPHandler

	if a.cfg.AdminAPIToken == "" {
		a.cfg.Log.Warn("ADMIN_API_TOKEN is not set, admin endpoints are unauthenticated")
	}
	a.cfg.Log.Info("Application endpoints configured with full security middleware stack")
}

// Handler is the root mux, exposed for tests.
func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/api/health/", a.healthHandler)
	mux.Handle("/healthz", a.healthHandler)
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/", a.appHTTPHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

// Stop releases the background workers without touching the server.
func (a *Application) Stop() {
	if a.idempotencyStore != nil {
		a.idempotencyStore.Stop()
	}
	a.rateLimiter.Stop()
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Stopping background workers...")
	a.Stop()
	a.cfg.Log.Info("Server stopped gracefully")
}
