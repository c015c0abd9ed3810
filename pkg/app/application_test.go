package app

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/julienschmidt/httprouter"

	"truerelief/pkg/client"
	"truerelief/pkg/config"
	"truerelief/pkg/logger"
)

type echoHandler struct {
	creates atomic.Int32
}

func (h *echoHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/echo/", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		n := h.creates.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"n":%d}`, n)
	})
	router.GET("/api/panic/", func(http.ResponseWriter, *http.Request, httprouter.Params) {
		panic("boom")
	})
}

type liveHandler struct{}

func (liveHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/healthz", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})
}

func newTestApp(t *testing.T, mutate func(*config.Config)) (*Application, *echoHandler) {
	t.Helper()
	cfg := config.FromEnv("test")
	cfg.Log = logger.Discard()
	cfg.Client = client.NewClient(cfg.Log)
	if mutate != nil {
		mutate(cfg)
	}

	a := NewApplication(cfg)
	echo := &echoHandler{}
	a.SetApp(liveHandler{}, echo)
	t.Cleanup(a.Stop)
	return a, echo
}

func post(h http.Handler, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestApplication_SecurityHeadersAndRequestID(t *testing.T) {
	a, _ := newTestApp(t, nil)

	rec := post(a.Handler(), "/api/echo/", `{}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	for _, h := range []string{"X-Frame-Options", "X-Content-Type-Options", "Strict-Transport-Security", "X-Request-ID", "X-Response-Time"} {
		if rec.Header().Get(h) == "" {
			t.Errorf("missing header %s", h)
		}
	}
}

func TestApplication_Recovery(t *testing.T) {
	a, _ := newTestApp(t, nil)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/panic/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Errorf("panic value leaked: %s", rec.Body.String())
	}
}

func TestApplication_BodyLimitAndContentType(t *testing.T) {
	a, echo := newTestApp(t, func(c *config.Config) { c.MaxRequestSize = 16 })

	rec := post(a.Handler(), "/api/echo/", `{"padding":"0123456789abcdef"}`, nil)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized body status = %d, want 413", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/echo/", strings.NewReader(`x=1`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("form body status = %d, want 415", rec.Code)
	}

	if echo.creates.Load() != 0 {
		t.Error("rejected requests reached the router")
	}
}

func TestApplication_SustainedThrottle(t *testing.T) {
	a, _ := newTestApp(t, func(c *config.Config) { c.RateSustainedPerHour = 2 })

	for i := 0; i < 2; i++ {
		if rec := post(a.Handler(), "/api/echo/", `{}`, nil); rec.Code != http.StatusCreated {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec := post(a.Handler(), "/api/echo/", `{}`, nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"scope":"sustained"`)) {
		t.Errorf("body = %s", rec.Body.String())
	}

	live := httptest.NewRecorder()
	a.Handler().ServeHTTP(live, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if live.Code != http.StatusOK {
		t.Errorf("liveness throttled: %d", live.Code)
	}
}

func TestApplication_IdempotentReplay(t *testing.T) {
	a, echo := newTestApp(t, nil)
	headers := map[string]string{"Idempotency-Key": "booking-42"}

	first := post(a.Handler(), "/api/echo/", `{}`, headers)
	second := post(a.Handler(), "/api/echo/", `{}`, headers)

	if first.Code != http.StatusCreated || second.Code != http.StatusCreated {
		t.Fatalf("status = %d / %d", first.Code, second.Code)
	}
	if echo.creates.Load() != 1 {
		t.Errorf("handler ran %d times, want 1", echo.creates.Load())
	}
	if second.Header().Get("Idempotent-Replayed") != "true" {
		t.Error("replayed response not marked")
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("bodies differ: %q vs %q", first.Body.String(), second.Body.String())
	}
}

func TestApplication_Metrics(t *testing.T) {
	a, _ := newTestApp(t, nil)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestScopes(t *testing.T) {
	cfg := config.FromEnv("test")

	appt := AppointmentScopes(cfg)
	if appt.Create.Name != ScopeAppointments || appt.Create.Limit != cfg.RateAppointmentsPerHour {
		t.Errorf("appointment create scope = %+v", appt.Create)
	}
	contacts := ContactScopes(cfg)
	if contacts.Create.Name != ScopeContacts || contacts.Create.Limit != cfg.RateContactsPerHour {
		t.Errorf("contact create scope = %+v", contacts.Create)
	}
	if appt.List != contacts.List || appt.Burst != contacts.Burst {
		t.Error("list and burst scopes should be shared")
	}
	if !appt.Create.Strict || !contacts.Create.Strict {
		t.Error("create scopes must apply to admin callers")
	}
	if appt.List.Strict || appt.Burst.Strict {
		t.Error("list and burst scopes should give way to the admin scope")
	}
}
