package health

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	httputil "truerelief/pkg/http"
	"truerelief/pkg/logger"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

type Response struct {
	Status   string `json:"status"`
	Service  string `json:"service,omitempty"`
	Version  string `json:"version,omitempty"`
	Database string `json:"database,omitempty"`
	Error    string `json:"error,omitempty"`
}

type Handler struct {
	db      Pinger
	service string
	version string
	log     *logger.Logger
}

func NewHandler(db Pinger, service, version string, log *logger.Logger) *Handler {
	return &Handler{
		db:      db,
		service: service,
		version: version,
		log:     log,
	}
}

// Live reports that the process is serving requests.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, Response{Status: "ok"}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Live", "operation", "WriteJSON", "error", err)
	}
}

// Check pings the database and reports the API as healthy or unhealthy.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx, readpref.Primary()); err != nil {
		h.log.WithContext(r.Context()).Error("Database health check failed", "error", err, "path", r.URL.Path)
		if writeErr := httputil.WriteJSON(w, http.StatusServiceUnavailable, Response{
			Status:   "unhealthy",
			Service:  h.service,
			Version:  h.version,
			Database: "error",
			Error:    "Database connection failed",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Check", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, Response{
		Status:   "healthy",
		Service:  h.service,
		Version:  h.version,
		Database: "connected",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Check", "operation", "WriteJSON", "error", err)
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/health/", h.Check)
	router.GET("/healthz", h.Live)
}
