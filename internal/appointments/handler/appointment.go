package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"truerelief/internal/appointments/service"
	httputil "truerelief/pkg/http"
	"truerelief/pkg/logger"
	"truerelief/pkg/middleware"
	"truerelief/pkg/model"
)

const createdMessage = "Appointment booked successfully! You will receive a confirmation email shortly."

type AppointmentHandler struct {
	service service.AppointmentService
	log     *logger.Logger
	guards  middleware.RouteGuards
	scopes  middleware.RouteScopes
}

func NewAppointmentHandler(
	service service.AppointmentService,
	log *logger.Logger,
	guards middleware.RouteGuards,
	scopes middleware.RouteScopes,
) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
		log:     log,
		guards:  guards,
		scopes:  scopes,
	}
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload model.AppointmentPayload
	if err := httputil.DecodeJSON(r, &payload); err != nil {
		h.writeError(w, r, "Create", err)
		return
	}

	appointment, err := h.service.Create(r.Context(), &payload)
	if err != nil {
		h.writeError(w, r, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, createdMessage, appointment.View()); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

// Get serves the detail route. "list" and "stats" share its path segment.
func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	switch ps.ByName("id") {
	case "list":
		h.guards.Protected(h.List, h.scopes.List)(w, r, ps)
	case "stats":
		h.guards.Protected(h.Stats, h.scopes.List)(w, r, ps)
	default:
		h.guards.Protected(h.GetByID, h.scopes.Burst)(w, r, ps)
	}
}

func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	appointment, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, r, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, appointment.View()); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, pageSize, err := httputil.ExtractPage(r)
	if err != nil {
		h.writeError(w, r, "List", err)
		return
	}

	result, err := h.service.List(r.Context(), page, pageSize, r.URL.Query().Get("status"))
	if err != nil {
		h.writeError(w, r, "List", err)
		return
	}

	err = httputil.WritePaginated(w, model.AppointmentViews(result.Items), result.TotalCount, result.Page, result.PageSize, result.TotalPages())
	if err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.StatusUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, r, "Update", err)
		return
	}

	appointment, err := h.service.UpdateStatus(r.Context(), ps.ByName("id"), update.Status)
	if err != nil {
		h.writeError(w, r, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, appointment.View()); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) BulkUpdate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var update model.BulkStatusUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, r, "BulkUpdate", err)
		return
	}

	matched, err := h.service.BulkUpdateStatus(r.Context(), &update)
	if err != nil {
		h.writeError(w, r, "BulkUpdate", err)
		return
	}

	err = httputil.WriteSuccess(w, httputil.BulkUpdateResponse{
		Success: true,
		Updated: matched,
		Message: httputil.BulkUpdateMessage(matched, "appointment", model.AppointmentStatusLabel(update.Status)),
	})
	if err != nil {
		h.log.Error("failed to write success response", "handler", "BulkUpdate", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.writeError(w, r, "Stats", err)
		return
	}

	if err := httputil.WriteSuccess(w, stats); err != nil {
		h.log.Error("failed to write success response", "handler", "Stats", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) writeError(w http.ResponseWriter, r *http.Request, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.WithContext(r.Context()).Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/appointments/", h.guards.Public(h.Create, h.scopes.Create, h.scopes.Burst))
	router.POST("/api/appointments/bulk-status/", h.guards.Protected(h.BulkUpdate, h.scopes.Burst))
	router.GET("/api/appointments/:id/", h.Get)
	router.PATCH("/api/appointments/:id/", h.guards.Protected(h.Update, h.scopes.Burst))
	router.PUT("/api/appointments/:id/", h.guards.Protected(h.Update, h.scopes.Burst))
}
