package model

import (
	"sort"
	"time"
)

const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

var appointmentStatusLabels = map[string]string{
	AppointmentPending:   "Pending",
	AppointmentConfirmed: "Confirmed",
	AppointmentCompleted: "Completed",
	AppointmentCancelled: "Cancelled",
}

// AppointmentStatuses lists the appointment statuses in lifecycle order.
var AppointmentStatuses = []string{
	AppointmentPending,
	AppointmentConfirmed,
	AppointmentCompleted,
	AppointmentCancelled,
}

// ActiveAppointmentStatuses are the statuses that hold a booking for its date.
var ActiveAppointmentStatuses = []string{AppointmentPending, AppointmentConfirmed}

var appointmentTransitions = map[string][]string{
	AppointmentPending:   {AppointmentConfirmed, AppointmentCancelled},
	AppointmentConfirmed: {AppointmentCompleted, AppointmentCancelled},
}

var serviceLabels = map[string]string{
	"physiotherapy":      "Physiotherapy",
	"manual_therapy":     "Manual Therapy",
	"electro_therapy":    "Electro Therapy",
	"exercise_fitness":   "Exercise & Fitness",
	"cupping_therapy":    "Cupping Therapy",
	"orthopaedic_physio": "Orthopaedic Physiotherapy",
	"neuro_physio":       "Neuro Physiotherapy",
	"sports_physio":      "Sports Physiotherapy",
	"paediatrics_physio": "Paediatrics Physiotherapy",
	"dry_needling":       "Dry Needling",
	"physio_at_home":     "Physiotherapy at Home",
	"chest_physio":       "Chest Physiotherapy",
	"tele_physio":        "Tele Physiotherapy",
	"chiropractic":       "Chiropractic",
	"obesity_physio":     "Obesity Physiotherapy",
	"iastm_therapy":      "IASTM Therapy",
	"vertigo_testing":    "Vertigo Testing",
	"shockwave_therapy":  "Shockwave Therapy",
}

type Appointment struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Service   string    `json:"service" bson:"service" validate:"required,appointment_service"`
	Name      string    `json:"name" bson:"name" validate:"required,max=100"`
	Email     string    `json:"email" bson:"email" validate:"required,email,max=254"`
	Phone     string    `json:"phone" bson:"phone" validate:"required,max=20"`
	Age       int       `json:"age" bson:"age" validate:"required,min=1,max=120"`
	Location  string    `json:"location" bson:"location" validate:"required,max=255"`
	Date      string    `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	Time      string    `json:"time" bson:"time" validate:"required,max=20"`
	Message   string    `json:"message,omitempty" bson:"message,omitempty" validate:"omitempty,max=5000"`
	Status    string    `json:"status" bson:"status" validate:"required,appointment_status"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// AppointmentPayload is the raw booking form. Age stays untyped so numeric
// strings are accepted.
type AppointmentPayload struct {
	Service  string `json:"service"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Age      any    `json:"age"`
	Location string `json:"location"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Message  string `json:"message"`
}

type AppointmentStats struct {
	Total     int64 `json:"total_appointments"`
	Pending   int64 `json:"pending_appointments"`
	Confirmed int64 `json:"confirmed_appointments"`
	Completed int64 `json:"completed_appointments"`
	Cancelled int64 `json:"cancelled_appointments"`
}

// AppointmentView is the serialized form with display labels.
type AppointmentView struct {
	*Appointment
	ServiceDisplay string `json:"service_display"`
	StatusDisplay  string `json:"status_display"`
}

func (a *Appointment) RecordKind() string { return KindAppointment }
func (a *Appointment) RecordID() string   { return a.ID }

func (a *Appointment) View() AppointmentView {
	return AppointmentView{
		Appointment:    a,
		ServiceDisplay: ServiceLabel(a.Service),
		StatusDisplay:  AppointmentStatusLabel(a.Status),
	}
}

func AppointmentViews(items []*Appointment) []AppointmentView {
	views := make([]AppointmentView, 0, len(items))
	for _, a := range items {
		views = append(views, a.View())
	}
	return views
}

func IsValidService(s string) bool {
	_, ok := serviceLabels[s]
	return ok
}

func ServiceLabel(s string) string {
	return labelOr(serviceLabels, s)
}

// Services returns the service codes sorted alphabetically.
func Services() []string {
	out := make([]string, 0, len(serviceLabels))
	for k := range serviceLabels {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func IsValidAppointmentStatus(s string) bool {
	_, ok := appointmentStatusLabels[s]
	return ok
}

func AppointmentStatusLabel(s string) string {
	return labelOr(appointmentStatusLabels, s)
}

// CanTransitionAppointment reports whether an appointment may move from one
// status to another. Staying in the same status is always allowed.
func CanTransitionAppointment(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range appointmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
