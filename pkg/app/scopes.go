package app

import (
	"time"

	"truerelief/pkg/config"
	"truerelief/pkg/middleware"
)

// Scope names are shared across record types, so list and burst quotas count
// requests to either API.
const (
	ScopeAppointments = "appointments"
	ScopeContacts     = "contacts"
	ScopeList         = "list"
	ScopeBurst        = "burst"
	ScopeSustained    = "sustained"
	ScopeAdmin        = "admin"
)

func AppointmentScopes(cfg *config.Config) middleware.RouteScopes {
	return middleware.RouteScopes{
		Create: middleware.Scope{Name: ScopeAppointments, Limit: cfg.RateAppointmentsPerHour, Window: time.Hour, Strict: true},
		List:   listScope(cfg),
		Burst:  burstScope(cfg),
	}
}

func ContactScopes(cfg *config.Config) middleware.RouteScopes {
	return middleware.RouteScopes{
		Create: middleware.Scope{Name: ScopeContacts, Limit: cfg.RateContactsPerHour, Window: time.Hour, Strict: true},
		List:   listScope(cfg),
		Burst:  burstScope(cfg),
	}
}

func listScope(cfg *config.Config) middleware.Scope {
	return middleware.Scope{Name: ScopeList, Limit: cfg.RateListPerMinute, Window: time.Minute}
}

func burstScope(cfg *config.Config) middleware.Scope {
	return middleware.Scope{Name: ScopeBurst, Limit: cfg.RateBurstPerMinute, Window: time.Minute}
}

func SustainedScope(cfg *config.Config) middleware.Scope {
	return middleware.Scope{Name: ScopeSustained, Limit: cfg.RateSustainedPerHour, Window: time.Hour}
}

func AdminScope(cfg *config.Config) middleware.Scope {
	return middleware.Scope{Name: ScopeAdmin, Limit: cfg.RateAdminPerMinute, Window: time.Minute}
}
