package middleware

import "github.com/julienschmidt/httprouter"

// RouteScopes are the per-route quotas of one record type.
type RouteScopes struct {
	Create Scope
	List   Scope
	Burst  Scope
}

// RouteGuards composes throttling and admin auth for handler registration.
type RouteGuards struct {
	Throttler *Throttler
	Admin     func(httprouter.Handle) httprouter.Handle
}

// Public throttles h by scopes.
func (g RouteGuards) Public(h httprouter.Handle, scopes ...Scope) httprouter.Handle {
	if g.Throttler == nil {
		return h
	}
	return g.Throttler.Handle(h, scopes...)
}

// Protected throttles before checking the admin token, so failed attempts
// count against the quota.
func (g RouteGuards) Protected(h httprouter.Handle, scopes ...Scope) httprouter.Handle {
	if g.Admin != nil {
		h = g.Admin(h)
	}
	return g.Public(h, scopes...)
}
