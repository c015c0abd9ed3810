package middleware

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	apperrors "truerelief/pkg/errors"
	httputil "truerelief/pkg/http"
	"truerelief/pkg/logger"
)

// RequireAdmin guards a route with the admin bearer token. An empty token
// leaves the route open.
func RequireAdmin(token string, log *logger.Logger) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		if token == "" {
			return next
		}
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			if !tokenMatches(httputil.BearerToken(r), token) {
				log.Warn("Unauthorized admin request",
					"request_id", logger.RequestIDFromContext(r.Context()),
					"path", r.URL.Path,
					"client_ip", remoteIP(r),
				)
				w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
				_ = apperrors.WriteError(w, apperrors.Unauthorized("Authentication credentials were not provided or are invalid"))
				return
			}
			next(w, r, ps)
		}
	}
}
