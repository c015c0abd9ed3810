package middleware

import (
	"net/http"
	"runtime/debug"

	apperrors "truerelief/pkg/errors"
	"truerelief/pkg/logger"
)

func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error("Panic recovered",
						"request_id", logger.RequestIDFromContext(r.Context()),
						"error", err,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)

					_ = apperrors.WriteError(w, apperrors.Internal("An unexpected error occurred. Please try again later.", nil))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
