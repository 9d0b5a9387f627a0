// Package requesttime pins one "now" per HTTP request so every timestamp a
// request writes (claim, agreement, notification, audit) agrees.
package requesttime

import (
	"net/http"
	"time"

	"auditlink/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return MiddlewareWithClock(time.Now)(next)
}

// MiddlewareWithClock is Middleware with an injectable clock for tests.
func MiddlewareWithClock(now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), now().UTC())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
