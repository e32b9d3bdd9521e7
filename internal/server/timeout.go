package server

import (
	"context"
	"net/http"
	"time"
)

// TimeoutMiddleware bounds the request context. Oracle calls made by a
// handler observe the deadline and fall back when it passes; the handler
// itself is not interrupted. A non-positive timeout disables the middleware.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
