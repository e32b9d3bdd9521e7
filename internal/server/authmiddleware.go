package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/tjfontaine/autodiag/internal/auth"
	"github.com/tjfontaine/autodiag/internal/domain"
)

type clientContextKey struct{}

// AuthMiddleware validates API keys and injects the calling client into the
// request context. Keys come from the Authorization header (Bearer token or
// bare) or X-API-Key.
func AuthMiddleware(authenticator *auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := authenticator.ValidateAPIKey(auth.ExtractAPIKey(r))
			if err != nil {
				AddError(r.Context(), err)
				msg := "Invalid API key"
				if errors.Is(err, auth.ErrMissingKey) {
					msg = "Missing Authorization header"
				}
				WriteError(w, domain.NewAPIError(domain.ErrorTypeAuthentication, msg))
				return
			}

			AddLogField(r.Context(), "client", c.Name)
			ctx := context.WithValue(r.Context(), clientContextKey{}, c)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClient retrieves the authenticated client from context.
// Returns nil if no client is set.
func GetClient(ctx context.Context) *auth.Client {
	if c, ok := ctx.Value(clientContextKey{}).(*auth.Client); ok {
		return c
	}
	return nil
}
