package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	appjobs "github.com/bryanwahyu/sentinel-ai/internal/application/jobs"
	"github.com/bryanwahyu/sentinel-ai/internal/config"
)

type contextKey string

const principalKey contextKey = "principal"

// APIKeyAuth validates the API key from the Authorization header and stores
// the matching principal in the request context.
func APIKeyAuth(keys []config.APIKey) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip auth for health check and the relay: browsers cannot
			// set headers on a websocket dial, and the relay carries no
			// job state
			if r.URL.Path == "/health" || r.URL.Path == "/ws" {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				http.Error(w, "missing Authorization header", http.StatusUnauthorized)
				return
			}

			// Support both "Bearer <key>" and "<key>" formats
			apiKey := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if apiKey == "" {
				http.Error(w, "invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			// constant-time comparison to prevent timing attacks
			var principal *appjobs.Principal
			for _, k := range keys {
				if subtle.ConstantTimeCompare([]byte(apiKey), []byte(k.Key)) == 1 {
					principal = &appjobs.Principal{UserID: k.User, Role: k.Role}
					break
				}
			}
			if principal == nil {
				http.Error(w, "invalid API key", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, *principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext extracts the authenticated principal.
func PrincipalFromContext(ctx context.Context) appjobs.Principal {
	if p, ok := ctx.Value(principalKey).(appjobs.Principal); ok {
		return p
	}
	return appjobs.Principal{}
}
