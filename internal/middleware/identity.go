// Package middleware provides the HTTP middleware stack: identity
// resolution, request logging, CORS and metrics.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jmhart/crewlog/internal/auth"
	"github.com/jmhart/crewlog/internal/identity"
	"github.com/jmhart/crewlog/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// userKey is the context key holding the resolved caller identity.
const userKey contextKey = "user"

// deviceTokenHeader carries a freshly issued token back to callers that
// arrived without one, so the same device is recognized next time.
const deviceTokenHeader = "X-Device-Token"

// GetUser extracts the resolved identity from the context. The zero User
// is returned if the identity middleware did not run.
func GetUser(ctx context.Context) models.User {
	u, _ := ctx.Value(userKey).(models.User)
	return u
}

// WithUser returns a context carrying the given identity. Exposed for
// handler tests.
func WithUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// ResolveIdentity returns middleware that resolves the caller's identity
// on every request: a valid bearer device token names an existing device;
// anything else gets a freshly synthesized identity, with the new token
// handed back in a response header. Trust-on-first-use: the token is never
// proof of anything beyond "same device as before".
func ResolveIdentity(tokens *auth.DeviceTokens, provider *identity.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var userID string
			if header := r.Header.Get("Authorization"); header != "" {
				parts := strings.SplitN(header, " ", 2)
				if len(parts) == 2 && parts[0] == "Bearer" {
					if id, err := tokens.Validate(parts[1]); err == nil {
						userID = id
					}
				}
			}

			user, err := provider.Resolve(r.Context(), userID)
			if err != nil {
				slog.Error("identity resolution failed", "error", err)
				http.Error(w, "identity resolution failed", http.StatusInternalServerError)
				return
			}

			if userID == "" {
				// Fresh device: hand the token back so the identity sticks.
				token, err := tokens.Issue(user.ID)
				if err != nil {
					slog.Error("token issue failed", "error", err)
					http.Error(w, "identity resolution failed", http.StatusInternalServerError)
					return
				}
				w.Header().Set(deviceTokenHeader, token)
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
