package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "speakerqueue/internal/delivery/http/helpers"
	"speakerqueue/internal/domain"
)

type contextKey string

const moderatorIDKey contextKey = "moderatorID"

// SetModeratorID returns a context with the moderator ID set. Used by auth middleware.
func SetModeratorID(ctx context.Context, moderatorID string) context.Context {
	return context.WithValue(ctx, moderatorIDKey, moderatorID)
}

// ModeratorIDFromContext returns the authenticated moderator ID from the context, if present.
func ModeratorIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(moderatorIDKey).(string)
	return id, ok
}

// bearerToken extracts the token from the Authorization header, falling back
// to the access_token query parameter. The fallback exists for EventSource
// clients, which cannot set request headers.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if strings.HasPrefix(auth, prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}
	return strings.TrimSpace(r.URL.Query().Get("access_token"))
}

// RequireAuth returns a wrapper that validates the Bearer token and sets the
// moderator ID in the request context. If the token is missing or invalid, it
// responds with 401 and does not call next.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing token")
				return
			}
			moderatorID, err := verifier.Verify(token)
			if err != nil {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			r = r.WithContext(SetModeratorID(r.Context(), moderatorID))
			next(w, r)
		}
	}
}
