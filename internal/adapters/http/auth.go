package httpadapter

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/vlasenko/incident-analyst/internal/core/auth"
	"github.com/vlasenko/incident-analyst/internal/core/domain"
	"github.com/vlasenko/incident-analyst/internal/core/ports"
)

// authMiddleware resolves the bearer token once per request and injects
// the result. A missing or rejected token yields the anonymous marker,
// not an early failure: whether anonymity is acceptable is each
// operation's decision, not the transport's.
func authMiddleware(identity ports.IdentityProvider, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r.WithContext(auth.Inject(r.Context(), auth.Anonymous())))
			return
		}

		user, err := identity.UserForToken(r.Context(), token)
		switch {
		case err == nil:
			next.ServeHTTP(w, r.WithContext(auth.Inject(r.Context(), auth.Authenticated(user))))
		case domain.IsKind(err, domain.ErrUnauthorized):
			next.ServeHTTP(w, r.WithContext(auth.Inject(r.Context(), auth.Anonymous())))
		default:
			slog.Error("identity_resolution_failed",
				"request_id", requestIDFromContext(r.Context()),
				"error", err,
			)
			writeServerError(w, http.StatusServiceUnavailable, "identity service unavailable")
		}
	})
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
