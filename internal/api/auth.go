package api

import (
	"context"
	"net/http"
	"strings"

	"tallergo/internal/models"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionFromContext returns the authenticated session attached by the
// auth middleware, or nil on public routes.
func SessionFromContext(ctx context.Context) *models.Session {
	session, _ := ctx.Value(sessionContextKey).(*models.Session)
	return session
}

func withSession(ctx context.Context, session *models.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// sessionToken extracts the token from X-Session-Token or a Bearer
// Authorization header.
func sessionToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get("X-Session-Token")); token != "" {
		return token
	}
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

// requireAdmin wraps a handler: the request must carry a live session
// with the admin role. The session lands in the request context.
func (s *HTTPServer) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "session token is required")
			return
		}

		session, err := s.auth.Authenticate(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if session == nil {
			writeError(w, http.StatusUnauthorized, "session is invalid or expired")
			return
		}
		if session.Role != models.RoleAdmin {
			writeError(w, http.StatusForbidden, "admin role required")
			return
		}

		next(w, r.WithContext(withSession(r.Context(), session)))
	}
}
