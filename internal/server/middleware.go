package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cupboard/pkg/types"

	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const contextKeySession contextKey = "session"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// RequireAuth checks for a valid session cookie and adds the session to
// the request context.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(s.config.CookieName)
		if err != nil {
			s.logger.Debug("no session cookie found")
			s.respondError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		var session types.Session
		if err := s.cookie.Decode(s.config.CookieName, cookie.Value, &session); err != nil {
			s.logger.WithError(err).Debug("failed to decode session cookie")
			s.respondError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		if session.Username == "" {
			s.respondError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeySession, session)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route to a single role. Runs inside RequireAuth,
// so a missing session is already a 401 before this fires.
func (s *Service) RequireRole(role types.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := s.sessionFromContext(r.Context())
			if err != nil {
				s.respondError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			if session.Role != role {
				s.logger.WithFields(logrus.Fields{
					"username": session.Username,
					"role":     session.Role,
					"required": role,
				}).Info("role denied")

				msg := "Access denied."
				switch role {
				case types.RoleManager:
					msg = "Access denied. Manager only."
				case types.RoleHelper:
					msg = "Access denied. Helper only."
				}

				s.respondError(w, http.StatusForbidden, msg)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") {
			newPath := strings.TrimSuffix(path, "/")
			newURL := *r.URL
			newURL.Path = newPath

			// Preserve query string
			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) sessionFromContext(ctx context.Context) (types.Session, error) {
	session, ok := ctx.Value(contextKeySession).(types.Session)
	if !ok {
		return types.Session{}, fmt.Errorf("session not found in context")
	}
	return session, nil
}
