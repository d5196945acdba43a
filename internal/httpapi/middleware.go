package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/bluemoxon/bluemoxon/internal/auth"
	"github.com/bluemoxon/bluemoxon/internal/bookstore"
	"github.com/bluemoxon/bluemoxon/internal/domain"
)

const bearerPrefix = "Bearer "

var (
	// errMissingToken is the client-facing error for requests without a bearer token.
	errMissingToken = errors.New("missing bearer token")

	// errInvalidToken is the client-facing error for unknown or expired sessions.
	errInvalidToken = errors.New("invalid or expired session")

	// errInternal is the client-facing error for unexpected failures; details stay in the log.
	errInternal = errors.New("internal server error")

	// errTooManyLogins is the client-facing error for throttled login attempts.
	errTooManyLogins = errors.New("too many login attempts, slow down")
)

// userContextKey is a private type to prevent context key collisions.
type userContextKey struct{}

// UserFromContext returns the authenticated user of the request, if any.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(domain.User)
	return user, ok
}

// requireAuth rejects requests without a valid session token and stores the
// resolved user on the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, errMissingToken)
			return
		}

		user, err := s.authenticator.Verify(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, bookstore.ErrSessionNotFound), errors.Is(err, auth.ErrSessionExpired):
				writeError(w, http.StatusUnauthorized, errInvalidToken)
			default:
				s.logServerError(r, err)
				writeError(w, http.StatusInternalServerError, errInternal)
			}
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from the Authorization header, empty when absent.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) <= len(bearerPrefix) || header[:len(bearerPrefix)] != bearerPrefix {
		return ""
	}

	return header[len(bearerPrefix):]
}

// requestLogger logs every request with method, path, status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.InfoContext(r.Context(), "request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// recoverer converts panics into 500 responses, deriving the logged message
// with FromPanic.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				s.logger.ErrorContext(r.Context(), "panic recovered",
					"panic", FromPanic(recovered),
					"method", r.Method,
					"path", r.URL.Path,
				)
				writeError(w, http.StatusInternalServerError, errInternal)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
