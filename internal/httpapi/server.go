// Package httpapi is the REST surface of the collection server.
//
// All routes live under /api/v1 and, apart from login and the health probe,
// require a bearer session token. Stats routes are strictly read-only.
// There is deliberately no data-migration route of any kind: administrative
// fixes like publisher retiering run through the CLI, and requests to such
// paths fall through to 404.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/bluemoxon/bluemoxon/internal/auth"
	"github.com/bluemoxon/bluemoxon/internal/bookstore"
	"github.com/bluemoxon/bluemoxon/internal/domain"
	obslog "github.com/bluemoxon/bluemoxon/internal/log"
	"github.com/bluemoxon/bluemoxon/internal/stats"
)

// BookStorage defines the interface needed by the Server for book persistence.
type BookStorage interface {
	InsertBook(ctx context.Context, book domain.Book) (domain.Book, error)
	BookByID(ctx context.Context, id uuid.UUID) (domain.Book, error)
	Books(ctx context.Context, filter bookstore.BookFilter) (domain.Books, error)
	UpdateBook(ctx context.Context, book domain.Book) (domain.Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error
}

// PublisherStorage defines the interface needed by the Server for publisher persistence.
type PublisherStorage interface {
	InsertPublisher(ctx context.Context, publisher domain.Publisher) (domain.Publisher, error)
	Publishers(ctx context.Context) (domain.Publishers, error)
	PublisherByID(ctx context.Context, id uuid.UUID) (domain.Publisher, error)
}

// StatsProvider defines the interface needed by the Server for the stats routes.
type StatsProvider interface {
	Overview(ctx context.Context) (stats.Overview, error)
	ByCondition(ctx context.Context) ([]stats.ConditionBucket, error)
	ByPublisherTier(ctx context.Context) ([]stats.TierBucket, error)
	RecentAcquisitions(ctx context.Context, limit uint) (domain.Books, error)
}

// Authenticator defines the interface needed by the Server for login and
// session verification.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (domain.Session, error)
	Logout(ctx context.Context, token string) error
	Verify(ctx context.Context, token string) (domain.User, error)
}

// Server wires the HTTP routes to their dependencies.
type Server struct {
	books         BookStorage
	publishers    PublisherStorage
	stats         StatsProvider
	authenticator Authenticator
	loginLimiter  *auth.LoginLimiter
	logger        obslog.ContextualLogger
}

// NewServer creates a Server with the provided dependencies.
func NewServer(
	books BookStorage,
	publishers PublisherStorage,
	statsProvider StatsProvider,
	authenticator Authenticator,
	loginLimiter *auth.LoginLimiter,
	logger obslog.ContextualLogger,
) *Server {
	return &Server{
		books:         books,
		publishers:    publishers,
		stats:         statsProvider,
		authenticator: authenticator,
		loginLimiter:  loginLimiter,
		logger:        logger,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(s.recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Post("/auth/logout", s.handleLogout)

			r.Route("/books", func(r chi.Router) {
				r.Get("/", s.handleListBooks)
				r.Post("/", s.handleCreateBook)
				r.Get("/{id}", s.handleGetBook)
				r.Put("/{id}", s.handleUpdateBook)
				r.Delete("/{id}", s.handleDeleteBook)
			})

			r.Route("/publishers", func(r chi.Router) {
				r.Get("/", s.handleListPublishers)
				r.Post("/", s.handleCreatePublisher)
				r.Get("/{id}", s.handleGetPublisher)
			})

			r.Route("/stats", func(r chi.Router) {
				r.Get("/overview", s.handleStatsOverview)
				r.Get("/conditions", s.handleStatsConditions)
				r.Get("/tiers", s.handleStatsTiers)
				r.Get("/recent", s.handleStatsRecent)
			})
		})
	})

	return r
}

// handleHealth is the unauthenticated liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// logServerError logs an unexpected failure with request context.
func (s *Server) logServerError(r *http.Request, err error) {
	s.logger.ErrorContext(r.Context(), "request failed",
		"error", Message(err),
		"method", r.Method,
		"path", r.URL.Path,
	)
}
