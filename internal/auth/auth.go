// Package auth implements first-party authentication for the collection
// server: bcrypt password verification, opaque server-side session tokens
// with a sliding lifetime, and per-IP login throttling.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bluemoxon/bluemoxon/internal/bookstore"
	"github.com/bluemoxon/bluemoxon/internal/domain"
)

const (
	// DefaultSessionTTL is the session lifetime granted on login.
	DefaultSessionTTL = 7 * 24 * time.Hour

	// DefaultBcryptCost is the work factor for new password hashes.
	DefaultBcryptCost = 12
)

var (
	// ErrInvalidCredentials is returned for unknown users and wrong passwords alike,
	// so responses do not reveal which of the two it was.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrSessionExpired is returned when a presented session token has passed its expiry.
	ErrSessionExpired = errors.New("session expired")
)

// dummyHash is compared against when the user is unknown, so that login
// latency does not reveal whether an email exists.
var dummyHash = []byte("$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW")

// SessionStorage defines the persistence interface needed by the Service.
type SessionStorage interface {
	UserByEmail(ctx context.Context, email string) (domain.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	InsertSession(ctx context.Context, session domain.Session) error
	SessionByToken(ctx context.Context, token string) (domain.Session, error)
	TouchSession(ctx context.Context, token string, expiresAt time.Time) error
	DeleteSession(ctx context.Context, token string) error
	PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Service handles login, logout and session verification.
type Service struct {
	storage    SessionStorage
	sessionTTL time.Duration
	now        func() time.Time
}

// Option defines a functional option for configuring a Service.
type Option func(*Service)

// WithSessionTTL overrides the session lifetime.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.sessionTTL = ttl
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service with the provided storage dependency and options.
func NewService(storage SessionStorage, opts ...Option) *Service {
	s := &Service{
		storage:    storage,
		sessionTTL: DefaultSessionTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Login verifies the credentials and issues a new session.
// Unknown users and wrong passwords both yield ErrInvalidCredentials;
// an unknown user still costs one bcrypt comparison.
func (s *Service) Login(ctx context.Context, email, password string) (domain.Session, error) {
	ctx = bookstore.WithStrongConsistency(ctx)

	user, lookupErr := s.storage.UserByEmail(ctx, email)
	if lookupErr != nil {
		if errors.Is(lookupErr, bookstore.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return domain.Session{}, ErrInvalidCredentials
		}

		return domain.Session{}, lookupErr
	}

	if compareErr := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); compareErr != nil {
		return domain.Session{}, ErrInvalidCredentials
	}

	session := domain.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.sessionTTL),
	}

	if insertErr := s.storage.InsertSession(ctx, session); insertErr != nil {
		return domain.Session{}, insertErr
	}

	return session, nil
}

// Logout removes the session for the given token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.storage.DeleteSession(bookstore.WithStrongConsistency(ctx), token)
}

// Verify resolves a session token to its user.
//
// Session lifetime slides: a verified session whose remaining lifetime has
// dropped below half the TTL gets its expiry pushed out to a full TTL again,
// so sessions in continuous use never expire. The half-TTL threshold keeps
// the write off the hot path of every single request.
//
// Hitting an expired session reports ErrSessionExpired and lazily purges
// every expired session in passing; there is no background sweeper.
func (s *Service) Verify(ctx context.Context, token string) (domain.User, error) {
	ctx = bookstore.WithStrongConsistency(ctx)

	session, sessionErr := s.storage.SessionByToken(ctx, token)
	if sessionErr != nil {
		return domain.User{}, sessionErr
	}

	now := s.now()

	if session.Expired(now) {
		if _, purgeErr := s.storage.PurgeExpiredSessions(ctx, now); purgeErr != nil {
			_ = s.storage.DeleteSession(ctx, session.Token)
		}

		return domain.User{}, ErrSessionExpired
	}

	if session.ExpiresAt.Sub(now) < s.sessionTTL/2 {
		if touchErr := s.storage.TouchSession(ctx, session.Token, now.Add(s.sessionTTL)); touchErr != nil {
			return domain.User{}, touchErr
		}
	}

	return s.storage.UserByID(ctx, session.UserID)
}

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), DefaultBcryptCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}
