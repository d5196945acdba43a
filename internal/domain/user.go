package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrBlankEmail is returned when a user is created without an email address.
	ErrBlankEmail = errors.New("user email must not be blank")

	// ErrBlankPasswordHash is returned when a user is created without a password hash.
	ErrBlankPasswordHash = errors.New("user password hash must not be blank")
)

// User is an account that may sign in to the collection.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Admin        bool      `json:"admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate checks the invariants that hold for every stored user.
func (u User) Validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return ErrBlankEmail
	}

	if u.PasswordHash == "" {
		return ErrBlankPasswordHash
	}

	return nil
}

// Session is a server-side login session identified by an opaque token.
type Session struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry at the given instant.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
