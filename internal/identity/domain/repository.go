package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	// Create inserts a new user and returns ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, user *User) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email Email) (*User, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password Password) (string, error)
	Verify(hash string, password Password) error
}

// SessionClaims is what a verified session token says about its holder.
type SessionClaims struct {
	SessionID string
	UserID    uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies session tokens.
type TokenIssuer interface {
	Issue(userID uuid.UUID) (token string, claims SessionClaims, err error)
	Verify(token string) (SessionClaims, error)
}

// SessionStore keeps the server-side state of stateless tokens: revoked
// session ids and pending password reset tokens.
type SessionStore interface {
	Revoke(ctx context.Context, sessionID string, until time.Time) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
	SaveResetToken(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error
	// LookupResetToken returns the user for tokenHash without redeeming it.
	LookupResetToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
	// ConsumeResetToken returns the user for tokenHash and deletes it.
	// Unknown or expired tokens yield ErrInvalidResetToken.
	ConsumeResetToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
}

// Mailer delivers account emails.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to Email, token string) error
}
