// Package auth is the credential service: account sign-up, sign-in,
// sign-out and password reset, and resolution of a session token to the
// owner id used by every task operation.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskbrief/internal/identity/domain"
	sharedApplication "github.com/felixgeelhaar/taskbrief/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/taskbrief/internal/shared/domain"
	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/outbox"
)

// DefaultResetTokenTTL is how long a password reset token stays valid.
const DefaultResetTokenTTL = time.Hour

// Session is the result of a successful sign-up or sign-in.
type Session struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OwnerID returns the identity the session's tasks are filed under.
func (s Session) OwnerID() sharedDomain.OwnerID {
	return sharedDomain.NewOwnerID(s.UserID.String())
}

// Dependencies groups the collaborators of the Service.
type Dependencies struct {
	Users    domain.UserRepository
	Hasher   domain.PasswordHasher
	Tokens   domain.TokenIssuer
	Sessions domain.SessionStore
	Mailer   domain.Mailer
	Outbox   outbox.Repository
	UoW      sharedApplication.UnitOfWork
	Logger   *slog.Logger

	ResetTokenTTL time.Duration
}

// Service manages accounts and sessions.
type Service struct {
	users    domain.UserRepository
	hasher   domain.PasswordHasher
	tokens   domain.TokenIssuer
	sessions domain.SessionStore
	mailer   domain.Mailer
	outbox   outbox.Repository
	uow      sharedApplication.UnitOfWork
	logger   *slog.Logger
	resetTTL time.Duration
}

// NewService creates an auth service.
func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := deps.ResetTokenTTL
	if ttl <= 0 {
		ttl = DefaultResetTokenTTL
	}
	return &Service{
		users:    deps.Users,
		hasher:   deps.Hasher,
		tokens:   deps.Tokens,
		sessions: deps.Sessions,
		mailer:   deps.Mailer,
		outbox:   deps.Outbox,
		uow:      deps.UoW,
		logger:   logger,
		resetTTL: ttl,
	}
}

// SignUp registers an account and signs it in.
func (s *Service) SignUp(ctx context.Context, email, password, confirmation string) (*Session, error) {
	addr, err := domain.NewEmail(email)
	if err != nil {
		return nil, err
	}
	pw, err := domain.NewConfirmedPassword(password, confirmation)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(pw)
	if err != nil {
		return nil, err
	}

	user := domain.NewUser(addr, hash)
	err = sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		if err := s.users.Create(txCtx, user); err != nil {
			return err
		}
		return s.saveEvents(txCtx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID())
	return s.issue(user)
}

// SignIn checks the credentials and starts a new session. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	addr, err := domain.NewEmail(email)
	if err != nil {
		return nil, err
	}
	pw, err := domain.NewPassword(password)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, addr)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := s.hasher.Verify(user.PasswordHash(), pw); err != nil {
		return nil, err
	}
	return s.issue(user)
}

// SignOut revokes the session behind token.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return err
	}
	if err := s.sessions.Revoke(ctx, claims.SessionID, claims.ExpiresAt); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "user signed out", "user_id", claims.UserID)
	return nil
}

// RequestPasswordReset mails a single-use reset token. An unknown email
// succeeds silently so the endpoint cannot be used to probe for accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	addr, err := domain.NewEmail(email)
	if err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, addr)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.logger.DebugContext(ctx, "password reset for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}
	if err := s.sessions.SaveResetToken(ctx, hashResetToken(token), user.ID(), s.resetTTL); err != nil {
		return err
	}
	return s.mailer.SendPasswordReset(ctx, addr, token)
}

// ResetPassword redeems a reset token and sets a new password. The token is
// consumed last, inside the same unit of work as the password change, so a
// failed store call leaves it redeemable. Existing sessions stay valid until
// they expire.
func (s *Service) ResetPassword(ctx context.Context, token, password, confirmation string) error {
	pw, err := domain.NewConfirmedPassword(password, confirmation)
	if err != nil {
		return err
	}

	tokenHash := hashResetToken(token)
	userID, err := s.sessions.LookupResetToken(ctx, tokenHash)
	if err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(pw)
	if err != nil {
		return err
	}
	user.ChangePasswordHash(hash)

	return sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		if err := s.users.UpdatePasswordHash(txCtx, user.ID(), hash); err != nil {
			return err
		}
		if err := s.saveEvents(txCtx, user); err != nil {
			return err
		}
		consumed, err := s.sessions.ConsumeResetToken(txCtx, tokenHash)
		if err != nil {
			return err
		}
		if consumed != user.ID() {
			return domain.ErrInvalidResetToken
		}
		return nil
	})
}

// CurrentUserID resolves a session token to its owner. Invalid, expired or
// revoked tokens report no owner.
func (s *Service) CurrentUserID(ctx context.Context, token string) (sharedDomain.OwnerID, bool) {
	if token == "" {
		return sharedDomain.OwnerID{}, false
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return sharedDomain.OwnerID{}, false
	}
	revoked, err := s.sessions.IsRevoked(ctx, claims.SessionID)
	if err != nil {
		s.logger.WarnContext(ctx, "session revocation check failed", "error", err)
		return sharedDomain.OwnerID{}, false
	}
	if revoked {
		return sharedDomain.OwnerID{}, false
	}
	return sharedDomain.NewOwnerID(claims.UserID.String()), true
}

func (s *Service) issue(user *domain.User) (*Session, error) {
	token, claims, err := s.tokens.Issue(user.ID())
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:     token,
		UserID:    user.ID(),
		Email:     user.Email().String(),
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

func (s *Service) saveEvents(ctx context.Context, user *domain.User) error {
	events := user.DomainEvents()
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx, user.OwnerID()))
	if err := outbox.SaveEvents(ctx, s.outbox, events); err != nil {
		return err
	}
	user.ClearDomainEvents()
	return nil
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// hashResetToken keeps raw reset tokens out of the session store.
func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
