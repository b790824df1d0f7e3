package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskbrief/internal/identity/domain"
	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/database"
)

// SQLStore implements domain.SessionStore on the relational database so
// revocations and reset tokens outlive the process that created them.
// Statements join the transaction carried by ctx, if any.
type SQLStore struct {
	conn database.Connection
	now  func() time.Time
}

func NewSQLStore(conn database.Connection) *SQLStore {
	return &SQLStore{conn: conn, now: time.Now}
}

const upsertRevokedSession = `INSERT INTO revoked_sessions (session_id, expires_at) VALUES (?, ?)
ON CONFLICT (session_id) DO UPDATE SET expires_at = excluded.expires_at`

func (s *SQLStore) Revoke(ctx context.Context, sessionID string, until time.Time) error {
	if !until.After(s.now()) {
		return nil
	}
	_, err := database.ExecutorFromContext(ctx, s.conn).Exec(ctx, upsertRevokedSession, sessionID, until.UTC())
	return err
}

func (s *SQLStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	var until time.Time
	err := database.ExecutorFromContext(ctx, s.conn).
		QueryRow(ctx, `SELECT expires_at FROM revoked_sessions WHERE session_id = ?`, sessionID).
		Scan(&until)
	if database.IsNoRows(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return until.After(s.now()), nil
}

func (s *SQLStore) SaveResetToken(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error {
	_, err := database.ExecutorFromContext(ctx, s.conn).Exec(ctx,
		`INSERT INTO password_reset_tokens (token_hash, user_id, expires_at) VALUES (?, ?, ?)`,
		tokenHash, userID.String(), s.now().Add(ttl).UTC())
	return err
}

func (s *SQLStore) LookupResetToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	var (
		userID    string
		expiresAt time.Time
	)
	err := database.ExecutorFromContext(ctx, s.conn).
		QueryRow(ctx, `SELECT user_id, expires_at FROM password_reset_tokens WHERE token_hash = ?`, tokenHash).
		Scan(&userID, &expiresAt)
	return s.resetOwner(userID, expiresAt, err)
}

// ConsumeResetToken deletes and returns in one statement, so two
// concurrent redemptions cannot both see the row.
func (s *SQLStore) ConsumeResetToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	var (
		userID    string
		expiresAt time.Time
	)
	err := database.ExecutorFromContext(ctx, s.conn).
		QueryRow(ctx, `DELETE FROM password_reset_tokens WHERE token_hash = ? RETURNING user_id, expires_at`, tokenHash).
		Scan(&userID, &expiresAt)
	return s.resetOwner(userID, expiresAt, err)
}

// DeleteExpired drops revocations and reset tokens that can no longer match.
func (s *SQLStore) DeleteExpired(ctx context.Context) (int64, error) {
	exec := database.ExecutorFromContext(ctx, s.conn)
	now := s.now().UTC()

	var total int64
	for _, table := range []string{"revoked_sessions", "password_reset_tokens"} {
		result, err := exec.Exec(ctx, `DELETE FROM `+table+` WHERE expires_at <= ?`, now)
		if err != nil {
			return total, fmt.Errorf("delete expired %s: %w", table, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (s *SQLStore) resetOwner(userID string, expiresAt time.Time, err error) (uuid.UUID, error) {
	if database.IsNoRows(err) {
		return uuid.Nil, domain.ErrInvalidResetToken
	}
	if err != nil {
		return uuid.Nil, err
	}
	if !expiresAt.After(s.now()) {
		return uuid.Nil, domain.ErrInvalidResetToken
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("reset token user id %q: %w", userID, err)
	}
	return id, nil
}
