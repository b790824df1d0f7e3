package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskbrief/internal/identity/domain"
	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/database"
)

// SQLUserRepository handles persistence for users on SQLite or Postgres.
type SQLUserRepository struct {
	conn database.Connection
}

// NewSQLUserRepository creates a new SQLUserRepository.
func NewSQLUserRepository(conn database.Connection) *SQLUserRepository {
	return &SQLUserRepository{conn: conn}
}

const insertUser = `INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`

// Create inserts a user. The unique index on email turns a concurrent
// duplicate sign-up into ErrEmailTaken.
func (r *SQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, insertUser,
		user.ID().String(),
		user.Email().String(),
		user.PasswordHash(),
		user.CreatedAt().UTC(),
	)
	if database.IsUniqueViolation(err) {
		return domain.ErrEmailTaken
	}
	return err
}

const updatePasswordHash = `UPDATE users SET password_hash = ? WHERE id = ?`

func (r *SQLUserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	result, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, updatePasswordHash, hash, id.String())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

const selectUserColumns = `SELECT id, email, password_hash, created_at FROM users`

// FindByID retrieves a user by their ID.
func (r *SQLUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx, selectUserColumns+` WHERE id = ?`, id.String())
	return scanUser(row)
}

// FindByEmail retrieves a user by their normalized email.
func (r *SQLUserRepository) FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx, selectUserColumns+` WHERE email = ?`, email.String())
	return scanUser(row)
}

func scanUser(row database.Row) (*domain.User, error) {
	var (
		id, emailText, hash string
		createdAt           time.Time
	)
	if err := row.Scan(&id, &emailText, &hash, &createdAt); err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("user id %q: %w", id, err)
	}
	email, err := domain.NewEmail(emailText)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id, err)
	}
	return domain.RestoreUser(userID, email, hash, createdAt), nil
}
