package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/taskbrief/internal/shared/domain"
	"github.com/google/uuid"
)

// User is a registered account. Its id is the owner id stamped on tasks.
type User struct {
	sharedDomain.BaseAggregateRoot
	email        Email
	passwordHash string
}

// NewUser registers an account with an already hashed password.
func NewUser(email Email, passwordHash string) *User {
	u := &User{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		email:             email,
		passwordHash:      passwordHash,
	}

	u.Raise(NewUserRegistered(u.ID(), email.String()))

	return u
}

// RestoreUser rebuilds a user from storage.
func RestoreUser(id uuid.UUID, email Email, passwordHash string, createdAt time.Time) *User {
	return &User{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(sharedDomain.RehydrateBaseEntity(id, createdAt)),
		email:             email,
		passwordHash:      passwordHash,
	}
}

func (u *User) Email() Email         { return u.email }
func (u *User) PasswordHash() string { return u.passwordHash }

// OwnerID is the identity tasks of this user are filed under.
func (u *User) OwnerID() sharedDomain.OwnerID {
	return sharedDomain.NewOwnerID(u.ID().String())
}

// ChangePasswordHash replaces the stored hash after a password reset.
func (u *User) ChangePasswordHash(hash string) {
	u.passwordHash = hash
	u.Raise(NewPasswordReset(u.ID()))
}
