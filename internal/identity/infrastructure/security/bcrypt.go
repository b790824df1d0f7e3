// Package security hashes passwords and signs session tokens.
package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/felixgeelhaar/taskbrief/internal/identity/domain"
)

// BcryptHasher implements domain.PasswordHasher.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher uses cost, or bcrypt.DefaultCost when cost is out of range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password domain.Password) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password.Reveal()), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify returns domain.ErrInvalidCredentials on a mismatch.
func (h *BcryptHasher) Verify(hash string, password domain.Password) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password.Reveal()))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return domain.ErrInvalidCredentials
	}
	return err
}
