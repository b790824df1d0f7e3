package domain

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrEmailTaken         = errors.New("email address is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidSession     = errors.New("session is invalid or expired")
	ErrInvalidResetToken  = errors.New("password reset token is invalid or expired")
	ErrUserNotFound       = errors.New("user not found")
)

// MinPasswordLength is the shortest accepted password, in characters.
const MinPasswordLength = 6

var emailRegex = regexp.MustCompile(`^[A-Z0-9a-z._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,64}$`)

// Email represents a validated email address.
type Email struct {
	value string
}

// NewEmail creates a validated email address.
func NewEmail(value string) (Email, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return Email{}, ErrInvalidEmail
	}
	if !emailRegex.MatchString(value) {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: value}, nil
}

func (e Email) String() string {
	return e.value
}

func (e Email) Equals(other Email) bool {
	return e.value == other.value
}

// Password is a plain-text password that satisfies the password policy.
// It is never stored or logged.
type Password struct {
	value string
}

// NewPassword checks the length policy.
func NewPassword(value string) (Password, error) {
	if utf8.RuneCountInString(value) < MinPasswordLength {
		return Password{}, ErrWeakPassword
	}
	return Password{value: value}, nil
}

// NewConfirmedPassword also requires the confirmation to match.
func NewConfirmedPassword(value, confirmation string) (Password, error) {
	p, err := NewPassword(value)
	if err != nil {
		return Password{}, err
	}
	if value != confirmation {
		return Password{}, ErrPasswordMismatch
	}
	return p, nil
}

// Reveal returns the plain text for hashing or comparison.
func (p Password) Reveal() string { return p.value }

func (p Password) String() string { return "********" }
