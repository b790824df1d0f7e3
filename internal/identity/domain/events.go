package domain

import (
	sharedDomain "github.com/felixgeelhaar/taskbrief/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType = "User"

	RoutingKeyUserRegistered = "identity.user.registered"
	RoutingKeyPasswordReset  = "identity.user.password_reset"
)

// UserRegistered is emitted when a new account signs up.
type UserRegistered struct {
	sharedDomain.BaseEvent
	Email string `json:"email"`
}

// NewUserRegistered creates a UserRegistered event.
func NewUserRegistered(userID uuid.UUID, email string) *UserRegistered {
	return &UserRegistered{
		BaseEvent: sharedDomain.NewBaseEvent(userID, AggregateType, RoutingKeyUserRegistered),
		Email:     email,
	}
}

// PasswordReset is emitted when a reset token was redeemed.
type PasswordReset struct {
	sharedDomain.BaseEvent
}

// NewPasswordReset creates a PasswordReset event.
func NewPasswordReset(userID uuid.UUID) *PasswordReset {
	return &PasswordReset{
		BaseEvent: sharedDomain.NewBaseEvent(userID, AggregateType, RoutingKeyPasswordReset),
	}
}
