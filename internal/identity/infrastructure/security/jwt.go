package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskbrief/internal/identity/domain"
)

// Issuer is the iss claim of every session token.
const Issuer = "taskbrief"

// JWTIssuer signs HS256 session tokens whose subject is the user id.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTIssuer creates an issuer. The secret must be at least 32 bytes.
func NewJWTIssuer(secret string, ttl time.Duration) (*JWTIssuer, error) {
	if len(secret) < 32 {
		return nil, errors.New("jwt secret must be at least 32 bytes")
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue creates a token for userID with a fresh session id.
func (i *JWTIssuer) Issue(userID uuid.UUID) (string, domain.SessionClaims, error) {
	now := i.now().UTC().Truncate(time.Second)
	claims := domain.SessionClaims{
		SessionID: uuid.NewString(),
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(i.ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   userID.String(),
		ID:        claims.SessionID,
		IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", domain.SessionClaims{}, err
	}
	return signed, claims, nil
}

// Verify checks signature, issuer and expiry. Any failure is
// domain.ErrInvalidSession.
func (i *JWTIssuer) Verify(tokenString string) (domain.SessionClaims, error) {
	registered := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, registered,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return domain.SessionClaims{}, domain.ErrInvalidSession
	}

	userID, err := uuid.Parse(registered.Subject)
	if err != nil || registered.ID == "" {
		return domain.SessionClaims{}, domain.ErrInvalidSession
	}

	claims := domain.SessionClaims{
		SessionID: registered.ID,
		UserID:    userID,
		ExpiresAt: registered.ExpiresAt.Time,
	}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	return claims, nil
}
