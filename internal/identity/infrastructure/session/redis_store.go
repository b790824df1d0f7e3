// Package session keeps revoked session ids and pending reset tokens.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/taskbrief/internal/identity/domain"
)

const (
	revokedPrefix = "taskbrief:session:revoked:"
	resetPrefix   = "taskbrief:reset:"
)

// RedisStore implements domain.SessionStore on Redis. Every key carries a
// TTL so revoked ids disappear once the token would have expired anyway.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Revoke(ctx context.Context, sessionID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedPrefix+sessionID, 1, ttl).Err()
}

func (s *RedisStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedPrefix+sessionID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) SaveResetToken(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error {
	return s.client.Set(ctx, resetPrefix+tokenHash, userID.String(), ttl).Err()
}

func (s *RedisStore) LookupResetToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	val, err := s.client.Get(ctx, resetPrefix+tokenHash).Result()
	return parseResetValue(val, err)
}

// ConsumeResetToken uses GETDEL so a token can be redeemed only once even
// with concurrent requests.
func (s *RedisStore) ConsumeResetToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	val, err := s.client.GetDel(ctx, resetPrefix+tokenHash).Result()
	return parseResetValue(val, err)
}

func parseResetValue(val string, err error) (uuid.UUID, error) {
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, domain.ErrInvalidResetToken
	}
	if err != nil {
		return uuid.Nil, err
	}
	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidResetToken
	}
	return userID, nil
}

// Ping checks the connection for health reporting.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
