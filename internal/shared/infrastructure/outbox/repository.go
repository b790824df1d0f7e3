package outbox

import (
	"context"
	"time"
)

// Repository persists outbox messages.
type Repository interface {
	// SaveBatch stores messages, joining the transaction in ctx when present.
	SaveBatch(ctx context.Context, msgs []*Message) error

	// GetPending returns messages that are neither published nor dead-lettered
	// and whose retry time has passed, oldest first.
	GetPending(ctx context.Context, limit int) ([]*Message, error)

	MarkPublished(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error
	MarkDead(ctx context.Context, id int64, reason string) error

	// DeleteOld removes messages published before cutoff.
	DeleteOld(ctx context.Context, cutoff time.Time) (int64, error)
}
