package outbox

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/database"
)

// SQLRepository stores messages in the outbox_messages table of either SQL backend.
type SQLRepository struct {
	conn database.Connection
}

func NewSQLRepository(conn database.Connection) *SQLRepository {
	return &SQLRepository{conn: conn}
}

const insertMessage = `
INSERT INTO outbox_messages (event_id, aggregate_type, aggregate_id, routing_key, payload, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id`

func (r *SQLRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	for _, msg := range msgs {
		var metadata *string
		if len(msg.Metadata) > 0 {
			s := string(msg.Metadata)
			metadata = &s
		}

		err := exec.QueryRow(ctx, insertMessage,
			msg.EventID.String(),
			msg.AggregateType,
			msg.AggregateID.String(),
			msg.RoutingKey,
			string(msg.Payload),
			metadata,
			msg.CreatedAt.UTC(),
		).Scan(&msg.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

const selectPending = `
SELECT id, event_id, aggregate_type, aggregate_id, routing_key, payload, metadata, created_at,
       published_at, next_retry_at, retry_count, last_error, dead_lettered_at, dead_letter_reason
FROM outbox_messages
WHERE published_at IS NULL
  AND dead_lettered_at IS NULL
  AND (next_retry_at IS NULL OR next_retry_at <= ?)
ORDER BY id
LIMIT ?`

func (r *SQLRepository) GetPending(ctx context.Context, limit int) ([]*Message, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, selectPending, time.Now().UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (r *SQLRepository) MarkPublished(ctx context.Context, id int64) error {
	return r.exec(ctx, `UPDATE outbox_messages SET published_at = ? WHERE id = ?`, time.Now().UTC(), id)
}

func (r *SQLRepository) MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error {
	return r.exec(ctx,
		`UPDATE outbox_messages SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ? WHERE id = ?`,
		reason, nextRetryAt.UTC(), id)
}

func (r *SQLRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	return r.exec(ctx,
		`UPDATE outbox_messages SET retry_count = retry_count + 1, dead_lettered_at = ?, dead_letter_reason = ? WHERE id = ?`,
		time.Now().UTC(), reason, id)
}

func (r *SQLRepository) DeleteOld(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`DELETE FROM outbox_messages WHERE published_at IS NOT NULL AND published_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLRepository) exec(ctx context.Context, query string, args ...any) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, query, args...)
	return err
}

func scanMessage(row database.Row) (*Message, error) {
	var (
		msg                    Message
		eventID, aggregateID   string
		payload                string
		metadata               sql.NullString
		lastError, deadReason  sql.NullString
		publishedAt, nextRetry sql.NullTime
		deadAt                 sql.NullTime
	)
	err := row.Scan(&msg.ID, &eventID, &msg.AggregateType, &aggregateID, &msg.RoutingKey, &payload, &metadata,
		&msg.CreatedAt, &publishedAt, &nextRetry, &msg.RetryCount, &lastError, &deadAt, &deadReason)
	if err != nil {
		return nil, err
	}

	msg.EventID, _ = uuid.Parse(eventID)
	msg.AggregateID, _ = uuid.Parse(aggregateID)
	msg.Payload = []byte(payload)
	if metadata.Valid {
		msg.Metadata = []byte(metadata.String)
	}
	msg.PublishedAt = timePtr(publishedAt)
	msg.NextRetryAt = timePtr(nextRetry)
	msg.DeadLetteredAt = timePtr(deadAt)
	msg.LastError = stringPtr(lastError)
	msg.DeadLetterReason = stringPtr(deadReason)
	return &msg, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
