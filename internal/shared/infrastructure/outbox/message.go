// Package outbox stores domain events in the same transaction as the state
// change that raised them, and relays them to the event bus afterwards.
package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskbrief/internal/shared/domain"
)

// Message is one stored event.
type Message struct {
	ID               int64
	EventID          uuid.UUID
	AggregateType    string
	AggregateID      uuid.UUID
	RoutingKey       string
	Payload          json.RawMessage
	Metadata         json.RawMessage
	CreatedAt        time.Time
	PublishedAt      *time.Time
	NextRetryAt      *time.Time
	RetryCount       int
	LastError        *string
	DeadLetteredAt   *time.Time
	DeadLetterReason *string
}

// NewMessage serializes event. The payload is the JSON form of the concrete
// event type, so events expose their data through exported fields.
func NewMessage(event domain.DomainEvent) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	metadata, err := json.Marshal(event.Metadata())
	if err != nil {
		return nil, err
	}

	return &Message{
		EventID:       event.EventID(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		RoutingKey:    event.RoutingKey(),
		Payload:       payload,
		Metadata:      metadata,
		CreatedAt:     event.OccurredAt(),
	}, nil
}

// IsPublished returns true once the message reached the broker.
func (m *Message) IsPublished() bool {
	return m.PublishedAt != nil
}

// SaveEvents converts events to messages and stores them with repo.
// Called inside the unit of work of the command that raised them.
func SaveEvents(ctx context.Context, repo Repository, events []domain.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]*Message, 0, len(events))
	for _, event := range events {
		msg, err := NewMessage(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	return repo.SaveBatch(ctx, msgs)
}
