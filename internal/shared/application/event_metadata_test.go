package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskbrief/internal/shared/domain"
	"github.com/felixgeelhaar/taskbrief/pkg/observability"
)

type testEvent struct {
	domain.BaseEvent
}

func TestNewEventMetadata(t *testing.T) {
	owner := domain.NewOwnerID("u1")

	t.Run("reuses request correlation id", func(t *testing.T) {
		correlationID := uuid.New()
		ctx := observability.WithCorrelationID(context.Background(), correlationID.String())

		meta := NewEventMetadata(ctx, owner)

		assert.Equal(t, correlationID, meta.CorrelationID)
		assert.Equal(t, "u1", meta.OwnerID)
		assert.NotEqual(t, uuid.Nil, meta.CausationID)
	})

	t.Run("generates correlation id without request context", func(t *testing.T) {
		first := NewEventMetadata(context.Background(), owner)
		second := NewEventMetadata(context.Background(), owner)

		assert.NotEqual(t, uuid.Nil, first.CorrelationID)
		assert.NotEqual(t, first.CorrelationID, second.CorrelationID)
	})
}

func TestApplyEventMetadata(t *testing.T) {
	first := &testEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Task", "tasks.task.created")}
	second := &testEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Task", "tasks.task.deleted")}
	meta := NewEventMetadata(context.Background(), domain.NewOwnerID("u1"))

	ApplyEventMetadata([]domain.DomainEvent{first, second}, meta)

	assert.Equal(t, meta, first.Metadata())
	assert.Equal(t, meta, second.Metadata())

	require.NotPanics(t, func() { ApplyEventMetadata(nil, meta) })
}
