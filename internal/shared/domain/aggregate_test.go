package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/taskbrief/internal/shared/domain"
)

type noteAggregate struct {
	domain.BaseAggregateRoot
}

type noteCreated struct {
	domain.BaseEvent
}

func TestNewBaseAggregateRoot(t *testing.T) {
	agg := domain.NewBaseAggregateRoot()

	assert.NotEqual(t, uuid.Nil, agg.ID())
	assert.WithinDuration(t, time.Now().UTC(), agg.CreatedAt(), time.Second)
	assert.Empty(t, agg.DomainEvents())
}

func TestBaseAggregateRoot_Events(t *testing.T) {
	agg := &noteAggregate{BaseAggregateRoot: domain.NewBaseAggregateRoot()}
	first := noteCreated{BaseEvent: domain.NewBaseEvent(agg.ID(), "Note", "notes.note.created")}
	second := noteCreated{BaseEvent: domain.NewBaseEvent(agg.ID(), "Note", "notes.note.created")}

	agg.Raise(first)
	agg.Raise(second)

	events := agg.DomainEvents()
	assert.Len(t, events, 2)
	assert.Equal(t, first.EventID(), events[0].EventID())
	assert.NotEqual(t, events[0].EventID(), events[1].EventID())
	assert.Equal(t, "notes.note.created", events[0].RoutingKey())
	assert.Equal(t, agg.ID(), events[0].AggregateID())

	agg.ClearDomainEvents()
	assert.Empty(t, agg.DomainEvents())
}

func TestRehydrateBaseAggregateRoot(t *testing.T) {
	id := uuid.New()
	created := time.Date(2025, 6, 1, 8, 0, 0, 0, time.FixedZone("CST", 8*3600))

	agg := domain.RehydrateBaseAggregateRoot(domain.RehydrateBaseEntity(id, created))

	assert.Equal(t, id, agg.ID())
	assert.True(t, created.Equal(agg.CreatedAt()))
	assert.Equal(t, time.UTC, agg.CreatedAt().Location())
	assert.Empty(t, agg.DomainEvents())
}

func TestBaseEvent_SetMetadata(t *testing.T) {
	event := domain.NewBaseEvent(uuid.New(), "Note", "notes.note.deleted")
	meta := domain.EventMetadata{CorrelationID: uuid.New(), CausationID: uuid.New(), OwnerID: "u1"}

	event.SetMetadata(meta)

	assert.Equal(t, meta, event.Metadata())
}

func TestOwnerID(t *testing.T) {
	t.Run("trims whitespace", func(t *testing.T) {
		assert.Equal(t, "u1", domain.NewOwnerID("  u1 ").String())
	})

	t.Run("blank is empty", func(t *testing.T) {
		assert.True(t, domain.NewOwnerID("   ").IsEmpty())
		assert.True(t, domain.OwnerID{}.IsEmpty())
	})

	t.Run("equality is by value", func(t *testing.T) {
		assert.True(t, domain.NewOwnerID("u1").Equals(domain.NewOwnerID("u1")))
		assert.False(t, domain.NewOwnerID("u1").Equals(domain.NewOwnerID("u2")))
	})
}
