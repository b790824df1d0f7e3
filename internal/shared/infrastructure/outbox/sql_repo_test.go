package outbox_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskbrief/internal/shared/domain"
	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/outbox"
)

type noteCreated struct {
	domain.BaseEvent
	Title string `json:"title"`
}

func newSQLRepo(t *testing.T) (*outbox.SQLRepository, database.Connection) {
	t.Helper()
	ctx := context.Background()
	conn, err := sqlite.Open(ctx, database.Config{SQLitePath: filepath.Join(t.TempDir(), "outbox.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.RunSQLite(ctx, conn.(*sqlite.Connection).DB()))
	return outbox.NewSQLRepository(conn), conn
}

func TestSQLRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo, _ := newSQLRepo(t)

	event := &noteCreated{BaseEvent: domain.NewBaseEvent(uuid.New(), "Task", "tasks.task.created"), Title: "Read"}
	event.SetMetadata(domain.EventMetadata{CorrelationID: uuid.New(), CausationID: uuid.New(), OwnerID: "u1"})
	require.NoError(t, outbox.SaveEvents(ctx, repo, []domain.DomainEvent{event}))

	pending, err := repo.GetPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	msg := pending[0]
	assert.NotZero(t, msg.ID)
	assert.Equal(t, event.EventID(), msg.EventID)
	assert.Equal(t, event.AggregateID(), msg.AggregateID)
	assert.Equal(t, "tasks.task.created", msg.RoutingKey)
	assert.JSONEq(t, `{"title":"Read"}`, string(msg.Payload))
	assert.Contains(t, string(msg.Metadata), `"owner_id":"u1"`)
	assert.False(t, msg.IsPublished())

	require.NoError(t, repo.MarkFailed(ctx, msg.ID, "broker down", time.Now().Add(time.Hour)))
	pending, err = repo.GetPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "retry time has not passed")

	require.NoError(t, repo.MarkPublished(ctx, msg.ID))
	removed, err := repo.DeleteOld(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestSQLRepository_DeadLettered(t *testing.T) {
	ctx := context.Background()
	repo, _ := newSQLRepo(t)

	event := &noteCreated{BaseEvent: domain.NewBaseEvent(uuid.New(), "Task", "tasks.task.deleted")}
	require.NoError(t, outbox.SaveEvents(ctx, repo, []domain.DomainEvent{event}))

	pending, err := repo.GetPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, repo.MarkDead(ctx, pending[0].ID, "poison"))

	pending, err = repo.GetPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSQLRepository_JoinsUnitOfWork(t *testing.T) {
	ctx := context.Background()
	repo, conn := newSQLRepo(t)
	uow := database.NewUnitOfWork(conn)

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	event := &noteCreated{BaseEvent: domain.NewBaseEvent(uuid.New(), "Task", "tasks.task.created")}
	require.NoError(t, outbox.SaveEvents(txCtx, repo, []domain.DomainEvent{event}))
	require.NoError(t, uow.Rollback(txCtx))

	pending, err := repo.GetPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
