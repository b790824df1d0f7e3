package persistence_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskbrief/internal/shared/domain"
	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/database/mongodb"
	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/database/postgres"
	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/domain/task"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/infrastructure/persistence"
)

func intPtr(n int) *int { return &n }

func newTask(t *testing.T, owner string, title string, hours *int) *task.Task {
	t.Helper()
	created, err := task.New(domain.NewOwnerID(owner), task.Draft{
		Title:    title,
		Category: "study",
		Urgency:  "urgent-important",
		Hours:    hours,
		Deadline: "2025-06-01",
		Note:     "note for " + title,
	})
	require.NoError(t, err)
	return created
}

func titles(tasks []*task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title()
	}
	return out
}

// runRepositoryContract exercises the behaviour every task store must share.
func runRepositoryContract(t *testing.T, repo task.Repository) {
	ctx := context.Background()
	alice := domain.NewOwnerID("alice-" + uuid.NewString())
	bob := domain.NewOwnerID("bob-" + uuid.NewString())

	read := newTask(t, alice.String(), "Read", intPtr(2))
	clean := newTask(t, alice.String(), "Clean", nil)
	gym := newTask(t, bob.String(), "Gym", intPtr(1))
	for _, tk := range []*task.Task{read, clean, gym} {
		require.NoError(t, repo.Save(ctx, tk))
	}

	t.Run("lists only the owner's tasks", func(t *testing.T) {
		aliceTasks, err := repo.FindByOwner(ctx, alice)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Read", "Clean"}, titles(aliceTasks))

		bobTasks, err := repo.FindByOwner(ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, []string{"Gym"}, titles(bobTasks))
	})

	t.Run("round trips every field", func(t *testing.T) {
		aliceTasks, err := repo.FindByOwner(ctx, alice)
		require.NoError(t, err)

		var got *task.Task
		for _, tk := range aliceTasks {
			if tk.ID() == read.ID() {
				got = tk
			}
		}
		require.NotNil(t, got)
		assert.Equal(t, alice, got.OwnerID())
		assert.Equal(t, read.Category(), got.Category())
		assert.Equal(t, read.Urgency(), got.Urgency())
		assert.Equal(t, "2", got.EstimatedHours().String())
		assert.Equal(t, "2025-06-01", got.Deadline().String())
		assert.Equal(t, "note for Read", got.Note())
		assert.WithinDuration(t, read.CreatedAt(), got.CreatedAt(), time.Millisecond)
	})

	t.Run("unknown hours survive storage", func(t *testing.T) {
		aliceTasks, err := repo.FindByOwner(ctx, alice)
		require.NoError(t, err)
		for _, tk := range aliceTasks {
			if tk.ID() == clean.ID() {
				assert.True(t, tk.EstimatedHours().IsUnknown())
			}
		}
	})

	t.Run("owner with no tasks gets an empty list", func(t *testing.T) {
		tasks, err := repo.FindByOwner(ctx, domain.NewOwnerID("nobody-"+uuid.NewString()))
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("cannot delete another owner's task", func(t *testing.T) {
		err := repo.DeleteOwned(ctx, gym.ID(), alice)
		assert.ErrorIs(t, err, task.ErrTaskNotFound)

		bobTasks, err := repo.FindByOwner(ctx, bob)
		require.NoError(t, err)
		assert.Len(t, bobTasks, 1)
	})

	t.Run("deletes owned task once", func(t *testing.T) {
		require.NoError(t, repo.DeleteOwned(ctx, read.ID(), alice))

		aliceTasks, err := repo.FindByOwner(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, []string{"Clean"}, titles(aliceTasks))

		err = repo.DeleteOwned(ctx, read.ID(), alice)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestSQLTaskRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	conn, err := sqlite.Open(ctx, database.Config{SQLitePath: filepath.Join(t.TempDir(), "tasks.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.RunSQLite(ctx, conn.(*sqlite.Connection).DB()))

	runRepositoryContract(t, persistence.NewSQLTaskRepository(conn))
}

func TestSQLTaskRepository_SaveJoinsTransaction(t *testing.T) {
	ctx := context.Background()
	conn, err := sqlite.Open(ctx, database.Config{SQLitePath: filepath.Join(t.TempDir(), "tasks.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.RunSQLite(ctx, conn.(*sqlite.Connection).DB()))

	repo := persistence.NewSQLTaskRepository(conn)
	uow := database.NewUnitOfWork(conn)
	tk := newTask(t, "u1", "Read", intPtr(1))

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Save(txCtx, tk))
	require.NoError(t, uow.Rollback(txCtx))

	tasks, err := repo.FindByOwner(ctx, domain.NewOwnerID("u1"))
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestSQLTaskRepository_Postgres(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	if err := migrations.RunPostgres(ctx, url); err != nil {
		t.Skipf("Failed to migrate test database: %v", err)
	}
	conn, err := postgres.Open(ctx, database.Config{Driver: database.DriverPostgres, URL: url})
	if err != nil {
		t.Skipf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	runRepositoryContract(t, persistence.NewSQLTaskRepository(conn))
}

func TestMongoTaskRepository(t *testing.T) {
	url := os.Getenv("TEST_MONGO_URL")
	if url == "" {
		t.Skip("TEST_MONGO_URL not set, skipping integration test")
	}

	ctx := context.Background()
	client, err := mongodb.Connect(ctx, url)
	if err != nil {
		t.Skipf("Failed to connect to test mongodb: %v", err)
	}
	db := mongodb.Database(client, "taskbrief_test_"+uuid.NewString()[:8])
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	repo := persistence.NewMongoTaskRepository(db)
	require.NoError(t, repo.EnsureIndexes(ctx))

	runRepositoryContract(t, repo)
}
