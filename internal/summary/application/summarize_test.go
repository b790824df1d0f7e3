package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	shared "github.com/felixgeelhaar/taskbrief/internal/shared/domain"
	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/taskbrief/internal/summary/domain"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/domain/task"
	"github.com/felixgeelhaar/taskbrief/pkg/observability"
)

type mockTaskRepo struct {
	mock.Mock
}

func (m *mockTaskRepo) Save(ctx context.Context, t *task.Task) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTaskRepo) FindByOwner(ctx context.Context, owner shared.OwnerID) ([]*task.Task, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *mockTaskRepo) DeleteOwned(ctx context.Context, id uuid.UUID, owner shared.OwnerID) error {
	return m.Called(ctx, id, owner).Error(0)
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type recordingOutbox struct {
	saved []*outbox.Message
	err   error
}

func (r *recordingOutbox) SaveBatch(_ context.Context, msgs []*outbox.Message) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, msgs...)
	return nil
}

func (r *recordingOutbox) GetPending(context.Context, int) ([]*outbox.Message, error) {
	return nil, nil
}
func (r *recordingOutbox) MarkPublished(context.Context, int64) error { return nil }
func (r *recordingOutbox) MarkFailed(context.Context, int64, string, time.Time) error {
	return nil
}
func (r *recordingOutbox) MarkDead(context.Context, int64, string) error { return nil }
func (r *recordingOutbox) DeleteOld(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func intPtr(n int) *int { return &n }

func scenarioTasks(t *testing.T, owner shared.OwnerID) []*task.Task {
	t.Helper()
	read, err := task.New(owner, task.Draft{
		Title: "Read", Category: "Study", Urgency: "urgent-important",
		Hours: intPtr(2), Deadline: "2025-06-01",
	})
	require.NoError(t, err)
	clean, err := task.New(owner, task.Draft{
		Title: "Clean", Category: "Home", Urgency: "not-urgent-important",
		Hours: intPtr(1), Deadline: "2025-06-02", Note: "kitchen",
	})
	require.NoError(t, err)
	return []*task.Task{read, clean}
}

func TestSummarizeHandler_Handle(t *testing.T) {
	owner := shared.NewOwnerID("u1")

	t.Run("summarizes owner's tasks", func(t *testing.T) {
		repo := new(mockTaskRepo)
		gen := new(mockGenerator)
		box := &recordingOutbox{}
		metrics := observability.NewInMemoryMetrics()

		tasks := scenarioTasks(t, owner)
		repo.On("FindByOwner", mock.Anything, owner).Return(tasks, nil)
		expectedPrompt := domain.BuildPrompt(domain.RenderLine(tasks[0]) + "\n" + domain.RenderLine(tasks[1]))
		gen.On("Generate", mock.Anything, expectedPrompt).Return("**Plan**: read, then clean.", nil).Once()

		handler := NewSummarizeHandler(repo, gen, box, nil, metrics)
		summary, err := handler.Handle(context.Background(), SummarizeQuery{OwnerID: owner})

		require.NoError(t, err)
		assert.Equal(t, "**Plan**: read, then clean.", summary.Text)
		assert.Equal(t, 2, summary.TaskCount)
		assert.Equal(t, expectedPrompt, summary.Prompt)
		assert.Contains(t, summary.Prompt, "Task: Read,")
		assert.Contains(t, summary.Prompt, "Note: kitchen")
		gen.AssertNumberOfCalls(t, "Generate", 1)

		require.Len(t, box.saved, 1)
		assert.Equal(t, domain.RoutingKeyGenerated, box.saved[0].RoutingKey)
		assert.Contains(t, string(box.saved[0].Metadata), `"owner_id":"u1"`)
		assert.Equal(t, int64(1), metrics.CounterValue(observability.MetricSummariesGenerated))
	})

	t.Run("no tasks still calls generator once with empty digest", func(t *testing.T) {
		repo := new(mockTaskRepo)
		gen := new(mockGenerator)
		repo.On("FindByOwner", mock.Anything, owner).Return([]*task.Task{}, nil)
		gen.On("Generate", mock.Anything, domain.PromptPrefix).Return("Nothing planned today.", nil).Once()

		summary, err := NewSummarizeHandler(repo, gen, nil, nil, nil).Handle(context.Background(), SummarizeQuery{OwnerID: owner})

		require.NoError(t, err)
		assert.Equal(t, 0, summary.TaskCount)
		assert.Equal(t, domain.PromptPrefix, summary.Prompt)
		gen.AssertNumberOfCalls(t, "Generate", 1)
	})

	t.Run("unauthenticated makes no calls", func(t *testing.T) {
		repo := new(mockTaskRepo)
		gen := new(mockGenerator)
		metrics := observability.NewInMemoryMetrics()

		_, err := NewSummarizeHandler(repo, gen, nil, nil, metrics).Handle(context.Background(), SummarizeQuery{})

		assert.ErrorIs(t, err, shared.ErrUnauthenticated)
		repo.AssertNotCalled(t, "FindByOwner", mock.Anything, mock.Anything)
		gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
		assert.Zero(t, metrics.CounterValue(observability.MetricSummariesFailed))
	})

	t.Run("store failure is upstream", func(t *testing.T) {
		repo := new(mockTaskRepo)
		gen := new(mockGenerator)
		repo.On("FindByOwner", mock.Anything, owner).Return(nil, errors.New("unavailable"))

		_, err := NewSummarizeHandler(repo, gen, nil, nil, nil).Handle(context.Background(), SummarizeQuery{OwnerID: owner})

		var upstream *shared.UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, SourceTaskStore, upstream.Source)
		gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})

	t.Run("generator failure is upstream", func(t *testing.T) {
		repo := new(mockTaskRepo)
		gen := new(mockGenerator)
		box := &recordingOutbox{}
		metrics := observability.NewInMemoryMetrics()
		repo.On("FindByOwner", mock.Anything, owner).Return([]*task.Task{}, nil)
		gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("response has no candidates"))

		summary, err := NewSummarizeHandler(repo, gen, box, nil, metrics).Handle(context.Background(), SummarizeQuery{OwnerID: owner})

		assert.Nil(t, summary)
		assert.ErrorIs(t, err, shared.ErrUpstream)
		assert.True(t, strings.HasPrefix(err.Error(), SourceSummarizer))
		assert.Empty(t, box.saved)
		assert.Equal(t, int64(1), metrics.CounterValue(observability.MetricSummariesFailed))
	})

	t.Run("outbox failure keeps the summary", func(t *testing.T) {
		repo := new(mockTaskRepo)
		gen := new(mockGenerator)
		metrics := observability.NewInMemoryMetrics()
		repo.On("FindByOwner", mock.Anything, owner).Return([]*task.Task{}, nil)
		gen.On("Generate", mock.Anything, mock.Anything).Return("ok", nil)

		summary, err := NewSummarizeHandler(repo, gen, &recordingOutbox{err: errors.New("disk full")}, nil, metrics).
			Handle(context.Background(), SummarizeQuery{OwnerID: owner})

		require.NoError(t, err)
		assert.Equal(t, "ok", summary.Text)
		assert.Equal(t, int64(1), metrics.CounterValue(observability.MetricSummaryEventsDropped))
		assert.Equal(t, int64(1), metrics.CounterValue(observability.MetricSummariesGenerated))
		assert.Zero(t, metrics.CounterValue(observability.MetricSummariesFailed))
	})
}
