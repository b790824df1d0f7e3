// Package application runs the summary pipeline: fetch the owner's tasks,
// render them into a prompt and ask the generator for a summary.
package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	sharedApplication "github.com/felixgeelhaar/taskbrief/internal/shared/application"
	shared "github.com/felixgeelhaar/taskbrief/internal/shared/domain"
	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/taskbrief/internal/summary/domain"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/domain/task"
	"github.com/felixgeelhaar/taskbrief/pkg/observability"
)

// Upstream sources reported by the pipeline.
const (
	SourceTaskStore  = "task-store"
	SourceSummarizer = "summarizer"
)

// SummarizeQuery asks for a summary of the owner's tasks.
type SummarizeQuery struct {
	OwnerID shared.OwnerID
}

// SummarizeHandler handles the SummarizeQuery.
type SummarizeHandler struct {
	taskRepo   task.Repository
	generator  domain.Generator
	outboxRepo outbox.Repository
	logger     *slog.Logger
	metrics    observability.Metrics
}

// NewSummarizeHandler creates a new SummarizeHandler. A nil outboxRepo
// disables the generated event. Failing to record the event is logged and
// counted but never costs the caller the generated text.
func NewSummarizeHandler(
	taskRepo task.Repository,
	generator domain.Generator,
	outboxRepo outbox.Repository,
	logger *slog.Logger,
	metrics observability.Metrics,
) *SummarizeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &SummarizeHandler{
		taskRepo:   taskRepo,
		generator:  generator,
		outboxRepo: outboxRepo,
		logger:     logger,
		metrics:    metrics,
	}
}

// Handle runs the pipeline once. Every failure is one of the shared error
// kinds; the generated text is returned unchanged.
func (h *SummarizeHandler) Handle(ctx context.Context, query SummarizeQuery) (summary *domain.Summary, err error) {
	op := observability.StartOperation(ctx, h.logger, h.metrics, "summarize")
	defer func() {
		op.Finish(err)
		if err != nil && !errors.Is(err, shared.ErrUnauthenticated) {
			h.metrics.Counter(observability.MetricSummariesFailed, 1)
		}
	}()

	if query.OwnerID.IsEmpty() {
		return nil, shared.ErrUnauthenticated
	}

	tasks, err := h.taskRepo.FindByOwner(ctx, query.OwnerID)
	if err != nil {
		return nil, shared.NewUpstreamError(SourceTaskStore, err)
	}

	prompt := domain.BuildPrompt(domain.RenderDigest(tasks))

	text, err := h.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, shared.NewUpstreamError(SourceSummarizer, err)
	}

	summary = &domain.Summary{
		ID:          uuid.New(),
		Text:        text,
		Prompt:      prompt,
		TaskCount:   len(tasks),
		GeneratedAt: time.Now().UTC(),
	}

	if h.outboxRepo != nil {
		event := domain.NewSummaryGenerated(*summary)
		event.SetMetadata(sharedApplication.NewEventMetadata(ctx, query.OwnerID))
		if saveErr := outbox.SaveEvents(ctx, h.outboxRepo, []shared.DomainEvent{event}); saveErr != nil {
			h.metrics.Counter(observability.MetricSummaryEventsDropped, 1)
			h.logger.WarnContext(ctx, "summary generated event dropped",
				"summary_id", summary.ID,
				"error", saveErr,
			)
		}
	}

	h.metrics.Counter(observability.MetricSummariesGenerated, 1)
	h.logger.InfoContext(ctx, "summary generated",
		"task_count", summary.TaskCount,
		"prompt_bytes", len(prompt),
	)
	return summary, nil
}
