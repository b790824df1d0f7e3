// Package application exports task deadlines to an external calendar.
package application

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	shared "github.com/felixgeelhaar/taskbrief/internal/shared/domain"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/domain/task"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/domain/value_objects"
)

// UpstreamSource names the calendar server in upstream errors.
const UpstreamSource = "calendar"

// DeadlineEvent is the calendar view of one task: an all-day entry on
// the task's deadline.
type DeadlineEvent struct {
	TaskID   uuid.UUID
	Title    string
	Note     string
	Category string
	Urgency  string
	Deadline value_objects.Deadline
}

// DeadlineEventFromTask maps a task to its calendar entry.
func DeadlineEventFromTask(t *task.Task) DeadlineEvent {
	return DeadlineEvent{
		TaskID:   t.ID(),
		Title:    t.Title(),
		Note:     t.Note(),
		Category: t.Category().Label(),
		Urgency:  t.Urgency().Label(),
		Deadline: t.Deadline(),
	}
}

// ExportResult describes the outcome of an export run.
type ExportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
	Deleted int `json:"deleted"`
}

// Written is the number of events stored on the server.
func (r ExportResult) Written() int { return r.Created + r.Updated }

// Exporter writes deadline events into an external calendar.
type Exporter interface {
	Export(ctx context.Context, owner shared.OwnerID, events []DeadlineEvent) (*ExportResult, error)
}

// ExportDeadlinesCommand exports the owner's task deadlines.
type ExportDeadlinesCommand struct {
	OwnerID shared.OwnerID
}

// ExportDeadlinesHandler handles the ExportDeadlinesCommand.
type ExportDeadlinesHandler struct {
	taskRepo task.Repository
	exporter Exporter
	logger   *slog.Logger
}

// NewExportDeadlinesHandler creates a new ExportDeadlinesHandler.
func NewExportDeadlinesHandler(taskRepo task.Repository, exporter Exporter, logger *slog.Logger) *ExportDeadlinesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportDeadlinesHandler{
		taskRepo: taskRepo,
		exporter: exporter,
		logger:   logger,
	}
}

// Handle lists the owner's tasks and exports one event per task. An owner
// without tasks produces an empty result and no calendar writes.
func (h *ExportDeadlinesHandler) Handle(ctx context.Context, cmd ExportDeadlinesCommand) (*ExportResult, error) {
	if cmd.OwnerID.IsEmpty() {
		return nil, shared.ErrUnauthenticated
	}

	tasks, err := h.taskRepo.FindByOwner(ctx, cmd.OwnerID)
	if err != nil {
		return nil, shared.NewUpstreamError("task-store", err)
	}
	if len(tasks) == 0 {
		return &ExportResult{}, nil
	}

	events := make([]DeadlineEvent, 0, len(tasks))
	for _, t := range tasks {
		events = append(events, DeadlineEventFromTask(t))
	}

	result, err := h.exporter.Export(ctx, cmd.OwnerID, events)
	if err != nil {
		return nil, shared.NewUpstreamError(UpstreamSource, err)
	}

	h.logger.InfoContext(ctx, "deadlines exported",
		"owner_id", cmd.OwnerID.String(),
		"created", result.Created,
		"updated", result.Updated,
		"failed", result.Failed,
		"deleted", result.Deleted,
	)
	return result, nil
}
