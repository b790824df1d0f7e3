package commands

import (
	"context"

	sharedApplication "github.com/felixgeelhaar/taskbrief/internal/shared/application"
	"github.com/felixgeelhaar/taskbrief/internal/shared/domain"
	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/domain/task"
	"github.com/felixgeelhaar/taskbrief/pkg/observability"
)

// UpstreamSource names the task store in upstream errors.
const UpstreamSource = "task-store"

// CreateTaskCommand contains the data needed to create a task.
type CreateTaskCommand struct {
	OwnerID domain.OwnerID
	Draft   task.Draft
}

// CreateTaskHandler handles the CreateTaskCommand.
type CreateTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	metrics    observability.Metrics
}

// NewCreateTaskHandler creates a new CreateTaskHandler.
func NewCreateTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, metrics observability.Metrics) *CreateTaskHandler {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &CreateTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		metrics:    metrics,
	}
}

// Handle validates the draft and stores the task together with its
// creation event. Invalid drafts never reach the store.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*task.Task, error) {
	t, err := task.New(cmd.OwnerID, cmd.Draft)
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.taskRepo.Save(txCtx, t); err != nil {
			return err
		}

		events := t.DomainEvents()
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx, cmd.OwnerID))
		return outbox.SaveEvents(txCtx, h.outboxRepo, events)
	})
	if err != nil {
		return nil, domain.NewUpstreamError(UpstreamSource, err)
	}

	t.ClearDomainEvents()
	h.metrics.Counter(observability.MetricTasksCreated, 1, observability.T("category", t.Category().String()))
	return t, nil
}
