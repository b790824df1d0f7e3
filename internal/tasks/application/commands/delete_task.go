package commands

import (
	"context"
	"errors"

	"github.com/google/uuid"

	sharedApplication "github.com/felixgeelhaar/taskbrief/internal/shared/application"
	"github.com/felixgeelhaar/taskbrief/internal/shared/domain"
	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/domain/task"
	"github.com/felixgeelhaar/taskbrief/pkg/observability"
)

// DeleteTaskCommand identifies the task to remove and the owner asking for it.
type DeleteTaskCommand struct {
	OwnerID domain.OwnerID
	TaskID  uuid.UUID
}

// DeleteTaskHandler handles the DeleteTaskCommand.
type DeleteTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	metrics    observability.Metrics
}

// NewDeleteTaskHandler creates a new DeleteTaskHandler.
func NewDeleteTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, metrics observability.Metrics) *DeleteTaskHandler {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &DeleteTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		metrics:    metrics,
	}
}

// Handle deletes the task if and only if the owner owns it. A task owned by
// someone else is reported as not found.
func (h *DeleteTaskHandler) Handle(ctx context.Context, cmd DeleteTaskCommand) error {
	if cmd.OwnerID.IsEmpty() {
		return domain.ErrUnauthenticated
	}

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.taskRepo.DeleteOwned(txCtx, cmd.TaskID, cmd.OwnerID); err != nil {
			return err
		}

		event := task.NewTaskDeleted(cmd.TaskID)
		event.SetMetadata(sharedApplication.NewEventMetadata(ctx, cmd.OwnerID))
		return outbox.SaveEvents(txCtx, h.outboxRepo, []domain.DomainEvent{event})
	})
	if errors.Is(err, task.ErrTaskNotFound) {
		return err
	}
	if err != nil {
		return domain.NewUpstreamError(UpstreamSource, err)
	}

	h.metrics.Counter(observability.MetricTasksDeleted, 1)
	return nil
}
