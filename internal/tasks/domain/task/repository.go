package task

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/taskbrief/internal/shared/domain"
	"github.com/google/uuid"
)

// ErrTaskNotFound is returned when no task with the id exists for the owner.
var ErrTaskNotFound = fmt.Errorf("task %w", domain.ErrNotFound)

// Repository persists tasks. Every read and delete is scoped to one owner.
type Repository interface {
	Save(ctx context.Context, task *Task) error
	// FindByOwner returns the owner's tasks in store order.
	FindByOwner(ctx context.Context, owner domain.OwnerID) ([]*Task, error)
	// DeleteOwned removes the task only if owner owns it, otherwise ErrTaskNotFound.
	DeleteOwned(ctx context.Context, id uuid.UUID, owner domain.OwnerID) error
}
