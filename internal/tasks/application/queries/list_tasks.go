package queries

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskbrief/internal/shared/domain"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/domain/task"
)

// UpstreamSource names the task store in upstream errors.
const UpstreamSource = "task-store"

// TaskDTO is a data transfer object for tasks.
type TaskDTO struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Category       string    `json:"category"`
	CategoryLabel  string    `json:"category_label"`
	Urgency        string    `json:"urgency"`
	UrgencyLabel   string    `json:"urgency_label"`
	EstimatedHours string    `json:"estimated_hours"` // decimal or "unknown"
	Deadline       string    `json:"deadline"`        // YYYY-MM-DD
	Note           string    `json:"note"`
	CreatedAt      time.Time `json:"created_at"`
}

// ToDTO converts a task for callers outside the domain.
func ToDTO(t *task.Task) TaskDTO {
	return TaskDTO{
		ID:             t.ID(),
		Title:          t.Title(),
		Category:       t.Category().String(),
		CategoryLabel:  t.Category().Label(),
		Urgency:        t.Urgency().String(),
		UrgencyLabel:   t.Urgency().Label(),
		EstimatedHours: t.EstimatedHours().String(),
		Deadline:       t.Deadline().String(),
		Note:           t.Note(),
		CreatedAt:      t.CreatedAt(),
	}
}

// ListTasksQuery contains the parameters for listing tasks.
type ListTasksQuery struct {
	OwnerID domain.OwnerID
}

// ListTasksHandler handles the ListTasksQuery.
type ListTasksHandler struct {
	taskRepo task.Repository
}

// NewListTasksHandler creates a new ListTasksHandler.
func NewListTasksHandler(taskRepo task.Repository) *ListTasksHandler {
	return &ListTasksHandler{taskRepo: taskRepo}
}

// Handle returns the owner's tasks in the order the store produced them.
// Use SortNewestFirst when a stable display order is needed.
func (h *ListTasksHandler) Handle(ctx context.Context, query ListTasksQuery) ([]TaskDTO, error) {
	if query.OwnerID.IsEmpty() {
		return nil, domain.ErrUnauthenticated
	}

	tasks, err := h.taskRepo.FindByOwner(ctx, query.OwnerID)
	if err != nil {
		return nil, domain.NewUpstreamError(UpstreamSource, err)
	}

	dtos := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		dtos = append(dtos, ToDTO(t))
	}
	return dtos, nil
}

// SortNewestFirst orders tasks by creation time, most recent first. Ties
// keep their relative order.
func SortNewestFirst(tasks []TaskDTO) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}
