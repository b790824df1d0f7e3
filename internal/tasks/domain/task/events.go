package task

import (
	"github.com/felixgeelhaar/taskbrief/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType = "Task"

	RoutingKeyCreated = "tasks.task.created"
	RoutingKeyDeleted = "tasks.task.deleted"
)

// TaskCreated is emitted when a task is stored for the first time.
type TaskCreated struct {
	domain.BaseEvent
	Title    string `json:"title"`
	Category string `json:"category"`
	Urgency  string `json:"urgency"`
	Deadline string `json:"deadline"`
}

func NewTaskCreated(t *Task) *TaskCreated {
	return &TaskCreated{
		BaseEvent: domain.NewBaseEvent(t.ID(), AggregateType, RoutingKeyCreated),
		Title:     t.title,
		Category:  t.category.String(),
		Urgency:   t.urgency.String(),
		Deadline:  t.deadline.String(),
	}
}

// TaskDeleted is emitted after an owner removes a task.
type TaskDeleted struct {
	domain.BaseEvent
}

func NewTaskDeleted(taskID uuid.UUID) *TaskDeleted {
	return &TaskDeleted{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyDeleted),
	}
}
