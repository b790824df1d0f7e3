package task

import (
	"strings"
	"time"

	"github.com/felixgeelhaar/taskbrief/internal/shared/domain"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/domain/value_objects"
	"github.com/google/uuid"
)

// Draft is the unvalidated form input for a new task. A nil Hours means
// no estimate was given.
type Draft struct {
	Title    string
	Category string
	Urgency  string
	Hours    *int
	Deadline string
	Note     string
}

// Task is a single tracked item of work owned by one user.
// Tasks are never edited after creation.
type Task struct {
	domain.BaseAggregateRoot
	owner    domain.OwnerID
	title    string
	category value_objects.Category
	urgency  value_objects.Urgency
	hours    value_objects.EstimatedHours
	deadline value_objects.Deadline
	note     string
}

// New validates a draft and creates a task for owner.
func New(owner domain.OwnerID, d Draft) (*Task, error) {
	if owner.IsEmpty() {
		return nil, domain.ErrUnauthenticated
	}

	title := strings.TrimSpace(d.Title)
	if title == "" {
		return nil, domain.NewValidationError("title", "must not be empty")
	}

	category, err := value_objects.ParseCategory(d.Category)
	if err != nil {
		return nil, domain.NewValidationError("category", err.Error())
	}

	urgency, err := value_objects.ParseUrgency(d.Urgency)
	if err != nil {
		return nil, domain.NewValidationError("urgency", err.Error())
	}

	hours := value_objects.UnknownHours()
	if d.Hours != nil {
		hours, err = value_objects.NewEstimatedHours(*d.Hours)
		if err != nil {
			return nil, domain.NewValidationError("estimated_hours", err.Error())
		}
	}

	deadline, err := value_objects.ParseDeadline(strings.TrimSpace(d.Deadline))
	if err != nil {
		return nil, domain.NewValidationError("deadline", err.Error())
	}

	t := &Task{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(),
		owner:             owner,
		title:             title,
		category:          category,
		urgency:           urgency,
		hours:             hours,
		deadline:          deadline,
		note:              d.Note,
	}
	t.Raise(NewTaskCreated(t))

	return t, nil
}

func (t *Task) OwnerID() domain.OwnerID                      { return t.owner }
func (t *Task) Title() string                                { return t.title }
func (t *Task) Category() value_objects.Category             { return t.category }
func (t *Task) Urgency() value_objects.Urgency               { return t.urgency }
func (t *Task) EstimatedHours() value_objects.EstimatedHours { return t.hours }
func (t *Task) Deadline() value_objects.Deadline             { return t.deadline }
func (t *Task) Note() string                                 { return t.note }

// OwnedBy reports whether owner may see or delete this task.
func (t *Task) OwnedBy(owner domain.OwnerID) bool {
	return !owner.IsEmpty() && t.owner.Equals(owner)
}

// Snapshot is the flat, storage-friendly form of a Task.
type Snapshot struct {
	ID        uuid.UUID
	OwnerID   string
	Title     string
	Category  string
	Urgency   string
	Hours     int64
	Deadline  string
	Note      string
	CreatedAt time.Time
}

// Snapshot flattens the task for persistence.
func (t *Task) Snapshot() Snapshot {
	return Snapshot{
		ID:        t.ID(),
		OwnerID:   t.owner.String(),
		Title:     t.title,
		Category:  t.category.String(),
		Urgency:   t.urgency.String(),
		Hours:     int64(t.hours.Stored()),
		Deadline:  t.deadline.String(),
		Note:      t.note,
		CreatedAt: t.CreatedAt(),
	}
}

// Restore rebuilds a task from stored state. It fails when the stored
// vocabulary values are no longer recognised.
func Restore(s Snapshot) (*Task, error) {
	category, err := value_objects.ParseCategory(s.Category)
	if err != nil {
		return nil, err
	}
	urgency, err := value_objects.ParseUrgency(s.Urgency)
	if err != nil {
		return nil, err
	}
	deadline, err := value_objects.ParseDeadline(s.Deadline)
	if err != nil {
		return nil, err
	}

	return &Task{
		BaseAggregateRoot: domain.RehydrateBaseAggregateRoot(domain.RehydrateBaseEntity(s.ID, s.CreatedAt)),
		owner:             domain.NewOwnerID(s.OwnerID),
		title:             s.Title,
		category:          category,
		urgency:           urgency,
		hours:             value_objects.RestoreEstimatedHours(s.Hours),
		deadline:          deadline,
		note:              s.Note,
	}, nil
}

// HoursFromText converts the text form of an estimate into Draft.Hours.
// Empty text and "unknown" mean no estimate.
func HoursFromText(s string) (*int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	hours, err := value_objects.ParseEstimatedHours(s)
	if err != nil {
		return nil, domain.NewValidationError("estimated_hours", err.Error())
	}
	if n, ok := hours.Hours(); ok {
		return &n, nil
	}
	return nil, nil
}
