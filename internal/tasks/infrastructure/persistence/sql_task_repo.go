package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskbrief/internal/shared/domain"
	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/domain/task"
)

// SQLTaskRepository implements task.Repository on the tasks table. The same
// statements run on SQLite and Postgres.
type SQLTaskRepository struct {
	conn database.Connection
}

// NewSQLTaskRepository creates a new SQL task repository.
func NewSQLTaskRepository(conn database.Connection) *SQLTaskRepository {
	return &SQLTaskRepository{conn: conn}
}

const insertTask = `
INSERT INTO tasks (id, owner_id, title, category, urgency, estimated_hours, deadline, note, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Save inserts the task. Tasks are immutable, so saving an existing id fails.
func (r *SQLTaskRepository) Save(ctx context.Context, t *task.Task) error {
	s := t.Snapshot()
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, insertTask,
		s.ID.String(),
		s.OwnerID,
		s.Title,
		s.Category,
		s.Urgency,
		s.Hours,
		s.Deadline,
		s.Note,
		s.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert task %s: %w", s.ID, err)
	}
	return nil
}

const selectTasksByOwner = `
SELECT id, owner_id, title, category, urgency, estimated_hours, deadline, note, created_at
FROM tasks
WHERE owner_id = ?`

// FindByOwner returns the owner's tasks in table order.
func (r *SQLTaskRepository) FindByOwner(ctx context.Context, owner domain.OwnerID) ([]*task.Task, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, selectTasksByOwner, owner.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*task.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

const deleteOwnedTask = `DELETE FROM tasks WHERE id = ? AND owner_id = ?`

// DeleteOwned removes the row only when both the id and the owner match.
func (r *SQLTaskRepository) DeleteOwned(ctx context.Context, id uuid.UUID, owner domain.OwnerID) error {
	result, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, deleteOwnedTask, id.String(), owner.String())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}

func scanTask(row database.Row) (*task.Task, error) {
	var (
		id        string
		s         task.Snapshot
		createdAt time.Time
	)
	if err := row.Scan(&id, &s.OwnerID, &s.Title, &s.Category, &s.Urgency, &s.Hours, &s.Deadline, &s.Note, &createdAt); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("task id %q: %w", id, err)
	}
	s.ID = parsed
	s.CreatedAt = createdAt

	t, err := task.Restore(s)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", id, err)
	}
	return t, nil
}
