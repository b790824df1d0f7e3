package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/felixgeelhaar/taskbrief/internal/shared/domain"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/domain/task"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/domain/value_objects"
)

// TasksCollection is the collection task documents live in.
const TasksCollection = "tasks"

// taskDocument keeps the field names of the documents written by the
// mobile client, so existing collections can be served unchanged.
type taskDocument struct {
	ID            string    `bson:"_id"`
	Title         string    `bson:"title"`
	Category      string    `bson:"category"`
	StateCategory string    `bson:"stateCategory"`
	Hour          int64     `bson:"hour"`
	Deadline      time.Time `bson:"deadline"`
	Note          string    `bson:"note"`
	UserID        string    `bson:"userId"`
	CreatedAt     time.Time `bson:"createdAt"`
}

func toDocument(t *task.Task) taskDocument {
	s := t.Snapshot()
	return taskDocument{
		ID:            s.ID.String(),
		Title:         s.Title,
		Category:      s.Category,
		StateCategory: s.Urgency,
		Hour:          s.Hours,
		Deadline:      t.Deadline().Time(),
		Note:          s.Note,
		UserID:        s.OwnerID,
		CreatedAt:     s.CreatedAt,
	}
}

func fromDocument(doc taskDocument) (*task.Task, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("task id %q: %w", doc.ID, err)
	}
	return task.Restore(task.Snapshot{
		ID:        id,
		OwnerID:   doc.UserID,
		Title:     doc.Title,
		Category:  doc.Category,
		Urgency:   doc.StateCategory,
		Hours:     doc.Hour,
		Deadline:  value_objects.DeadlineOn(doc.Deadline.UTC()).String(),
		Note:      doc.Note,
		CreatedAt: doc.CreatedAt,
	})
}

// MongoTaskRepository implements task.Repository on a MongoDB collection.
// It does not take part in SQL units of work.
type MongoTaskRepository struct {
	collection *mongo.Collection
}

// NewMongoTaskRepository creates a repository on db's tasks collection.
func NewMongoTaskRepository(db *mongo.Database) *MongoTaskRepository {
	return &MongoTaskRepository{collection: db.Collection(TasksCollection)}
}

// EnsureIndexes creates the owner index used by every query.
func (r *MongoTaskRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}},
	})
	return err
}

func (r *MongoTaskRepository) Save(ctx context.Context, t *task.Task) error {
	if _, err := r.collection.InsertOne(ctx, toDocument(t)); err != nil {
		return fmt.Errorf("insert task %s: %w", t.ID(), err)
	}
	return nil
}

func (r *MongoTaskRepository) FindByOwner(ctx context.Context, owner domain.OwnerID) ([]*task.Task, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": owner.String()})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tasks := make([]*task.Task, 0)
	for cursor.Next(ctx) {
		var doc taskDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		t, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, cursor.Err()
}

// DeleteOwned deletes by primary key with the owner as part of the filter.
func (r *MongoTaskRepository) DeleteOwned(ctx context.Context, id uuid.UUID, owner domain.OwnerID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String(), "userId": owner.String()})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}
