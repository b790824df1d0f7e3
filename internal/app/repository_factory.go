package app

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	identityDomain "github.com/felixgeelhaar/taskbrief/internal/identity/domain"
	identityPersistence "github.com/felixgeelhaar/taskbrief/internal/identity/infrastructure/persistence"
	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/domain/task"
	taskPersistence "github.com/felixgeelhaar/taskbrief/internal/tasks/infrastructure/persistence"
)

// RepositoryFactory creates repositories for the configured backends.
// Users and the outbox always live in the SQL store; tasks move to MongoDB
// when a document database is supplied.
type RepositoryFactory struct {
	conn  database.Connection
	tasks *mongo.Database
}

// NewRepositoryFactory creates a new repository factory. tasks may be nil.
func NewRepositoryFactory(conn database.Connection, tasks *mongo.Database) *RepositoryFactory {
	return &RepositoryFactory{conn: conn, tasks: tasks}
}

// TaskDriver reports which backend holds tasks.
func (f *RepositoryFactory) TaskDriver() database.Driver {
	if f.tasks != nil {
		return database.DriverMongo
	}
	return f.conn.Driver()
}

// TaskRepository creates the task repository. For MongoDB the owner index
// is created first.
func (f *RepositoryFactory) TaskRepository(ctx context.Context) (task.Repository, error) {
	switch driver := f.TaskDriver(); driver {
	case database.DriverMongo:
		repo := taskPersistence.NewMongoTaskRepository(f.tasks)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("failed to create task indexes: %w", err)
		}
		return repo, nil

	case database.DriverPostgres, database.DriverSQLite:
		return taskPersistence.NewSQLTaskRepository(f.conn), nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}
}

// UserRepository creates the account repository.
func (f *RepositoryFactory) UserRepository() (identityDomain.UserRepository, error) {
	if f.conn == nil {
		return nil, errors.New("no relational connection")
	}
	return identityPersistence.NewSQLUserRepository(f.conn), nil
}

// OutboxRepository creates the outbox repository.
func (f *RepositoryFactory) OutboxRepository() (outbox.Repository, error) {
	if f.conn == nil {
		return nil, errors.New("no relational connection")
	}
	return outbox.NewSQLRepository(f.conn), nil
}

// UnitOfWork creates a unit of work over the SQL store.
func (f *RepositoryFactory) UnitOfWork() *database.UnitOfWork {
	return database.NewUnitOfWork(f.conn)
}
