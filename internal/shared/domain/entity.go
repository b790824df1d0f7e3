package domain

import (
	"time"

	"github.com/google/uuid"
)

// Entity is anything with a stable identity.
type Entity interface {
	ID() uuid.UUID
	CreatedAt() time.Time
}

// BaseEntity carries the identity and creation time shared by all entities.
// Records are never edited in place, so there is no modification time.
type BaseEntity struct {
	id        uuid.UUID
	createdAt time.Time
}

// NewBaseEntity assigns a fresh random identifier.
func NewBaseEntity() BaseEntity {
	return BaseEntity{
		id:        uuid.New(),
		createdAt: time.Now().UTC(),
	}
}

// RehydrateBaseEntity rebuilds an entity from stored state.
func RehydrateBaseEntity(id uuid.UUID, createdAt time.Time) BaseEntity {
	return BaseEntity{id: id, createdAt: createdAt.UTC()}
}

func (e BaseEntity) ID() uuid.UUID        { return e.id }
func (e BaseEntity) CreatedAt() time.Time { return e.createdAt }
