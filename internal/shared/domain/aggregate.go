package domain

// AggregateRoot is an entity that records the domain events it raised
// until the application layer hands them to the outbox.
type AggregateRoot interface {
	Entity
	DomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot implements the event bookkeeping of AggregateRoot.
type BaseAggregateRoot struct {
	BaseEntity
	events []DomainEvent
}

// NewBaseAggregateRoot creates an aggregate root with a fresh identity.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity()}
}

// RehydrateBaseAggregateRoot wraps a stored entity. Rehydrated aggregates carry no events.
func RehydrateBaseAggregateRoot(entity BaseEntity) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: entity}
}

func (a *BaseAggregateRoot) DomainEvents() []DomainEvent {
	return a.events
}

func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.events = nil
}

// Raise records an event.
func (a *BaseAggregateRoot) Raise(event DomainEvent) {
	a.events = append(a.events, event)
}
