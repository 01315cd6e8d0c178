package shared

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	SetVersion(version int)
	PullDomainEvents() []DomainEvent
}

// BaseAggregateRoot provides common fields for aggregate roots.
// A Version of 0 means the aggregate has never been persisted.
type BaseAggregateRoot struct {
	BaseEntity
	Version      int
	domainEvents []DomainEvent
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// SetVersion is called by repositories after a successful save
func (a *BaseAggregateRoot) SetVersion(version int) {
	a.Version = version
}

// AddDomainEvent adds a domain event to be published
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns a snapshot of the pending domain events without clearing them
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	events := make([]DomainEvent, len(a.domainEvents))
	copy(events, a.domainEvents)
	return events
}

// PullDomainEvents returns the pending events in emission order and clears the buffer
func (a *BaseAggregateRoot) PullDomainEvents() []DomainEvent {
	events := a.domainEvents
	a.domainEvents = nil
	if events == nil {
		return []DomainEvent{}
	}
	return events
}

// NewBaseAggregateRoot creates a new, not yet persisted, base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
	}
}
