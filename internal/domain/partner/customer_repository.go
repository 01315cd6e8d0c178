package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/invoiceme/backend/internal/domain/shared"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByID returns a NOT_FOUND DomainError when the customer does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*Customer, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Save inserts or updates with an optimistic version check
	Save(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	// SaveWithEvents and DeleteWithEvents write events to the outbox in the same
	// transaction when one is configured, and ignore them otherwise
	SaveWithEvents(ctx context.Context, customer *Customer, events []shared.DomainEvent) error
	DeleteWithEvents(ctx context.Context, id uuid.UUID, events []shared.DomainEvent) error
}
