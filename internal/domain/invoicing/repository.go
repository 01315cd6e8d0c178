package invoicing

import (
	"context"

	"github.com/google/uuid"

	"github.com/invoiceme/backend/internal/domain/shared"
)

// InvoiceFilter narrows invoice list queries
type InvoiceFilter struct {
	shared.Filter
	Status     *InvoiceStatus
	CustomerID *uuid.UUID
}

// InvoiceRepository persists Invoice aggregates
type InvoiceRepository interface {
	// FindByID returns a NOT_FOUND DomainError when the invoice does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// Save inserts a new invoice (version 0) or updates an existing one.
	// It fails with CONCURRENCY_CONFLICT when the stored version differs
	// from the loaded one, and bumps the aggregate version on success.
	Save(ctx context.Context, invoice *Invoice) error
	// SaveWithEvents is Save that also writes events to the outbox in the same
	// transaction when one is configured. Without an outbox the events are ignored
	// and the caller publishes them after the save.
	SaveWithEvents(ctx context.Context, invoice *Invoice, events []shared.DomainEvent) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindAll(ctx context.Context, filter InvoiceFilter) ([]*Invoice, error)
	Count(ctx context.Context, filter InvoiceFilter) (int64, error)
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
}

// CustomerChecker answers whether a customer exists before an invoice is issued to it
type CustomerChecker interface {
	Exists(ctx context.Context, customerID uuid.UUID) (bool, error)
}

// InvoiceNumberSequence hands out unique invoice numbers across service instances
type InvoiceNumberSequence interface {
	Next(ctx context.Context) (InvoiceNumber, error)
}
