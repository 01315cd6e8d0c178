package partner

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/invoiceme/backend/internal/domain/partner"
	"github.com/invoiceme/backend/internal/domain/shared"
	"github.com/invoiceme/backend/internal/infrastructure/telemetry"
)

// InvoiceCounter reports how many invoices reference a customer
type InvoiceCounter interface {
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
}

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo partner.CustomerRepository
	invoices     InvoiceCounter
	publisher    shared.EventPublisher
	logger       *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(
	customerRepo partner.CustomerRepository,
	invoices InvoiceCounter,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		invoices:     invoices,
		publisher:    publisher,
		logger:       logger,
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "create")
	defer span.End()

	customer, err := partner.NewCustomer(req.Name, req.Email)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	exists, err := s.customerRepo.ExistsByEmail(ctx, customer.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check customer email: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Customer with this email already exists")
	}

	if req.Phone != "" {
		if err := customer.Update(customer.Name, customer.Email, req.Phone); err != nil {
			return nil, err
		}
	}
	if req.BillingAddress != nil {
		address, err := req.BillingAddress.toAddress()
		if err != nil {
			return nil, err
		}
		customer.SetBillingAddress(address)
	}

	events := customer.PullDomainEvents()
	if err := s.customerRepo.SaveWithEvents(ctx, customer, events); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publish(ctx, customer.ID, events)

	span.SetAttributes(telemetry.AttrCustomerID.String(customer.ID.String()))
	s.logger.Info("Customer created",
		zap.String("customer_id", customer.ID.String()),
		zap.String("email", customer.Email),
	)

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves a page of customers
func (s *CustomerService) List(ctx context.Context, filter CustomerListFilter) (*shared.Paginated[CustomerResponse], error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}.Normalize()

	customers, err := s.customerRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.customerRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToCustomerResponses(customers), total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update applies a partial update to a customer
func (s *CustomerService) Update(ctx context.Context, customerID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "update")
	defer span.End()
	span.SetAttributes(telemetry.AttrCustomerID.String(customerID.String()))

	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if req.Name != nil || req.Email != nil || req.Phone != nil {
		previousEmail := customer.Email
		name, email, phone := customer.Name, customer.Email, customer.Phone
		if req.Name != nil {
			name = *req.Name
		}
		if req.Email != nil {
			email = *req.Email
		}
		if req.Phone != nil {
			phone = *req.Phone
		}

		if err := customer.Update(name, email, phone); err != nil {
			return nil, err
		}

		if customer.Email != previousEmail {
			exists, err := s.customerRepo.ExistsByEmail(ctx, customer.Email)
			if err != nil {
				return nil, fmt.Errorf("failed to check customer email: %w", err)
			}
			if exists {
				return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Customer with this email already exists")
			}
		}
	}

	if req.BillingAddress != nil {
		address, err := req.BillingAddress.toAddress()
		if err != nil {
			return nil, err
		}
		customer.SetBillingAddress(address)
	}

	events := customer.PullDomainEvents()
	if err := s.customerRepo.SaveWithEvents(ctx, customer, events); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publish(ctx, customer.ID, events)

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Delete removes a customer. Customers that still have invoices cannot be deleted.
func (s *CustomerService) Delete(ctx context.Context, customerID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "delete")
	defer span.End()
	span.SetAttributes(telemetry.AttrCustomerID.String(customerID.String()))

	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	count, err := s.invoices.CountByCustomer(ctx, customerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to count customer invoices: %w", err)
	}
	if count > 0 {
		return shared.NewInvalidStateError("cannot delete customer with %d invoice(s)", count)
	}

	customer.MarkDeleted()
	events := customer.PullDomainEvents()
	if err := s.customerRepo.DeleteWithEvents(ctx, customerID, events); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	s.publish(ctx, customerID, events)

	s.logger.Info("Customer deleted", zap.String("customer_id", customerID.String()))
	return nil
}

// publish hands events to the bus after a successful write; with the outbox enabled
// the publisher is nil because the repository already stored them
func (s *CustomerService) publish(ctx context.Context, customerID uuid.UUID, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish domain events",
			zap.Error(err),
			zap.String("aggregate_id", customerID.String()),
			zap.Int("event_count", len(events)),
		)
	}
}
