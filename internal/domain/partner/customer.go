package partner

import (
	"regexp"
	"strings"

	"github.com/invoiceme/backend/internal/domain/shared"
	"github.com/invoiceme/backend/internal/domain/shared/valueobject"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
)

// Customer is the party invoices are issued to
type Customer struct {
	shared.BaseAggregateRoot
	Name           string
	Email          string
	Phone          string
	BillingAddress valueobject.Address
}

// NewCustomer creates a customer, emitting CustomerCreated
func NewCustomer(name, email string) (*Customer, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	customer := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             email,
	}
	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))
	return customer, nil
}

// Update replaces the customer's contact details
func (c *Customer) Update(name, email, phone string) error {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	phone = strings.TrimSpace(phone)
	if err := validateCustomerName(name); err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := validatePhone(phone); err != nil {
		return err
	}

	c.Name = name
	c.Email = email
	c.Phone = phone
	c.Touch()
	c.AddDomainEvent(NewCustomerUpdatedEvent(c))
	return nil
}

// SetBillingAddress sets or clears the billing address
func (c *Customer) SetBillingAddress(address valueobject.Address) {
	if c.BillingAddress.Equals(address) {
		return
	}
	c.BillingAddress = address
	c.Touch()
	c.AddDomainEvent(NewCustomerUpdatedEvent(c))
}

// MarkDeleted records the deletion so subscribers can react once it is persisted
func (c *Customer) MarkDeleted() {
	c.AddDomainEvent(NewCustomerDeletedEvent(c))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCustomerName(name string) error {
	if name == "" {
		return shared.NewValidationError("customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("customer name cannot exceed 200 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewValidationError("customer email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewValidationError("email cannot exceed 200 characters")
	}
	if !emailPattern.MatchString(email) {
		return shared.NewValidationError("invalid email format %q", email)
	}
	return nil
}

func validatePhone(phone string) error {
	if phone == "" {
		return nil
	}
	if len(phone) > 50 {
		return shared.NewValidationError("phone number cannot exceed 50 characters")
	}
	if !phonePattern.MatchString(phone) {
		return shared.NewValidationError("invalid phone number format")
	}
	return nil
}
