package partner

import (
	"time"

	"github.com/google/uuid"

	"github.com/invoiceme/backend/internal/domain/partner"
	"github.com/invoiceme/backend/internal/domain/shared/valueobject"
)

// =============================================================================
// Customer DTOs
// =============================================================================

// AddressInput is a billing address as supplied by callers
type AddressInput struct {
	Street     string `json:"street" binding:"required,max=200"`
	City       string `json:"city" binding:"required,max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
	Country    string `json:"country" binding:"max=100"`
}

func (a *AddressInput) toAddress() (valueobject.Address, error) {
	if a == nil {
		return valueobject.EmptyAddress(), nil
	}
	return valueobject.NewAddress(a.Street, a.City,
		valueobject.WithPostalCode(a.PostalCode),
		valueobject.WithCountry(a.Country),
	)
}

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Name           string        `json:"name" binding:"required,min=1,max=200"`
	Email          string        `json:"email" binding:"required,email,max=200"`
	Phone          string        `json:"phone" binding:"max=50"`
	BillingAddress *AddressInput `json:"billing_address"`
}

// UpdateCustomerRequest represents a partial update; nil fields keep their value
type UpdateCustomerRequest struct {
	Name           *string       `json:"name" binding:"omitempty,min=1,max=200"`
	Email          *string       `json:"email" binding:"omitempty,email,max=200"`
	Phone          *string       `json:"phone" binding:"omitempty,max=50"`
	BillingAddress *AddressInput `json:"billing_address"`
}

// CustomerListFilter represents filter options for the customer list
type CustomerListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=name email created_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// AddressResponse is the read projection of a billing address
type AddressResponse struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Email          string           `json:"email"`
	Phone          string           `json:"phone,omitempty"`
	BillingAddress *AddressResponse `json:"billing_address,omitempty"`
	Version        int              `json:"version"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	resp := CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Version:   c.GetVersion(),
		CreatedAt: c.GetCreatedAt(),
		UpdatedAt: c.GetUpdatedAt(),
	}
	if !c.BillingAddress.IsEmpty() {
		resp.BillingAddress = &AddressResponse{
			Street:     c.BillingAddress.Street(),
			City:       c.BillingAddress.City(),
			PostalCode: c.BillingAddress.PostalCode(),
			Country:    c.BillingAddress.Country(),
		}
	}
	return resp
}

// ToCustomerResponses converts a slice of domain Customers
func ToCustomerResponses(customers []*partner.Customer) []CustomerResponse {
	responses := make([]CustomerResponse, len(customers))
	for i, c := range customers {
		responses[i] = ToCustomerResponse(c)
	}
	return responses
}
