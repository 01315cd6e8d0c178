package valueobject

import (
	"strings"

	"github.com/invoiceme/backend/internal/domain/shared"
)

// Address is an immutable postal billing address
type Address struct {
	street     string
	city       string
	postalCode string
	country    string
}

// AddressOption configures optional Address fields
type AddressOption func(*Address)

// WithPostalCode sets the postal code
func WithPostalCode(postalCode string) AddressOption {
	return func(a *Address) {
		a.postalCode = strings.TrimSpace(postalCode)
	}
}

// WithCountry sets the country
func WithCountry(country string) AddressOption {
	return func(a *Address) {
		a.country = strings.TrimSpace(country)
	}
}

// NewAddress creates an Address. Street and city are required.
func NewAddress(street, city string, opts ...AddressOption) (Address, error) {
	addr := Address{
		street: strings.TrimSpace(street),
		city:   strings.TrimSpace(city),
	}
	for _, opt := range opts {
		opt(&addr)
	}

	switch {
	case addr.street == "":
		return Address{}, shared.NewValidationError("street cannot be empty")
	case len(addr.street) > 200:
		return Address{}, shared.NewValidationError("street cannot exceed 200 characters")
	case addr.city == "":
		return Address{}, shared.NewValidationError("city cannot be empty")
	case len(addr.city) > 100:
		return Address{}, shared.NewValidationError("city cannot exceed 100 characters")
	case len(addr.postalCode) > 20:
		return Address{}, shared.NewValidationError("postal code cannot exceed 20 characters")
	case len(addr.country) > 100:
		return Address{}, shared.NewValidationError("country cannot exceed 100 characters")
	}
	return addr, nil
}

// EmptyAddress returns the zero address used for customers without one
func EmptyAddress() Address {
	return Address{}
}

func (a Address) Street() string {
	return a.street
}

func (a Address) City() string {
	return a.city
}

func (a Address) PostalCode() string {
	return a.postalCode
}

func (a Address) Country() string {
	return a.country
}

// IsEmpty returns true if no required field is set
func (a Address) IsEmpty() bool {
	return a.street == "" && a.city == ""
}

// Equals compares all fields
func (a Address) Equals(other Address) bool {
	return a == other
}

// String formats the address on one line, skipping blank parts
func (a Address) String() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.street, a.city, a.postalCode, a.country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
