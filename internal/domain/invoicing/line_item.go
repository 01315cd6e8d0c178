package invoicing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/invoiceme/backend/internal/domain/shared"
	"github.com/invoiceme/backend/internal/domain/shared/valueobject"
)

const maxDescriptionLength = 500

// LineItem is one billed line of an invoice. It is immutable; edits replace it.
type LineItem struct {
	description string
	quantity    decimal.Decimal
	unitPrice   valueobject.Money
	subtotal    valueobject.Money
}

// NewLineItem validates the input and computes the subtotal once
func NewLineItem(description string, quantity decimal.Decimal, unitPrice valueobject.Money) (LineItem, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return LineItem{}, shared.NewValidationError("line item description cannot be empty")
	}
	if len(description) > maxDescriptionLength {
		return LineItem{}, shared.NewValidationError("line item description cannot exceed %d characters", maxDescriptionLength)
	}
	if !quantity.IsPositive() {
		return LineItem{}, shared.NewValidationError("line item quantity must be positive, got %s", quantity.String())
	}
	if !unitPrice.IsPositive() {
		return LineItem{}, shared.NewValidationError("line item unit price must be positive, got %s", unitPrice.String())
	}

	return LineItem{
		description: description,
		quantity:    quantity,
		unitPrice:   unitPrice,
		subtotal:    unitPrice.Multiply(quantity),
	}, nil
}

func (li LineItem) Description() string {
	return li.description
}

func (li LineItem) Quantity() decimal.Decimal {
	return li.quantity
}

func (li LineItem) UnitPrice() valueobject.Money {
	return li.unitPrice
}

// Subtotal is unitPrice × quantity, rounded to cents
func (li LineItem) Subtotal() valueobject.Money {
	return li.subtotal
}

// Equals compares description, quantity and unit price
func (li LineItem) Equals(other LineItem) bool {
	return li.description == other.description &&
		li.quantity.Equal(other.quantity) &&
		li.unitPrice.Equals(other.unitPrice)
}
