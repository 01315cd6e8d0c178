package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invoiceme/backend/internal/domain/invoicing"
	"github.com/invoiceme/backend/internal/domain/shared"
	"github.com/invoiceme/backend/internal/domain/shared/valueobject"
)

// MoneyInput is a monetary amount as it crosses the application boundary
type MoneyInput struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// ToMoney parses the input into a rounded Money value
func (m MoneyInput) ToMoney() (valueobject.Money, error) {
	return valueobject.NewMoneyFromString(m.Amount, valueobject.Currency(m.Currency))
}

// WithDefaultCurrency fills in the currency when the caller left it out
func (m MoneyInput) WithDefaultCurrency(currency valueobject.Currency) MoneyInput {
	if m.Currency == "" {
		m.Currency = currency.String()
	}
	return m
}

// LineItemInput describes one line of an invoice
type LineItemInput struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   MoneyInput      `json:"unit_price"`
}

// CreateInvoiceCommand creates a draft invoice for an existing customer
type CreateInvoiceCommand struct {
	CustomerID uuid.UUID
	IssueDate  time.Time
	DueDate    time.Time
	LineItems  []LineItemInput
	TaxRate    decimal.Decimal
	Notes      string
}

// CreateInvoiceResult carries the identifiers of the new invoice
type CreateInvoiceResult struct {
	InvoiceID     uuid.UUID `json:"id"`
	InvoiceNumber string    `json:"invoice_number"`
}

// UpdateInvoiceCommand replaces all editable fields of a draft invoice
type UpdateInvoiceCommand struct {
	InvoiceID uuid.UUID
	LineItems []LineItemInput
	DueDate   time.Time
	TaxRate   decimal.Decimal
	Notes     string
}

// SendInvoiceCommand sends a draft invoice
type SendInvoiceCommand struct {
	InvoiceID uuid.UUID
}

// RecordPaymentCommand records a payment against an invoice.
// A caller supplied PaymentID makes retries of the same payment idempotent.
type RecordPaymentCommand struct {
	InvoiceID   uuid.UUID
	PaymentID   *uuid.UUID
	Amount      MoneyInput
	PaymentDate time.Time
	Method      string
	Reference   string
}

// RecordPaymentResult carries the ID of the recorded payment
type RecordPaymentResult struct {
	PaymentID uuid.UUID `json:"payment_id"`
}

// DeleteInvoiceCommand removes an invoice
type DeleteInvoiceCommand struct {
	InvoiceID uuid.UUID
}

// buildLineItems converts line inputs; prices without a currency take defaultCurrency
func buildLineItems(inputs []LineItemInput, defaultCurrency valueobject.Currency) ([]invoicing.LineItem, error) {
	if len(inputs) == 0 {
		return nil, shared.NewValidationError("invoice must have at least one line item")
	}
	items := make([]invoicing.LineItem, 0, len(inputs))
	for i, in := range inputs {
		price, err := in.UnitPrice.WithDefaultCurrency(defaultCurrency).ToMoney()
		if err != nil {
			return nil, shared.NewValidationError("line item %d: %s", i+1, err.Error())
		}
		item, err := invoicing.NewLineItem(in.Description, in.Quantity, price)
		if err != nil {
			return nil, shared.NewValidationError("line item %d: %s", i+1, err.Error())
		}
		items = append(items, item)
	}
	return items, nil
}
