package handler

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	invoicingapp "github.com/invoiceme/backend/internal/application/invoicing"
	"github.com/invoiceme/backend/internal/domain/shared"
	"github.com/invoiceme/backend/internal/interfaces/http/middleware"
)

// MoneyRequest is a monetary amount on the wire; amounts are decimal strings, never floats
type MoneyRequest struct {
	Amount   string `json:"amount" binding:"required,decimal"`
	Currency string `json:"currency" binding:"omitempty,len=3,uppercase"`
}

// LineItemRequest is one invoice line
type LineItemRequest struct {
	Description string       `json:"description" binding:"required,max=500"`
	Quantity    string       `json:"quantity" binding:"required,decimal"`
	UnitPrice   MoneyRequest `json:"unit_price"`
}

// CreateInvoiceRequest is the body of POST /invoices
type CreateInvoiceRequest struct {
	CustomerID string            `json:"customer_id" binding:"required,uuid"`
	IssueDate  string            `json:"issue_date" binding:"required,date"`
	DueDate    string            `json:"due_date" binding:"required,date"`
	LineItems  []LineItemRequest `json:"line_items" binding:"required,min=1,dive"`
	TaxRate    string            `json:"tax_rate" binding:"omitempty,decimal"`
	Notes      string            `json:"notes" binding:"max=2000"`
}

// UpdateInvoiceRequest is the body of PUT /invoices/:id; all four fields are replaced.
// Prices without a currency take the invoice's currency.
type UpdateInvoiceRequest struct {
	DueDate   string            `json:"due_date" binding:"required,date"`
	LineItems []LineItemRequest `json:"line_items" binding:"required,min=1,dive"`
	TaxRate   string            `json:"tax_rate" binding:"required,decimal"`
	Notes     string            `json:"notes" binding:"max=2000"`
}

// RecordPaymentRequest is the body of POST /invoices/:id/payments.
// A client chosen payment_id makes the call safe to retry. An amount without
// a currency is taken in the invoice's currency.
type RecordPaymentRequest struct {
	PaymentID   string       `json:"payment_id" binding:"omitempty,uuid"`
	Amount      MoneyRequest `json:"amount"`
	PaymentDate string       `json:"payment_date" binding:"required,date"`
	Method      string       `json:"method" binding:"required,oneof=CASH BANK_TRANSFER CREDIT_CARD DEBIT_CARD CHECK WIRE_TRANSFER OTHER"`
	Reference   string       `json:"reference" binding:"max=100"`
}

// ListInvoicesRequest holds the query parameters of GET /invoices
type ListInvoicesRequest struct {
	Status     string `form:"status" binding:"omitempty,oneof=DRAFT SENT PAID"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by" binding:"omitempty,oneof=created_at issue_date due_date invoice_number"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// parseDate reads a YYYY-MM-DD value as midnight UTC
func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(middleware.DateLayout, value)
	if err != nil {
		return time.Time{}, shared.NewValidationError("%s must be a date in YYYY-MM-DD format", field)
	}
	return t, nil
}

func parseDecimal(field, value string) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, shared.NewValidationError("%s must be a decimal number", field)
	}
	return d, nil
}

func (m MoneyRequest) toInput(defaultCurrency string) invoicingapp.MoneyInput {
	currency := m.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	return invoicingapp.MoneyInput{Amount: m.Amount, Currency: currency}
}

func toLineItemInputs(items []LineItemRequest, defaultCurrency string) ([]invoicingapp.LineItemInput, error) {
	inputs := make([]invoicingapp.LineItemInput, len(items))
	for i, item := range items {
		qty, err := parseDecimal("quantity", item.Quantity)
		if err != nil {
			return nil, err
		}
		inputs[i] = invoicingapp.LineItemInput{
			Description: item.Description,
			Quantity:    qty,
			UnitPrice:   item.UnitPrice.toInput(defaultCurrency),
		}
	}
	return inputs, nil
}

func (r CreateInvoiceRequest) toCommand(defaultCurrency string) (invoicingapp.CreateInvoiceCommand, error) {
	var cmd invoicingapp.CreateInvoiceCommand
	customerID, err := uuid.Parse(r.CustomerID)
	if err != nil {
		return cmd, shared.NewValidationError("customer_id must be a UUID")
	}
	issueDate, err := parseDate("issue_date", r.IssueDate)
	if err != nil {
		return cmd, err
	}
	dueDate, err := parseDate("due_date", r.DueDate)
	if err != nil {
		return cmd, err
	}
	items, err := toLineItemInputs(r.LineItems, defaultCurrency)
	if err != nil {
		return cmd, err
	}
	taxRate, err := parseDecimal("tax_rate", r.TaxRate)
	if err != nil {
		return cmd, err
	}
	return invoicingapp.CreateInvoiceCommand{
		CustomerID: customerID,
		IssueDate:  issueDate,
		DueDate:    dueDate,
		LineItems:  items,
		TaxRate:    taxRate,
		Notes:      r.Notes,
	}, nil
}

func (r UpdateInvoiceRequest) toCommand(invoiceID uuid.UUID) (invoicingapp.UpdateInvoiceCommand, error) {
	var cmd invoicingapp.UpdateInvoiceCommand
	dueDate, err := parseDate("due_date", r.DueDate)
	if err != nil {
		return cmd, err
	}
	items, err := toLineItemInputs(r.LineItems, "")
	if err != nil {
		return cmd, err
	}
	taxRate, err := parseDecimal("tax_rate", r.TaxRate)
	if err != nil {
		return cmd, err
	}
	return invoicingapp.UpdateInvoiceCommand{
		InvoiceID: invoiceID,
		LineItems: items,
		DueDate:   dueDate,
		TaxRate:   taxRate,
		Notes:     r.Notes,
	}, nil
}

func (r RecordPaymentRequest) toCommand(invoiceID uuid.UUID) (invoicingapp.RecordPaymentCommand, error) {
	var cmd invoicingapp.RecordPaymentCommand
	paymentDate, err := parseDate("payment_date", r.PaymentDate)
	if err != nil {
		return cmd, err
	}
	cmd = invoicingapp.RecordPaymentCommand{
		InvoiceID:   invoiceID,
		Amount:      r.Amount.toInput(""),
		PaymentDate: paymentDate,
		Method:      r.Method,
		Reference:   r.Reference,
	}
	if r.PaymentID != "" {
		id, err := uuid.Parse(r.PaymentID)
		if err != nil {
			return cmd, shared.NewValidationError("payment_id must be a UUID")
		}
		cmd.PaymentID = &id
	}
	return cmd, nil
}
