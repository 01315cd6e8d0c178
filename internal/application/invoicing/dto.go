package invoicing

import (
	"time"

	"github.com/google/uuid"

	"github.com/invoiceme/backend/internal/domain/invoicing"
	"github.com/invoiceme/backend/internal/domain/shared/valueobject"
)

// LineItemView is the read projection of a line item
type LineItemView struct {
	Description string            `json:"description"`
	Quantity    string            `json:"quantity"`
	UnitPrice   valueobject.Money `json:"unit_price"`
	Subtotal    valueobject.Money `json:"subtotal"`
}

// PaymentView is the read projection of a payment
type PaymentView struct {
	ID          uuid.UUID         `json:"id"`
	Amount      valueobject.Money `json:"amount"`
	PaymentDate time.Time         `json:"payment_date"`
	Method      string            `json:"method"`
	Reference   string            `json:"reference,omitempty"`
}

// InvoiceView is the full read projection of an invoice
type InvoiceView struct {
	ID            uuid.UUID         `json:"id"`
	InvoiceNumber string            `json:"invoice_number"`
	CustomerID    uuid.UUID         `json:"customer_id"`
	IssueDate     time.Time         `json:"issue_date"`
	DueDate       time.Time         `json:"due_date"`
	Status        string            `json:"status"`
	Currency      string            `json:"currency"`
	TaxRate       string            `json:"tax_rate"`
	Notes         string            `json:"notes,omitempty"`
	LineItems     []LineItemView    `json:"line_items"`
	Payments      []PaymentView     `json:"payments"`
	Subtotal      valueobject.Money `json:"subtotal"`
	Tax           valueobject.Money `json:"tax"`
	Total         valueobject.Money `json:"total"`
	AmountPaid    valueobject.Money `json:"amount_paid"`
	Balance       valueobject.Money `json:"balance"`
	Overdue       bool              `json:"overdue"`
	Version       int               `json:"version"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// InvoiceSummary is the list projection of an invoice
type InvoiceSummary struct {
	ID            uuid.UUID         `json:"id"`
	InvoiceNumber string            `json:"invoice_number"`
	CustomerID    uuid.UUID         `json:"customer_id"`
	IssueDate     time.Time         `json:"issue_date"`
	DueDate       time.Time         `json:"due_date"`
	Status        string            `json:"status"`
	Total         valueobject.Money `json:"total"`
	Balance       valueobject.Money `json:"balance"`
	Overdue       bool              `json:"overdue"`
}

// ToInvoiceView projects an invoice for readers
func ToInvoiceView(i *invoicing.Invoice, now time.Time) InvoiceView {
	items := i.LineItems()
	itemViews := make([]LineItemView, len(items))
	for idx, item := range items {
		itemViews[idx] = LineItemView{
			Description: item.Description(),
			Quantity:    item.Quantity().String(),
			UnitPrice:   item.UnitPrice(),
			Subtotal:    item.Subtotal(),
		}
	}

	payments := i.Payments()
	paymentViews := make([]PaymentView, len(payments))
	for idx, p := range payments {
		paymentViews[idx] = PaymentView{
			ID:          p.ID(),
			Amount:      p.Amount(),
			PaymentDate: p.PaymentDate(),
			Method:      p.Method().String(),
			Reference:   p.Reference(),
		}
	}

	return InvoiceView{
		ID:            i.ID,
		InvoiceNumber: i.InvoiceNumber().String(),
		CustomerID:    i.CustomerID(),
		IssueDate:     i.IssueDate(),
		DueDate:       i.DueDate(),
		Status:        i.Status().String(),
		Currency:      i.Currency().String(),
		TaxRate:       i.TaxRate().String(),
		Notes:         i.Notes(),
		LineItems:     itemViews,
		Payments:      paymentViews,
		Subtotal:      i.CalculateSubtotal(),
		Tax:           i.CalculateTax(),
		Total:         i.CalculateTotal(),
		AmountPaid:    i.CalculateAmountPaid(),
		Balance:       i.CalculateBalance(),
		Overdue:       i.IsOverdue(now),
		Version:       i.GetVersion(),
		CreatedAt:     i.GetCreatedAt(),
		UpdatedAt:     i.GetUpdatedAt(),
	}
}

// ToInvoiceSummary projects an invoice for list views
func ToInvoiceSummary(i *invoicing.Invoice, now time.Time) InvoiceSummary {
	return InvoiceSummary{
		ID:            i.ID,
		InvoiceNumber: i.InvoiceNumber().String(),
		CustomerID:    i.CustomerID(),
		IssueDate:     i.IssueDate(),
		DueDate:       i.DueDate(),
		Status:        i.Status().String(),
		Total:         i.CalculateTotal(),
		Balance:       i.CalculateBalance(),
		Overdue:       i.IsOverdue(now),
	}
}
