package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invoiceme/backend/internal/domain/invoicing"
	"github.com/invoiceme/backend/internal/domain/shared/valueobject"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// Line items and payments live in their own tables and are loaded with Preload.
type InvoiceModel struct {
	AggregateModel
	CustomerID    uuid.UUID               `gorm:"type:uuid;not null;index"`
	InvoiceNumber string                  `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoices_number"`
	IssueDate     time.Time               `gorm:"type:date;not null"`
	DueDate       time.Time               `gorm:"type:date;not null;index"`
	Status        invoicing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Currency      string                  `gorm:"type:char(3);not null"`
	TaxRate       decimal.Decimal         `gorm:"type:decimal(9,4);not null;default:0"`
	Notes         string                  `gorm:"type:text"`
	LineItems     []InvoiceLineItemModel  `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Payments      []InvoicePaymentModel   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceLineItemModel is one billed line; Position keeps the entry order.
type InvoiceLineItemModel struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_line_items_invoice_position,priority:1"`
	Position    int             `gorm:"not null;uniqueIndex:idx_line_items_invoice_position,priority:2"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (InvoiceLineItemModel) TableName() string {
	return "invoice_line_items"
}

// InvoicePaymentModel is a payment recorded against an invoice. Payments are append-only
// and Position is the order in which they were recorded.
type InvoicePaymentModel struct {
	ID          uuid.UUID               `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_payments_position,priority:1"`
	Position    int                     `gorm:"not null;uniqueIndex:idx_invoice_payments_position,priority:2"`
	Amount      decimal.Decimal         `gorm:"type:decimal(18,2);not null"`
	PaymentDate time.Time               `gorm:"type:date;not null"`
	Method      invoicing.PaymentMethod `gorm:"type:varchar(20);not null"`
	Reference   string                  `gorm:"type:varchar(100)"`
	CreatedAt   time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoicePaymentModel) TableName() string {
	return "invoice_payments"
}

// ToDomain rebuilds the Invoice aggregate without emitting events.
// Line items are re-validated; a stored row that fails is reported as an error.
func (m *InvoiceModel) ToDomain() (*invoicing.Invoice, error) {
	currency := valueobject.Currency(m.Currency)

	items := make([]invoicing.LineItem, 0, len(m.LineItems))
	for _, row := range m.LineItems {
		price, err := valueobject.NewMoney(row.UnitPrice, currency)
		if err != nil {
			return nil, fmt.Errorf("invoice %s line %d: %w", m.ID, row.Position, err)
		}
		item, err := invoicing.NewLineItem(row.Description, row.Quantity, price)
		if err != nil {
			return nil, fmt.Errorf("invoice %s line %d: %w", m.ID, row.Position, err)
		}
		items = append(items, item)
	}

	payments := make([]invoicing.Payment, 0, len(m.Payments))
	for _, row := range m.Payments {
		amount, err := valueobject.NewMoney(row.Amount, currency)
		if err != nil {
			return nil, fmt.Errorf("invoice %s payment %s: %w", m.ID, row.ID, err)
		}
		payments = append(payments, invoicing.ReconstructPayment(row.ID, amount, row.PaymentDate, row.Method, row.Reference))
	}

	return invoicing.ReconstructInvoice(invoicing.InvoiceSnapshot{
		ID:            m.ID,
		Version:       m.Version,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		CustomerID:    m.CustomerID,
		InvoiceNumber: invoicing.InvoiceNumber(m.InvoiceNumber),
		IssueDate:     m.IssueDate.UTC(),
		DueDate:       m.DueDate.UTC(),
		Status:        m.Status,
		Currency:      currency,
		LineItems:     items,
		Payments:      payments,
		Notes:         m.Notes,
		TaxRate:       m.TaxRate,
	})
}

// FromDomain populates the model, including children, from an Invoice.
// Payment rows are stamped with the invoice's UpdatedAt; existing rows keep theirs.
func (m *InvoiceModel) FromDomain(inv *invoicing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.CustomerID = inv.CustomerID()
	m.InvoiceNumber = inv.InvoiceNumber().String()
	m.IssueDate = inv.IssueDate()
	m.DueDate = inv.DueDate()
	m.Status = inv.Status()
	m.Currency = inv.Currency().String()
	m.TaxRate = inv.TaxRate()
	m.Notes = inv.Notes()

	items := inv.LineItems()
	m.LineItems = make([]InvoiceLineItemModel, len(items))
	for i, item := range items {
		m.LineItems[i] = InvoiceLineItemModel{
			InvoiceID:   inv.ID,
			Position:    i + 1,
			Description: item.Description(),
			Quantity:    item.Quantity(),
			UnitPrice:   item.UnitPrice().Amount(),
			Subtotal:    item.Subtotal().Amount(),
		}
	}

	payments := inv.Payments()
	m.Payments = make([]InvoicePaymentModel, len(payments))
	for i, p := range payments {
		m.Payments[i] = InvoicePaymentModel{
			ID:          p.ID(),
			InvoiceID:   inv.ID,
			Position:    i + 1,
			Amount:      p.Amount().Amount(),
			PaymentDate: p.PaymentDate(),
			Method:      p.Method(),
			Reference:   p.Reference(),
			CreatedAt:   inv.UpdatedAt,
		}
	}
}

// InvoiceModelFromDomain creates a new persistence model from an Invoice.
func InvoiceModelFromDomain(inv *invoicing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}
