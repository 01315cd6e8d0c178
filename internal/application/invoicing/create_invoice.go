package invoicing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/invoiceme/backend/internal/domain/invoicing"
	"github.com/invoiceme/backend/internal/domain/shared"
	"github.com/invoiceme/backend/internal/infrastructure/telemetry"
)

// CreateInvoiceHandler creates draft invoices
type CreateInvoiceHandler struct {
	repo      invoicing.InvoiceRepository
	customers invoicing.CustomerChecker
	sequence  invoicing.InvoiceNumberSequence
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewCreateInvoiceHandler creates a new CreateInvoiceHandler
func NewCreateInvoiceHandler(
	repo invoicing.InvoiceRepository,
	customers invoicing.CustomerChecker,
	sequence invoicing.InvoiceNumberSequence,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *CreateInvoiceHandler {
	return &CreateInvoiceHandler{
		repo:      repo,
		customers: customers,
		sequence:  sequence,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle validates the customer, allocates an invoice number and saves a new draft
func (h *CreateInvoiceHandler) Handle(ctx context.Context, cmd CreateInvoiceCommand) (*CreateInvoiceResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create")
	defer span.End()
	span.SetAttributes(telemetry.AttrCustomerID.String(cmd.CustomerID.String()))

	items, err := buildLineItems(cmd.LineItems, "")
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	exists, err := h.customers.Exists(ctx, cmd.CustomerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to check customer: %w", err)
	}
	if !exists {
		err := shared.NewNotFoundError("customer", cmd.CustomerID)
		telemetry.RecordError(span, err)
		return nil, err
	}

	number, err := h.sequence.Next(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to allocate invoice number: %w", err)
	}

	invoice, err := invoicing.NewInvoice(invoicing.NewInvoiceParams{
		CustomerID:    cmd.CustomerID,
		InvoiceNumber: number,
		IssueDate:     cmd.IssueDate,
		DueDate:       cmd.DueDate,
		LineItems:     items,
		TaxRate:       cmd.TaxRate,
		Notes:         cmd.Notes,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	events := invoice.PullDomainEvents()
	if err := h.repo.SaveWithEvents(ctx, invoice, events); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	publishEvents(ctx, h.publisher, h.logger, events)

	span.SetAttributes(
		telemetry.AttrInvoiceID.String(invoice.ID.String()),
		telemetry.AttrInvoiceNumber.String(number.String()),
	)
	h.logger.Info("Invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", number.String()),
		zap.String("customer_id", cmd.CustomerID.String()),
		zap.String("total", invoice.CalculateTotal().String()),
	)

	return &CreateInvoiceResult{InvoiceID: invoice.ID, InvoiceNumber: number.String()}, nil
}
