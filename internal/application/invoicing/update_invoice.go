package invoicing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/invoiceme/backend/internal/domain/invoicing"
	"github.com/invoiceme/backend/internal/domain/shared"
	"github.com/invoiceme/backend/internal/infrastructure/telemetry"
)

// UpdateInvoiceHandler edits a draft invoice's line items, due date, tax rate and notes
type UpdateInvoiceHandler struct {
	repo      invoicing.InvoiceRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewUpdateInvoiceHandler creates a new UpdateInvoiceHandler
func NewUpdateInvoiceHandler(repo invoicing.InvoiceRepository, publisher shared.EventPublisher, logger *zap.Logger) *UpdateInvoiceHandler {
	return &UpdateInvoiceHandler{repo: repo, publisher: publisher, logger: logger}
}

// Handle applies all four edits and publishes a single InvoiceUpdated event
func (h *UpdateInvoiceHandler) Handle(ctx context.Context, cmd UpdateInvoiceCommand) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "update")
	defer span.End()
	span.SetAttributes(telemetry.AttrInvoiceID.String(cmd.InvoiceID.String()))

	invoice, err := h.repo.FindByID(ctx, cmd.InvoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	items, err := buildLineItems(cmd.LineItems, invoice.Currency())
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if err := h.apply(invoice, items, cmd); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	events := consolidateUpdatedEvents(invoice.PullDomainEvents())
	if err := h.repo.SaveWithEvents(ctx, invoice, events); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to save invoice: %w", err)
	}

	publishEvents(ctx, h.publisher, h.logger, events)

	h.logger.Info("Invoice updated",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber().String()),
		zap.String("total", invoice.CalculateTotal().String()),
	)
	return nil
}

func (h *UpdateInvoiceHandler) apply(invoice *invoicing.Invoice, items []invoicing.LineItem, cmd UpdateInvoiceCommand) error {
	if err := invoice.UpdateLineItems(items); err != nil {
		return err
	}
	if err := invoice.UpdateDueDate(cmd.DueDate); err != nil {
		return err
	}
	if err := invoice.UpdateTaxRate(cmd.TaxRate); err != nil {
		return err
	}
	return invoice.UpdateNotes(cmd.Notes)
}
