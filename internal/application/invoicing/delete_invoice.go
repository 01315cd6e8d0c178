package invoicing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/invoiceme/backend/internal/domain/invoicing"
	"github.com/invoiceme/backend/internal/infrastructure/telemetry"
)

// DeleteInvoiceHandler removes invoices
type DeleteInvoiceHandler struct {
	repo   invoicing.InvoiceRepository
	logger *zap.Logger
}

// NewDeleteInvoiceHandler creates a new DeleteInvoiceHandler
func NewDeleteInvoiceHandler(repo invoicing.InvoiceRepository, logger *zap.Logger) *DeleteInvoiceHandler {
	return &DeleteInvoiceHandler{repo: repo, logger: logger}
}

func (h *DeleteInvoiceHandler) Handle(ctx context.Context, cmd DeleteInvoiceCommand) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "delete")
	defer span.End()
	span.SetAttributes(telemetry.AttrInvoiceID.String(cmd.InvoiceID.String()))

	invoice, err := h.repo.FindByID(ctx, cmd.InvoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if err := h.repo.Delete(ctx, invoice.ID); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	h.logger.Info("Invoice deleted",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber().String()),
		zap.String("status", invoice.Status().String()),
	)
	return nil
}
