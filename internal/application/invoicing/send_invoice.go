package invoicing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/invoiceme/backend/internal/domain/invoicing"
	"github.com/invoiceme/backend/internal/domain/shared"
	"github.com/invoiceme/backend/internal/infrastructure/telemetry"
)

// SendInvoiceHandler moves a draft invoice to SENT
type SendInvoiceHandler struct {
	repo      invoicing.InvoiceRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewSendInvoiceHandler creates a new SendInvoiceHandler
func NewSendInvoiceHandler(repo invoicing.InvoiceRepository, publisher shared.EventPublisher, logger *zap.Logger) *SendInvoiceHandler {
	return &SendInvoiceHandler{repo: repo, publisher: publisher, logger: logger}
}

func (h *SendInvoiceHandler) Handle(ctx context.Context, cmd SendInvoiceCommand) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "send")
	defer span.End()
	span.SetAttributes(telemetry.AttrInvoiceID.String(cmd.InvoiceID.String()))

	invoice, err := h.repo.FindByID(ctx, cmd.InvoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if err := invoice.Send(); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	events := invoice.PullDomainEvents()
	if err := h.repo.SaveWithEvents(ctx, invoice, events); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to save invoice: %w", err)
	}

	publishEvents(ctx, h.publisher, h.logger, events)

	h.logger.Info("Invoice sent",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber().String()),
		zap.String("customer_id", invoice.CustomerID().String()),
	)
	return nil
}
