package invoicing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/invoiceme/backend/internal/domain/invoicing"
	"github.com/invoiceme/backend/internal/domain/shared"
	"github.com/invoiceme/backend/internal/infrastructure/telemetry"
)

// RecordPaymentHandler records payments against invoices
type RecordPaymentHandler struct {
	repo      invoicing.InvoiceRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewRecordPaymentHandler creates a new RecordPaymentHandler
func NewRecordPaymentHandler(repo invoicing.InvoiceRepository, publisher shared.EventPublisher, logger *zap.Logger) *RecordPaymentHandler {
	return &RecordPaymentHandler{repo: repo, publisher: publisher, logger: logger}
}

// Handle records the payment. Replaying a command whose PaymentID is already
// on the invoice returns the same result without changing anything.
func (h *RecordPaymentHandler) Handle(ctx context.Context, cmd RecordPaymentCommand) (*RecordPaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "record_payment")
	defer span.End()
	span.SetAttributes(telemetry.AttrInvoiceID.String(cmd.InvoiceID.String()))

	invoice, err := h.repo.FindByID(ctx, cmd.InvoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	amount, err := cmd.Amount.WithDefaultCurrency(invoice.Currency()).ToMoney()
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	paymentID := uuid.New()
	if cmd.PaymentID != nil {
		paymentID = *cmd.PaymentID
	}
	payment, err := invoicing.NewPaymentWithID(paymentID, amount, cmd.PaymentDate, invoicing.PaymentMethod(cmd.Method), cmd.Reference)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(
		telemetry.AttrPaymentID.String(paymentID.String()),
		telemetry.AttrPaymentAmount.String(amount.String()),
	)

	if invoice.HasPayment(paymentID) {
		h.logger.Info("Payment already recorded, skipping",
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("payment_id", paymentID.String()),
		)
		return &RecordPaymentResult{PaymentID: paymentID}, nil
	}

	if err := invoice.RecordPayment(payment); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	events := invoice.PullDomainEvents()
	if err := h.repo.SaveWithEvents(ctx, invoice, events); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	publishEvents(ctx, h.publisher, h.logger, events)

	span.SetAttributes(telemetry.AttrInvoiceStatus.String(invoice.Status().String()))
	h.logger.Info("Payment recorded",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("payment_id", paymentID.String()),
		zap.String("amount", amount.String()),
		zap.String("balance", invoice.CalculateBalance().String()),
		zap.String("status", invoice.Status().String()),
	)
	return &RecordPaymentResult{PaymentID: paymentID}, nil
}
