package invoicing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/invoiceme/backend/internal/domain/invoicing"
	"github.com/invoiceme/backend/internal/domain/shared"
	"github.com/invoiceme/backend/internal/infrastructure/telemetry"
)

// ListInvoicesQuery filters the invoice list
type ListInvoicesQuery struct {
	Page       int
	PageSize   int
	Status     string
	CustomerID *uuid.UUID
	OrderBy    string
	OrderDir   string
}

var invoiceSortColumns = map[string]bool{
	"created_at":     true,
	"issue_date":     true,
	"due_date":       true,
	"invoice_number": true,
}

// InvoiceQueryService is the read path; it never mutates aggregates
type InvoiceQueryService struct {
	repo invoicing.InvoiceRepository
	now  func() time.Time
}

// NewInvoiceQueryService creates a new InvoiceQueryService
func NewInvoiceQueryService(repo invoicing.InvoiceRepository) *InvoiceQueryService {
	return &InvoiceQueryService{repo: repo, now: time.Now}
}

// GetInvoice returns the full projection of one invoice
func (s *InvoiceQueryService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceView, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "get")
	defer span.End()

	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	view := ToInvoiceView(invoice, s.now())
	return &view, nil
}

// ListInvoices returns one page of invoice summaries
func (s *InvoiceQueryService) ListInvoices(ctx context.Context, q ListInvoicesQuery) (*shared.Paginated[InvoiceSummary], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "list")
	defer span.End()

	filter := invoicing.InvoiceFilter{
		Filter: shared.Filter{
			Page:     q.Page,
			PageSize: q.PageSize,
			OrderBy:  q.OrderBy,
			OrderDir: q.OrderDir,
		}.Normalize(),
		CustomerID: q.CustomerID,
	}
	if !invoiceSortColumns[filter.OrderBy] {
		return nil, shared.NewValidationError("cannot sort invoices by %q", q.OrderBy)
	}
	if q.Status != "" {
		status := invoicing.InvoiceStatus(q.Status)
		if !status.IsValid() {
			return nil, shared.NewValidationError("invalid invoice status %q", q.Status)
		}
		filter.Status = &status
	}

	invoices, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}

	now := s.now()
	items := make([]InvoiceSummary, len(invoices))
	for i, invoice := range invoices {
		items[i] = ToInvoiceSummary(invoice, now)
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}
