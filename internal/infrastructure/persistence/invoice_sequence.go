package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/invoiceme/backend/internal/domain/invoicing"
)

// upsertSequenceSQL bumps the counter in a single statement so concurrent
// callers on any instance never receive the same value. Works on postgres and sqlite.
const upsertSequenceSQL = `INSERT INTO invoice_sequences (prefix, year, last_value, updated_at)
VALUES (?, ?, 1, ?)
ON CONFLICT (prefix, year) DO UPDATE
SET last_value = invoice_sequences.last_value + 1, updated_at = excluded.updated_at
RETURNING last_value`

// GormInvoiceNumberSequence allocates invoice numbers from the invoice_sequences table.
// Numbering restarts for every prefix and calendar year.
type GormInvoiceNumberSequence struct {
	db     *gorm.DB
	prefix string
	now    func() time.Time
}

// NewGormInvoiceNumberSequence creates a database backed sequence
func NewGormInvoiceNumberSequence(db *gorm.DB, prefix string) *GormInvoiceNumberSequence {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = invoicing.DefaultInvoiceNumberPrefix
	}
	return &GormInvoiceNumberSequence{db: db, prefix: prefix, now: time.Now}
}

// Next returns the next invoice number for the current UTC year
func (s *GormInvoiceNumberSequence) Next(ctx context.Context) (invoicing.InvoiceNumber, error) {
	now := s.now().UTC()
	var value int64
	if err := s.db.WithContext(ctx).Raw(upsertSequenceSQL, s.prefix, now.Year(), now).Scan(&value).Error; err != nil {
		return "", fmt.Errorf("failed to increment invoice sequence: %w", err)
	}
	return invoicing.FormatInvoiceNumber(s.prefix, now.Year(), value)
}

var _ invoicing.InvoiceNumberSequence = (*GormInvoiceNumberSequence)(nil)
