package invoicing

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/invoiceme/backend/internal/domain/shared"
)

// DefaultInvoiceNumberPrefix is used when no prefix is configured
const DefaultInvoiceNumberPrefix = "INV"

var invoiceNumberPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,9}-\d{4}-\d{6,}$`)

// InvoiceNumber is the human readable, unique number printed on an invoice,
// e.g. INV-2026-000042
type InvoiceNumber string

// FormatInvoiceNumber builds a number from a prefix, the issue year and a sequence value
func FormatInvoiceNumber(prefix string, year int, seq int64) (InvoiceNumber, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = DefaultInvoiceNumberPrefix
	}
	if seq <= 0 {
		return "", shared.NewValidationError("invoice sequence must be positive, got %d", seq)
	}
	return ParseInvoiceNumber(fmt.Sprintf("%s-%04d-%06d", prefix, year, seq))
}

// ParseInvoiceNumber validates the textual form of an invoice number
func ParseInvoiceNumber(s string) (InvoiceNumber, error) {
	s = strings.TrimSpace(s)
	if !invoiceNumberPattern.MatchString(s) {
		return "", shared.NewValidationError("invalid invoice number %q", s)
	}
	return InvoiceNumber(s), nil
}

func (n InvoiceNumber) String() string {
	return string(n)
}

func (n InvoiceNumber) IsEmpty() bool {
	return n == ""
}
