package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns DESC", "", "DESC"},
		{"ASC uppercase returns ASC", "ASC", "ASC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"desc lowercase returns DESC", "desc", "DESC"},
		{"invalid value returns DESC", "sideways", "DESC"},
		{"whitespace around ASC returns ASC", "  asc  ", "ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		allowed  map[string]bool
		expected string
	}{
		{"empty string returns default", "", InvoiceSortFields, "created_at"},
		{"invoice due date allowed", "due_date", InvoiceSortFields, "due_date"},
		{"invoice number allowed", "invoice_number", InvoiceSortFields, "invoice_number"},
		{"customer email allowed", "email", CustomerSortFields, "email"},
		{"customer column not valid for invoices", "email", InvoiceSortFields, "created_at"},
		{"case sensitive", "DUE_DATE", InvoiceSortFields, "created_at"},
		{"whitespace trimmed", "  name  ", CustomerSortFields, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, tt.allowed, "created_at"))
		})
	}
}

func TestSortFields_RejectInjection(t *testing.T) {
	payloads := []string{
		"due_date; DROP TABLE invoices;--",
		"status' OR '1'='1",
		"created_at UNION SELECT * FROM customers",
		"CASE WHEN 1=1 THEN status ELSE notes END",
		"name\n; DELETE FROM customers",
	}

	for _, payload := range payloads {
		assert.Equal(t, "created_at", ValidateSortField(payload, InvoiceSortFields, "created_at"), payload)
		assert.Equal(t, "created_at", ValidateSortField(payload, CustomerSortFields, "created_at"), payload)
		assert.Equal(t, "DESC", ValidateSortOrder(payload), payload)
	}
}
