package invoicing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInvoiceNumber(t *testing.T) {
	n, err := FormatInvoiceNumber("inv", 2026, 42)
	require.NoError(t, err)
	assert.Equal(t, InvoiceNumber("INV-2026-000042"), n)

	n, err = FormatInvoiceNumber("", 2026, 1234567)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-1234567", n.String())

	_, err = FormatInvoiceNumber("INV", 2026, 0)
	assert.Error(t, err)
}

func TestParseInvoiceNumber(t *testing.T) {
	_, err := ParseInvoiceNumber("INV-2026-000001")
	assert.NoError(t, err)

	for _, bad := range []string{"", "INV-26-000001", "inv-2026-000001", "INV-2026-12", "INV_2026_000001"} {
		_, err := ParseInvoiceNumber(bad)
		assert.Error(t, err, bad)
	}
}
