package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/invoiceme/backend/internal/domain/invoicing"
)

// RedisInvoiceNumberSequence allocates invoice numbers with INCR on one key per prefix and year,
// so numbering restarts at 000001 every January.
type RedisInvoiceNumberSequence struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

// NewRedisInvoiceNumberSequence creates a sequence for the given number prefix
func NewRedisInvoiceNumberSequence(client redis.Cmdable, prefix string) *RedisInvoiceNumberSequence {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = invoicing.DefaultInvoiceNumberPrefix
	}
	return &RedisInvoiceNumberSequence{client: client, prefix: prefix, now: time.Now}
}

// Next returns the next number for the current UTC year
func (s *RedisInvoiceNumberSequence) Next(ctx context.Context) (invoicing.InvoiceNumber, error) {
	year := s.now().UTC().Year()
	seq, err := s.client.Incr(ctx, s.key(year)).Result()
	if err != nil {
		return "", fmt.Errorf("failed to increment invoice sequence: %w", err)
	}
	return invoicing.FormatInvoiceNumber(s.prefix, year, seq)
}

func (s *RedisInvoiceNumberSequence) key(year int) string {
	return fmt.Sprintf("invoice:seq:%s:%d", s.prefix, year)
}

var _ invoicing.InvoiceNumberSequence = (*RedisInvoiceNumberSequence)(nil)
