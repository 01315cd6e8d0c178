package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which event IDs a consumer has already handled,
// so redelivered outbox entries are applied at most once.
type IdempotencyStore interface {
	// MarkProcessed returns true if the ID was newly recorded, false if it was seen before
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, eventID string) (bool, error)
	Close() error
}

// DefaultIdempotencyTTL is how long a processed event ID is remembered
const DefaultIdempotencyTTL = 24 * time.Hour
