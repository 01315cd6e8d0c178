package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/invoiceme/backend/internal/domain/shared"
)

const defaultIdempotencyKeyPrefix = "invoice:event:processed:"

// RedisIdempotencyStore shares processed event IDs between service instances
type RedisIdempotencyStore struct {
	client    redis.Cmdable
	keyPrefix string
	closer    func() error
}

// NewRedisIdempotencyStore creates a store on an existing client.
// Close on the store also closes the client.
func NewRedisIdempotencyStore(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = defaultIdempotencyKeyPrefix
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix, closer: client.Close}
}

// MarkProcessed uses SET NX so concurrent consumers agree on a single winner
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+eventID, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark event %s as processed: %w", eventID, err)
	}
	return ok, nil
}

func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.keyPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check event %s: %w", eventID, err)
	}
	return n > 0, nil
}

func (s *RedisIdempotencyStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
