package cache

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/invoiceme/backend/internal/domain/shared"
	"github.com/invoiceme/backend/internal/infrastructure/config"
)

// NewIdempotencyStore builds the store selected by event.idempotency_backend.
// When Redis is selected but unreachable it falls back to memory and says so.
func NewIdempotencyStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (shared.IdempotencyStore, error) {
	switch cfg.Event.IdempotencyBackend {
	case config.BackendMemory:
		return NewInMemoryIdempotencyStore(), nil
	case config.BackendRedis:
		client, err := NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			if cfg.IsProduction() {
				return nil, fmt.Errorf("redis idempotency store unavailable: %w", err)
			}
			logger.Warn("Redis unavailable, using in-memory idempotency store", zap.Error(err))
			return NewInMemoryIdempotencyStore(), nil
		}
		logger.Info("Using Redis idempotency store", zap.String("addr", cfg.Redis.Addr()))
		return NewRedisIdempotencyStore(client, ""), nil
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", cfg.Event.IdempotencyBackend)
	}
}
