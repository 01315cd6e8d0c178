package handler

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/invoiceme/backend/internal/domain/shared"
	"github.com/invoiceme/backend/internal/infrastructure/logger"
)

// ConflictRetryPolicy bounds how often a command that lost an optimistic
// locking race is re-run against a freshly loaded aggregate
type ConflictRetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultConflictRetryPolicy retries three times starting at 25ms
func DefaultConflictRetryPolicy() ConflictRetryPolicy {
	return ConflictRetryPolicy{
		MaxRetries:      3,
		InitialInterval: 25 * time.Millisecond,
		MaxInterval:     500 * time.Millisecond,
	}
}

// retryOnConflict runs op and re-runs it while it fails with CONCURRENCY_CONFLICT.
// Every other error ends the loop immediately. The wait between attempts grows
// exponentially with jitter and never outlives ctx.
func retryOnConflict(ctx context.Context, policy ConflictRetryPolicy, op func() error) error {
	if policy.MaxRetries <= 0 {
		return op()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = policy.InitialInterval
	b.MaxInterval = policy.MaxInterval
	b.RandomizationFactor = 0.5

	log := logger.FromContext(ctx)
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := op()
		if err != nil && !errors.Is(err, shared.ErrConcurrencyConflict) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(policy.MaxRetries+1)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			log.Debug("Concurrency conflict, retrying", zap.Duration("wait", wait), zap.Error(err))
		}),
	)
	return err
}
