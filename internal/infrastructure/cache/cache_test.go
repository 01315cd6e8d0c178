package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/invoiceme/backend/internal/infrastructure/config"
)

func TestInMemoryIdempotencyStore(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	isNew, err := store.MarkProcessed(ctx, "evt-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = store.MarkProcessed(ctx, "evt-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, isNew, "second mark within the TTL is a duplicate")

	processed, err := store.IsProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, processed)

	now = now.Add(2 * time.Hour)
	processed, err = store.IsProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, processed, "expired IDs are forgotten")

	isNew, err = store.MarkProcessed(ctx, "evt-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew)
}

func TestInMemoryIdempotencyStore_Sweep(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = store.MarkProcessed(ctx, "short", time.Minute)
	_, _ = store.MarkProcessed(ctx, "long", time.Hour)
	now = now.Add(10 * time.Minute)
	store.sweep()

	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestNewIdempotencyStore_FallsBackToMemory(t *testing.T) {
	cfg := &config.Config{}
	cfg.Event.IdempotencyBackend = config.BackendRedis
	cfg.Redis = config.RedisConfig{Host: "127.0.0.1", Port: 1}

	store, err := NewIdempotencyStore(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &InMemoryIdempotencyStore{}, store)
}

func TestNewIdempotencyStore_ProductionRequiresRedis(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Env = "production"
	cfg.Event.IdempotencyBackend = config.BackendRedis
	cfg.Redis = config.RedisConfig{Host: "127.0.0.1", Port: 1}

	_, err := NewIdempotencyStore(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestRedisInvoiceNumberSequence_Key(t *testing.T) {
	seq := NewRedisInvoiceNumberSequence(nil, " acme ")
	assert.Equal(t, "invoice:seq:ACME:2026", seq.key(2026))
	assert.Equal(t, "invoice:seq:INV:2026", NewRedisInvoiceNumberSequence(nil, "").key(2026))
}

// redisClient connects to INVOICE_TEST_REDIS_ADDR or skips the test
func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("INVOICE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("INVOICE_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisInvoiceNumberSequence_Next(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	seq := NewRedisInvoiceNumberSequence(client, "TST")
	seq.now = func() time.Time { return time.Date(2031, 6, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { client.Del(ctx, seq.key(2031)) })
	client.Del(ctx, seq.key(2031))

	first, err := seq.Next(ctx)
	require.NoError(t, err)
	second, err := seq.Next(ctx)
	require.NoError(t, err)

	assert.Equal(t, "TST-2031-000001", first.String())
	assert.Equal(t, "TST-2031-000002", second.String())
}

func TestRedisIdempotencyStore(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	store := NewRedisIdempotencyStore(client, "test:processed:")
	eventID := uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, "test:processed:"+eventID) })

	isNew, err := store.MarkProcessed(ctx, eventID, time.Minute)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = store.MarkProcessed(ctx, eventID, time.Minute)
	require.NoError(t, err)
	assert.False(t, isNew)

	processed, err := store.IsProcessed(ctx, eventID)
	require.NoError(t, err)
	assert.True(t, processed)
}
