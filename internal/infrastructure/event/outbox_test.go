package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/invoiceme/backend/internal/domain/shared"
)

func newTestSerializer() *EventSerializer {
	s := NewEventSerializer()
	s.Register("Created", &testEvent{})
	s.Register("Sent", &testEvent{})
	return s
}

// failingPublisher rejects every event
type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, ...shared.DomainEvent) error {
	return errors.New("bus unavailable")
}

func TestOutboxPublisher_PublishWithTx(t *testing.T) {
	db := setupOutboxDB(t)
	repo := NewGormOutboxRepository(db)
	publisher := NewOutboxPublisher(newTestSerializer())
	ctx := context.Background()

	require.NoError(t, publisher.PublishWithTx(ctx, db, newTestEvent("Created"), newTestEvent("Sent")))
	require.NoError(t, publisher.PublishWithTx(ctx, db))

	pending, err := repo.FindPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.ElementsMatch(t, []string{"Created", "Sent"}, []string{pending[0].EventType, pending[1].EventType})
	assert.Equal(t, shared.OutboxStatusPending, pending[0].Status)
	assert.Contains(t, string(pending[0].Payload), `"data":"test data"`)
}

func TestOutboxPublisher_RollsBackWithTransaction(t *testing.T) {
	db := setupOutboxDB(t)
	repo := NewGormOutboxRepository(db)
	publisher := NewOutboxPublisher(newTestSerializer())
	ctx := context.Background()
	errAggregate := errors.New("aggregate write failed")

	err := db.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, publisher.SaveEvents(ctx, tx, newTestEvent("Created")))
		return errAggregate
	})
	require.ErrorIs(t, err, errAggregate)

	pending, err := repo.FindPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "entries commit only with the surrounding transaction")
}

func TestOutboxPublisher_SaveEventsRejectsForeignTx(t *testing.T) {
	publisher := NewOutboxPublisher(newTestSerializer())

	err := publisher.SaveEvents(context.Background(), "not a transaction", newTestEvent("Created"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "*gorm.DB")
}

func TestOutboxPublisher_WithMaxRetries(t *testing.T) {
	db := setupOutboxDB(t)
	repo := NewGormOutboxRepository(db)
	ctx := context.Background()

	require.NoError(t, NewOutboxPublisher(newTestSerializer()).WithMaxRetries(2).PublishWithTx(ctx, db, newTestEvent("Sent")))

	pending, err := repo.FindPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].MaxRetries)
}

func TestGormOutboxRepository_ClaimAndComplete(t *testing.T) {
	repo := NewGormOutboxRepository(setupOutboxDB(t))
	ctx := context.Background()

	entry := shared.NewOutboxEntry(newTestEvent("Created"), []byte(`{}`))
	require.NoError(t, repo.Save(ctx, entry))

	claimed, err := repo.MarkProcessing(ctx, []uuid.UUID{entry.ID})
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, shared.OutboxStatusProcessing, claimed[0].Status)

	again, err := repo.MarkProcessing(ctx, []uuid.UUID{entry.ID})
	require.NoError(t, err)
	assert.Empty(t, again, "an entry is claimed only once")

	claimed[0].MarkSent()
	require.NoError(t, repo.Update(ctx, claimed[0]))

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[shared.OutboxStatusSent])

	deleted, err := repo.DeleteOlderThan(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.FindByID(ctx, entry.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGormOutboxRepository_RetryableAndDead(t *testing.T) {
	repo := NewGormOutboxRepository(setupOutboxDB(t))
	ctx := context.Background()

	due := shared.NewOutboxEntry(newTestEvent("Created"), []byte(`{}`))
	past := time.Now().Add(-time.Minute)
	due.Status = shared.OutboxStatusFailed
	due.NextRetryAt = &past

	dead := shared.NewOutboxEntry(newTestEvent("Created"), []byte(`{}`))
	dead.Status = shared.OutboxStatusDead

	require.NoError(t, repo.Save(ctx, due, dead))

	retryable, err := repo.FindRetryable(ctx, time.Now(), 10)
	require.NoError(t, err)
	require.Len(t, retryable, 1)
	assert.Equal(t, due.ID, retryable[0].ID)

	deadEntries, total, err := repo.FindDead(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, deadEntries, 1)
	assert.Equal(t, dead.ID, deadEntries[0].ID)
}

func TestOutboxProcessor_DeliversToBus(t *testing.T) {
	db := setupOutboxDB(t)
	repo := NewGormOutboxRepository(db)
	serializer := newTestSerializer()
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler("Created")
	bus.Subscribe(handler)
	ctx := context.Background()

	event := newTestEvent("Created")
	require.NoError(t, NewOutboxPublisher(serializer).PublishWithTx(ctx, db, event))

	processor := NewOutboxProcessor(repo, bus, serializer, DefaultOutboxProcessorConfig(), zap.NewNop())
	assert.Equal(t, BatchResult{Claimed: 1, Delivered: 1}, processor.ProcessOnce(ctx))

	require.Equal(t, 1, handler.count())
	delivered := handler.handled[0].(*testEvent)
	assert.Equal(t, event.EventID(), delivered.EventID())
	assert.Equal(t, "test data", delivered.Data)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[shared.OutboxStatusSent])

	assert.Zero(t, processor.ProcessOnce(ctx))
	assert.Equal(t, 1, handler.count(), "sent entries are not redelivered")
}

func TestOutboxProcessor_FailureSchedulesRetry(t *testing.T) {
	db := setupOutboxDB(t)
	repo := NewGormOutboxRepository(db)
	serializer := newTestSerializer()
	ctx := context.Background()

	require.NoError(t, NewOutboxPublisher(serializer).PublishWithTx(ctx, db, newTestEvent("Sent")))

	processor := NewOutboxProcessor(repo, failingPublisher{}, serializer, DefaultOutboxProcessorConfig(), zap.NewNop())
	assert.Equal(t, BatchResult{Claimed: 1, Failed: 1}, processor.ProcessOnce(ctx))

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[shared.OutboxStatusFailed])

	retryable, err := repo.FindRetryable(ctx, time.Now().Add(time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, retryable, 1)
	assert.Equal(t, 1, retryable[0].RetryCount)
	assert.Equal(t, "bus unavailable", retryable[0].LastError)
}

func TestOutboxProcessor_UnknownTypeEventuallyDies(t *testing.T) {
	repo := NewGormOutboxRepository(setupOutboxDB(t))
	ctx := context.Background()

	entry := shared.NewOutboxEntry(newTestEvent("Mystery"), []byte(`{}`))
	entry.MaxRetries = 1
	require.NoError(t, repo.Save(ctx, entry))

	processor := NewOutboxProcessor(repo, NewInMemoryEventBus(zap.NewNop()), newTestSerializer(), DefaultOutboxProcessorConfig(), zap.NewNop())
	assert.Equal(t, BatchResult{Claimed: 1, Dead: 1}, processor.ProcessOnce(ctx))

	stored, err := repo.FindByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, shared.OutboxStatusDead, stored.Status)
	assert.Contains(t, stored.LastError, "unknown event type")
}

func TestOutboxProcessor_StartStop(t *testing.T) {
	repo := NewGormOutboxRepository(setupOutboxDB(t))
	config := DefaultOutboxProcessorConfig()
	config.PollInterval = 10 * time.Millisecond
	config.CleanupEnabled = false

	processor := NewOutboxProcessor(repo, NewInMemoryEventBus(zap.NewNop()), newTestSerializer(), config, zap.NewNop())
	require.NoError(t, processor.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, processor.Stop(ctx))
}

func TestIdempotentHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("handles each event once", func(t *testing.T) {
		inner := newTestHandler("Created")
		handler := NewIdempotentHandler(inner, newMemoryIdempotencyStore(), zap.NewNop(), WithIdempotencyTTL(time.Minute))
		event := newTestEvent("Created")

		require.NoError(t, handler.Handle(ctx, event))
		require.NoError(t, handler.Handle(ctx, event))

		assert.Equal(t, 1, inner.count())
		assert.Equal(t, IdempotencyStats{EventsProcessed: 1, EventsDuplicate: 1}, handler.Stats())
		assert.Equal(t, []string{"Created"}, handler.EventTypes())
	})

	t.Run("prefixed handlers sharing a store both handle the event", func(t *testing.T) {
		store := newMemoryIdempotencyStore()
		first := newTestHandler("Created")
		second := newTestHandler("Created")
		h1 := NewIdempotentHandler(first, store, zap.NewNop(), WithIdempotencyKeyPrefix("audit"))
		h2 := NewIdempotentHandler(second, store, zap.NewNop(), WithIdempotencyKeyPrefix("metrics"))
		event := newTestEvent("Created")

		require.NoError(t, h1.Handle(ctx, event))
		require.NoError(t, h2.Handle(ctx, event))
		require.NoError(t, h2.Handle(ctx, event))

		assert.Equal(t, 1, first.count())
		assert.Equal(t, 1, second.count())
		assert.Equal(t, int64(1), h2.Stats().EventsDuplicate)
	})

	t.Run("store failure still handles the event", func(t *testing.T) {
		inner := newTestHandler("Created")
		store := newMemoryIdempotencyStore()
		store.err = errors.New("redis timeout")
		handler := NewIdempotentHandler(inner, store, zap.NewNop())

		require.NoError(t, handler.Handle(ctx, newTestEvent("Created")))
		assert.Equal(t, 1, inner.count())
	})

	t.Run("handler errors are returned and counted", func(t *testing.T) {
		inner := newTestHandler("Created")
		inner.err = errors.New("smtp refused")
		handler := NewIdempotentHandler(inner, newMemoryIdempotencyStore(), zap.NewNop())

		assert.Error(t, handler.Handle(ctx, newTestEvent("Created")))
		assert.Equal(t, int64(1), handler.Stats().EventsFailed)
	})
}
