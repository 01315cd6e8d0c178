package event

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/invoiceme/backend/internal/domain/shared"
)

const outboxTracerName = "invoice-service/outbox"

type OutboxProcessorConfig struct {
	BatchSize        int
	PollInterval     time.Duration
	CleanupEnabled   bool
	CleanupRetention time.Duration // delivered entries older than this are purged
	CleanupInterval  time.Duration
}

func DefaultOutboxProcessorConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:        100,
		PollInterval:     2 * time.Second,
		CleanupEnabled:   true,
		CleanupRetention: 7 * 24 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}

// BatchResult counts what happened to the entries of one polling round
type BatchResult struct {
	Claimed   int
	Delivered int
	Failed    int
	Dead      int
}

func (r *BatchResult) add(o BatchResult) {
	r.Claimed += o.Claimed
	r.Delivered += o.Delivered
	r.Failed += o.Failed
	r.Dead += o.Dead
}

// OutboxProcessor relays committed outbox entries to the event bus.
//
// Each round claims a batch of PENDING entries and a batch of FAILED entries
// whose backoff has elapsed, publishes them and records the outcome. A single
// goroutine runs both the polling and the periodic purge of delivered rows.
type OutboxProcessor struct {
	repo       shared.OutboxRepository
	bus        shared.EventPublisher
	serializer *EventSerializer
	config     OutboxProcessorConfig
	logger     *zap.Logger
	tracer     trace.Tracer

	cancel context.CancelFunc
	done   chan struct{}
}

func NewOutboxProcessor(
	repo shared.OutboxRepository,
	bus shared.EventPublisher,
	serializer *EventSerializer,
	config OutboxProcessorConfig,
	logger *zap.Logger,
) *OutboxProcessor {
	return &OutboxProcessor{
		repo:       repo,
		bus:        bus,
		serializer: serializer,
		config:     config,
		logger:     logger.Named("outbox"),
		tracer:     otel.Tracer(outboxTracerName),
	}
}

// Start runs the processor in the background until Stop is called or ctx ends
func (p *OutboxProcessor) Start(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	go p.run(ctx)

	p.logger.Info("Outbox processor started",
		zap.Int("batch_size", p.config.BatchSize),
		zap.Duration("poll_interval", p.config.PollInterval),
		zap.Bool("cleanup", p.config.CleanupEnabled),
	)
	return nil
}

// Stop waits for the running round to finish, or for ctx to expire
func (p *OutboxProcessor) Stop(ctx context.Context) error {
	if p.cancel == nil {
		return nil
	}
	p.cancel()

	select {
	case <-p.done:
		p.logger.Info("Outbox processor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *OutboxProcessor) run(ctx context.Context) {
	defer close(p.done)

	poll := time.NewTicker(p.config.PollInterval)
	defer poll.Stop()

	// a nil channel never fires, which disables cleanup
	var purge <-chan time.Time
	if p.config.CleanupEnabled {
		t := time.NewTicker(p.config.CleanupInterval)
		defer t.Stop()
		purge = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-poll.C:
			p.ProcessOnce(ctx)
		case <-purge:
			p.cleanup(ctx)
		}
	}
}

// ProcessOnce delivers one batch of pending entries and one batch of due retries
func (p *OutboxProcessor) ProcessOnce(ctx context.Context) BatchResult {
	var result BatchResult

	pending, err := p.repo.FindPending(ctx, p.config.BatchSize)
	if err != nil {
		p.logger.Error("Failed to load pending outbox entries", zap.Error(err))
		return result
	}
	result.add(p.deliver(ctx, "pending", pending))

	retryable, err := p.repo.FindRetryable(ctx, time.Now(), p.config.BatchSize)
	if err != nil {
		p.logger.Error("Failed to load retryable outbox entries", zap.Error(err))
		return result
	}
	result.add(p.deliver(ctx, "retry", retryable))
	return result
}

func (p *OutboxProcessor) deliver(ctx context.Context, kind string, entries []*shared.OutboxEntry) BatchResult {
	var result BatchResult
	if len(entries) == 0 {
		return result
	}

	ctx, span := p.tracer.Start(ctx, "outbox.deliver", trace.WithAttributes(
		attribute.String("outbox.batch", kind),
		attribute.Int("outbox.candidates", len(entries)),
	))
	defer span.End()

	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	claimed, err := p.repo.MarkProcessing(ctx, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "claim failed")
		p.logger.Error("Failed to claim outbox entries", zap.Error(err))
		return result
	}
	result.Claimed = len(claimed)

	for _, entry := range claimed {
		switch p.deliverEntry(ctx, entry) {
		case shared.OutboxStatusSent:
			result.Delivered++
		case shared.OutboxStatusDead:
			result.Dead++
		case shared.OutboxStatusFailed:
			result.Failed++
		}
	}

	span.SetAttributes(
		attribute.Int("outbox.delivered", result.Delivered),
		attribute.Int("outbox.failed", result.Failed+result.Dead),
	)
	return result
}

// deliverEntry publishes a claimed entry and returns its resulting status
func (p *OutboxProcessor) deliverEntry(ctx context.Context, entry *shared.OutboxEntry) shared.OutboxStatus {
	evt, err := p.serializer.Deserialize(entry.EventType, entry.Payload)
	if err == nil {
		err = p.bus.Publish(ctx, evt)
	}
	if err != nil {
		return p.fail(ctx, entry, err)
	}

	entry.MarkSent()
	if err := p.repo.Update(ctx, entry); err != nil {
		// the entry stays PROCESSING; the event already reached subscribers
		p.logger.Error("Failed to mark outbox entry as sent",
			zap.Stringer("event_id", entry.EventID),
			zap.Error(err),
		)
		return shared.OutboxStatusProcessing
	}
	p.logger.Debug("Outbox entry delivered",
		zap.Stringer("event_id", entry.EventID),
		zap.String("event_type", entry.EventType),
	)
	return shared.OutboxStatusSent
}

func (p *OutboxProcessor) fail(ctx context.Context, entry *shared.OutboxEntry, cause error) shared.OutboxStatus {
	entry.MarkFailed(cause.Error())

	log := p.logger.With(
		zap.Stringer("event_id", entry.EventID),
		zap.String("event_type", entry.EventType),
		zap.String("aggregate_type", entry.AggregateType),
		zap.Stringer("aggregate_id", entry.AggregateID),
		zap.Int("retry_count", entry.RetryCount),
	)
	if entry.IsDead() {
		log.Warn("Outbox entry moved to dead letter", zap.Error(cause))
	} else {
		log.Error("Outbox delivery failed", zap.Error(cause), zap.Timep("next_retry_at", entry.NextRetryAt))
	}

	if err := p.repo.Update(ctx, entry); err != nil {
		log.Error("Failed to update outbox entry", zap.Error(err))
	}
	return entry.Status
}

func (p *OutboxProcessor) cleanup(ctx context.Context) {
	cutoff := time.Now().Add(-p.config.CleanupRetention)
	deleted, err := p.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Error("Failed to clean up outbox", zap.Error(err))
		return
	}
	if deleted > 0 {
		p.logger.Info("Cleaned up outbox entries", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
	}
}
