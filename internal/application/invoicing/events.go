package invoicing

import (
	"context"

	"go.uber.org/zap"

	"github.com/invoiceme/backend/internal/domain/invoicing"
	"github.com/invoiceme/backend/internal/domain/shared"
)

// publishEvents hands events to the publisher after a successful save.
// Failures are logged and never returned: the state change is already durable.
// With the outbox enabled the publisher is nil, since the repository stored the
// events in the save transaction.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, events []shared.DomainEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		fields := []zap.Field{
			zap.Error(err),
			zap.Int("event_count", len(events)),
			zap.String("aggregate_id", events[0].AggregateID().String()),
		}
		for _, e := range events {
			fields = append(fields, zap.String("event_id", e.EventID().String()))
		}
		logger.Error("Failed to publish domain events", fields...)
	}
}

// consolidateUpdatedEvents collapses all InvoiceUpdated events into one.
// The last Updated event (which reflects the final state) takes the position
// of the first one; other events keep their order.
func consolidateUpdatedEvents(events []shared.DomainEvent) []shared.DomainEvent {
	out := make([]shared.DomainEvent, 0, len(events))
	firstIdx := -1
	var last shared.DomainEvent

	for _, e := range events {
		if e.EventType() != invoicing.EventTypeInvoiceUpdated {
			out = append(out, e)
			continue
		}
		last = e
		if firstIdx < 0 {
			firstIdx = len(out)
			out = append(out, e)
		}
	}
	if firstIdx >= 0 {
		out[firstIdx] = last
	}
	return out
}
