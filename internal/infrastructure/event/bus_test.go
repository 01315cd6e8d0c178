package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	created := newTestHandler("Created")
	all := newTestHandler()
	bus.Subscribe(created)
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("Created"), newTestEvent("Deleted")))

	assert.Equal(t, 1, created.count())
	assert.Equal(t, 2, all.count(), "wildcard handler receives every event")
}

func TestInMemoryEventBus_SubscribeExplicitTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler("Ignored")
	bus.Subscribe(handler, "Sent")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("Ignored"), newTestEvent("Sent")))

	assert.Equal(t, 1, handler.count())
	assert.Equal(t, "Sent", handler.handled[0].EventType())
}

func TestInMemoryEventBus_HandlerFailuresAreIsolated(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := newTestHandler("Paid")
	failing.err = errors.New("mailer down")
	panicking := newTestHandler("Paid")
	panicking.panics = true
	healthy := newTestHandler("Paid")
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("Paid"))

	require.NoError(t, err)
	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, 2, logs.FilterMessage("Event handler failed").Len())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler("Created")
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("Created")))

	assert.Zero(t, handler.count())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, bus.Start(ctx))
	assert.True(t, bus.IsRunning())
	require.NoError(t, bus.Stop(ctx))
	assert.False(t, bus.IsRunning())
}

func TestHandlerRegistry(t *testing.T) {
	registry := NewHandlerRegistry()
	a := newTestHandler()
	b := newTestHandler()
	registry.Register(a, "X", "Y")
	registry.Register(b)

	assert.Len(t, registry.GetHandlers("X"), 2)
	assert.Len(t, registry.GetHandlers("Z"), 1)
	assert.Len(t, registry.GetAllHandlers(), 2)

	registry.Unregister(a)
	assert.Len(t, registry.GetHandlers("X"), 1)
	assert.Len(t, registry.GetAllHandlers(), 1)
}
