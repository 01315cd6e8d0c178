package telemetry

import (
	"context"
	"database/sql"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// DBPoolMetrics reports connection pool statistics as observable gauges.
// Values are read from sql.DB.Stats on every collection cycle.
type DBPoolMetrics struct {
	registration metric.Registration
}

// RegisterDBPoolMetrics registers the pool gauges for sqlDB on meter.
// Call Unregister to stop observing, e.g. before closing the pool.
func RegisterDBPoolMetrics(meter metric.Meter, sqlDB *sql.DB) (*DBPoolMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if sqlDB == nil {
		return nil, fmt.Errorf("telemetry: sql.DB is nil")
	}

	connections, err := meter.Int64ObservableGauge(
		"db_pool_connections",
		metric.WithDescription("Number of connections in the pool by state"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gauge db_pool_connections: %w", err)
	}
	maxOpen, err := meter.Int64ObservableGauge(
		"db_pool_connections_max",
		metric.WithDescription("Maximum number of open connections"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gauge db_pool_connections_max: %w", err)
	}
	waitCount, err := meter.Int64ObservableCounter(
		"db_pool_wait_total",
		metric.WithDescription("Total number of connections waited for"),
		metric.WithUnit("{wait}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter db_pool_wait_total: %w", err)
	}

	reg, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(connections, int64(stats.InUse), metric.WithAttributes(AttrDBPoolState.String("in_use")))
		o.ObserveInt64(connections, int64(stats.Idle), metric.WithAttributes(AttrDBPoolState.String("idle")))
		o.ObserveInt64(maxOpen, int64(stats.MaxOpenConnections))
		o.ObserveInt64(waitCount, stats.WaitCount)
		return nil
	}, connections, maxOpen, waitCount)
	if err != nil {
		return nil, fmt.Errorf("failed to register pool metrics callback: %w", err)
	}
	return &DBPoolMetrics{registration: reg}, nil
}

// Unregister stops reporting pool statistics
func (m *DBPoolMetrics) Unregister() error {
	return m.registration.Unregister()
}
