package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

const providerShutdownTimeout = 10 * time.Second

// Settings selects which signals the service exports and where to.
// All signals share one collector endpoint.
type Settings struct {
	ServiceName       string
	ServiceVersion    string
	CollectorEndpoint string
	Insecure          bool

	TracesEnabled   bool
	SamplingRatio   float64
	MetricsEnabled  bool
	MetricsInterval time.Duration
	LogsEnabled     bool
}

// Providers holds the trace, metric and log providers of the process.
type Providers struct {
	Traces  *TracerProvider
	Metrics *MeterProvider
	Logs    *LoggerProvider
}

// Start creates every provider. Disabled signals get a provider that
// reports IsEnabled false and shuts down as a no-op.
func Start(ctx context.Context, s Settings, logger *zap.Logger) (*Providers, error) {
	p := &Providers{}
	var err error

	p.Traces, err = NewTracerProvider(ctx, TracesConfig{
		Enabled:           s.TracesEnabled,
		CollectorEndpoint: s.CollectorEndpoint,
		SamplingRatio:     s.SamplingRatio,
		ServiceName:       s.ServiceName,
		ServiceVersion:    s.ServiceVersion,
		Insecure:          s.Insecure,
	}, logger)
	if err != nil {
		return nil, err
	}

	p.Metrics, err = NewMeterProvider(ctx, MetricsConfig{
		Enabled:           s.MetricsEnabled,
		CollectorEndpoint: s.CollectorEndpoint,
		ExportInterval:    s.MetricsInterval,
		ServiceName:       s.ServiceName,
		ServiceVersion:    s.ServiceVersion,
		Insecure:          s.Insecure,
	}, logger)
	if err != nil {
		_ = p.Shutdown(ctx)
		return nil, err
	}

	p.Logs, err = NewLoggerProvider(ctx, LogsConfig{
		Enabled:           s.LogsEnabled,
		CollectorEndpoint: s.CollectorEndpoint,
		ServiceName:       s.ServiceName,
		ServiceVersion:    s.ServiceVersion,
		Insecure:          s.Insecure,
	}, logger)
	if err != nil {
		_ = p.Shutdown(ctx)
		return nil, err
	}
	return p, nil
}

// Shutdown stops traces, then metrics, then logs, so log records written
// while the other providers stop are still exported.
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(
		p.Traces.Shutdown(ctx),
		p.Metrics.Shutdown(ctx),
		p.Logs.Shutdown(ctx),
	)
}

type sdkProvider interface {
	Shutdown(ctx context.Context) error
}

func shutdownProvider(ctx context.Context, signal string, p sdkProvider, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, providerShutdownTimeout)
	defer cancel()

	if err := p.Shutdown(ctx); err != nil {
		logger.Error("OpenTelemetry provider shutdown failed", zap.String("signal", signal), zap.Error(err))
		return fmt.Errorf("failed to shutdown %s provider: %w", signal, err)
	}
	logger.Info("OpenTelemetry provider stopped", zap.String("signal", signal))
	return nil
}

func newResource(serviceName, serviceVersion string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}
