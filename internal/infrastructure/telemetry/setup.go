package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"

	"github.com/backoffice/financeiro/internal/infrastructure/config"
)

// ServiceVersion is stamped on the exported resource. The server sets it
// from its build version before creating any provider.
var ServiceVersion = "dev"

const shutdownTimeout = 10 * time.Second

// Collector is the OTLP gRPC receiver every pipeline exports to
type Collector struct {
	Endpoint    string
	Insecure    bool
	ServiceName string
}

// Providers are the three export pipelines of the service
type Providers struct {
	Traces  *TracerProvider
	Metrics *MeterProvider
	Logs    *LoggerProvider
}

// Setup starts the pipelines cfg enables. Spans follow Enabled, metrics
// and logs have their own switches.
func Setup(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*Providers, error) {
	collector := Collector{
		Endpoint:    cfg.CollectorEndpoint,
		Insecure:    cfg.Insecure,
		ServiceName: cfg.ServiceName,
	}

	var (
		p   Providers
		err error
	)
	p.Traces, err = NewTracerProvider(ctx, TracingConfig{
		Collector:     collector,
		Enabled:       cfg.Enabled,
		SamplingRatio: cfg.SamplingRatio,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}
	p.Metrics, err = NewMeterProvider(ctx, MetricsConfig{
		Collector:      collector,
		Enabled:        cfg.MetricsEnabled,
		ExportInterval: cfg.MetricsInterval,
	}, logger)
	if err != nil {
		_ = p.Shutdown(ctx)
		return nil, fmt.Errorf("metrics: %w", err)
	}
	p.Logs, err = NewLoggerProvider(ctx, LogsConfig{Collector: collector, Enabled: cfg.LogsEnabled}, logger)
	if err != nil {
		_ = p.Shutdown(ctx)
		return nil, fmt.Errorf("logs: %w", err)
	}
	return &p, nil
}

// Shutdown flushes logs first so records about the shutdown itself leave
// while spans can still be exported.
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(p.Logs.Shutdown(ctx), p.Metrics.Shutdown(ctx), p.Traces.Shutdown(ctx))
}

func shutdown(ctx context.Context, pipeline string, logger *zap.Logger, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		logger.Error("Telemetry shutdown failed", zap.String("pipeline", pipeline), zap.Error(err))
		return fmt.Errorf("shutdown %s provider: %w", pipeline, err)
	}
	return nil
}

func newResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(ServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to build telemetry resource: %w", err)
	}
	return res, nil
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
