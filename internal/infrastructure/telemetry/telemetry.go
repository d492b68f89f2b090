// Package telemetry wires OpenTelemetry tracing and metrics for the service.
// Both pipelines export over OTLP/gRPC to the configured collector and fall
// back to the global no-op providers when disabled.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Config holds the settings shared by the tracing and metrics pipelines
type Config struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	ServiceVersion    string
	Insecure          bool
}

func (c Config) version() string {
	if c.ServiceVersion == "" {
		return "dev"
	}
	return c.ServiceVersion
}

func newResource(cfg Config) (*resource.Resource, error) {
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.version()),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to build telemetry resource: %w", err)
	}
	return res, nil
}

// shutdown flushes a provider, bounded by shutdownTimeout
func shutdown(ctx context.Context, logger *zap.Logger, what string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		logger.Error("Telemetry shutdown failed", zap.String("provider", what), zap.Error(err))
		return fmt.Errorf("failed to shut down %s provider: %w", what, err)
	}
	logger.Info("Telemetry provider flushed", zap.String("provider", what))
	return nil
}
