package common

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// InitTracing installs a global OTLP/HTTP tracer provider when telemetry is
// enabled. The exporter endpoint comes from the standard OTEL_EXPORTER_OTLP_*
// variables. The returned shutdown flushes pending spans and is never nil.
func InitTracing(ctx context.Context, cfg TelemetryConfig, logger *slog.Logger) (func(context.Context), error) {
	if logger == nil {
		logger = slog.Default()
	}
	noop := func(context.Context) {}
	if !cfg.Enabled {
		return noop, nil
	}

	exp, err := otlptracehttp.New(ctx)
	if err != nil {
		return noop, fmt.Errorf("otlp exporter: %w", err)
	}
	res, err := resource.Merge(resource.Default(),
		resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName)))
	if err != nil {
		return noop, fmt.Errorf("otel resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	logger.Info("telemetry.enabled", "service", cfg.ServiceName)

	return func(ctx context.Context) {
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("telemetry.shutdown_error", "error", err)
		}
	}, nil
}
