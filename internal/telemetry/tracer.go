// Package telemetry sets up OpenTelemetry tracing.
package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// Options configures InitTracer.
type Options struct {
	ServiceName string
	// Enabled exports spans. When false only context propagation is set up.
	Enabled bool
	// Writer receives exported spans; stderr when nil so spans do not mix
	// with the JSON log stream on stdout.
	Writer io.Writer
}

// InitTracer initializes OpenTelemetry tracing and returns its shutdown
// function.
func InitTracer(opts Options, logger *slog.Logger) (func(context.Context) error, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !opts.Enabled {
		logger.Debug("tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}

	// Create resource with service name
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(opts.ServiceName),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)

	logger.Info("OpenTelemetry initialized", slog.String("service", opts.ServiceName))

	return tp.Shutdown, nil
}
