package telemetry

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func testConfig() Config {
	return Config{
		ServiceName:    "tienda-test",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		SampleRate:     1.0,
	}
}

// setupTelemetry initializes telemetry with noop exporters and returns a
// cleanup function.
func setupTelemetry(t *testing.T, tracing, metrics bool) (*Telemetry, func()) {
	t.Helper()

	cfg := testConfig()
	cfg.EnableTracing = tracing
	cfg.EnableMetrics = metrics

	tel, err := Initialize(context.Background(), cfg,
		WithTraceExporter(NewNoopTraceExporter()),
		WithMetricExporter(NewNoopMetricExporter()),
	)
	if err != nil {
		t.Fatalf("failed to initialize telemetry: %v", err)
	}

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			t.Errorf("shutdown failed: %v", err)
		}
	}

	return tel, cleanup
}

// setupTracerProvider installs an in-memory tracer provider and returns the
// exporter plus a cleanup function.
func setupTracerProvider(t *testing.T) (*tracetest.InMemoryExporter, func()) {
	t.Helper()

	exp := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(trace.WithSyncer(exp))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	return exp, func() {
		otel.SetTracerProvider(prev)
	}
}
