package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func newBufferLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	baseHandler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})
	return slog.New(&traceHandler{baseHandler: baseHandler}), &buf
}

func parseLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	return entry
}

func TestLogLevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		level     slog.Level
		logFunc   func(*slog.Logger, context.Context)
		shouldLog bool
	}{
		{
			name:  "info level logs info",
			level: slog.LevelInfo,
			logFunc: func(l *slog.Logger, ctx context.Context) {
				l.InfoContext(ctx, "info message")
			},
			shouldLog: true,
		},
		{
			name:  "info level filters debug",
			level: slog.LevelInfo,
			logFunc: func(l *slog.Logger, ctx context.Context) {
				l.DebugContext(ctx, "debug message")
			},
			shouldLog: false,
		},
		{
			name:  "warn level filters info",
			level: slog.LevelWarn,
			logFunc: func(l *slog.Logger, ctx context.Context) {
				l.InfoContext(ctx, "info message")
			},
			shouldLog: false,
		},
		{
			name:  "error level logs error",
			level: slog.LevelError,
			logFunc: func(l *slog.Logger, ctx context.Context) {
				l.ErrorContext(ctx, "error message")
			},
			shouldLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger(tt.level)
			tt.logFunc(logger, context.Background())

			if tt.shouldLog && buf.Len() == 0 {
				t.Error("expected log output but got none")
			}
			if !tt.shouldLog && buf.Len() > 0 {
				t.Errorf("expected no log output but got: %s", buf.String())
			}
		})
	}
}

func TestTraceEnrichment(t *testing.T) {
	t.Run("records carry trace and span ids inside a span", func(t *testing.T) {
		logger, buf := newBufferLogger(slog.LevelInfo)

		_, cleanup := setupTracerProvider(t)
		defer cleanup()

		ctx, span := StartSpan(context.Background(), "place-order")
		defer span.End()

		logger.InfoContext(ctx, "order placed", "order_id", "order-1")

		entry := parseLogLine(t, buf)
		if id, ok := entry["trace_id"].(string); !ok || id == "" {
			t.Error("expected trace_id to be present and non-empty")
		}
		if id, ok := entry["span_id"].(string); !ok || id == "" {
			t.Error("expected span_id to be present and non-empty")
		}
		if entry["order_id"] != "order-1" {
			t.Errorf("expected order_id 'order-1', got %v", entry["order_id"])
		}
	})

	t.Run("records outside a span omit trace fields", func(t *testing.T) {
		logger, buf := newBufferLogger(slog.LevelInfo)

		logger.InfoContext(context.Background(), "startup complete")

		entry := parseLogLine(t, buf)
		if _, present := entry["trace_id"]; present {
			t.Error("expected no trace_id outside a span")
		}
		if _, present := entry["span_id"]; present {
			t.Error("expected no span_id outside a span")
		}
		if entry["msg"] != "startup complete" {
			t.Errorf("expected msg 'startup complete', got %v", entry["msg"])
		}
	})
}

func TestLoggerWithAttrs(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)

	logger.With("component", "orders").InfoContext(context.Background(), "ready")

	entry := parseLogLine(t, buf)
	if entry["component"] != "orders" {
		t.Errorf("expected component 'orders', got %v", entry["component"])
	}
}

func TestLoggerWithGroup(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)

	logger.WithGroup("request").InfoContext(context.Background(), "handled", "path", "/v1/orders")

	entry := parseLogLine(t, buf)
	group, ok := entry["request"].(map[string]any)
	if !ok {
		t.Fatalf("expected 'request' group, got %v", entry["request"])
	}
	if group["path"] != "/v1/orders" {
		t.Errorf("expected grouped path '/v1/orders', got %v", group["path"])
	}
}
