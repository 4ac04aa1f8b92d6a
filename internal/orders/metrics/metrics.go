package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	ordersPlacedTotal     metric.Int64Counter
	orderPlacementSeconds metric.Float64Histogram
	capturesTotal         metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.ordersPlacedTotal, err = meter.Int64Counter(
		"orders_placed_total",
		metric.WithDescription("Total number of orders placed"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create orders_placed_total counter: %w", err)
	}

	m.orderPlacementSeconds, err = meter.Float64Histogram(
		"order_placement_duration_seconds",
		metric.WithDescription("Duration of order placement including the gateway intent call"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_placement_duration histogram: %w", err)
	}

	m.capturesTotal, err = meter.Int64Counter(
		"payment_captures_total",
		metric.WithDescription("Capture callbacks reconciled, by outcome"),
		metric.WithUnit("{capture}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create payment_captures_total counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordOrderPlaced(ctx context.Context, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.ordersPlacedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordPlacementDuration(ctx context.Context, durationSeconds float64) {
	m.orderPlacementSeconds.Record(ctx, durationSeconds)
}

func (m *Metrics) RecordCapture(ctx context.Context, outcome string) {
	m.capturesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}
