package adapters

import (
	"context"
	"time"

	"github.com/jmcampos/tienda/internal/kafka"
	"github.com/jmcampos/tienda/internal/orders/ports"
	"github.com/jmcampos/tienda/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ObservableEventBus wraps an EventBus with spans and publish metrics.
type ObservableEventBus struct {
	bus     ports.EventBus
	metrics *kafka.Metrics
}

func NewObservableEventBus(bus ports.EventBus, metrics *kafka.Metrics) *ObservableEventBus {
	return &ObservableEventBus{
		bus:     bus,
		metrics: metrics,
	}
}

func (e *ObservableEventBus) PublishOrderPlaced(ctx context.Context, orderID string) error {
	return e.publish(ctx, "order.placed", orderID, func(ctx context.Context) error {
		return e.bus.PublishOrderPlaced(ctx, orderID)
	})
}

func (e *ObservableEventBus) PublishPaymentCaptured(ctx context.Context, orderID string) error {
	return e.publish(ctx, "payment.captured", orderID, func(ctx context.Context) error {
		return e.bus.PublishPaymentCaptured(ctx, orderID)
	})
}

func (e *ObservableEventBus) PublishPaymentFailed(ctx context.Context, orderID string, reason string) error {
	return e.publish(ctx, "payment.failed", orderID, func(ctx context.Context) error {
		return e.bus.PublishPaymentFailed(ctx, orderID, reason)
	})
}

func (e *ObservableEventBus) publish(ctx context.Context, topic, orderID string, fn func(context.Context) error) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.Publish")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", orderID),
		attribute.String("event.type", topic),
		attribute.String("topic", topic),
	)

	start := time.Now()
	err := fn(ctx)
	e.metrics.RecordPublish(ctx, topic, time.Since(start).Seconds(), err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
