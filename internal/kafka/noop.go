package kafka

import (
	"context"
	"log/slog"
)

// NoopEventBus logs events without a broker. Used when no Kafka brokers are
// configured.
type NoopEventBus struct{}

func NewNoopEventBus() *NoopEventBus {
	return &NoopEventBus{}
}

func (n *NoopEventBus) PublishOrderPlaced(_ context.Context, orderID string) error {
	slog.Debug("event::order_placed", "order_id", orderID)
	return nil
}

func (n *NoopEventBus) PublishPaymentCaptured(_ context.Context, orderID string) error {
	slog.Debug("event::payment_captured", "order_id", orderID)
	return nil
}

func (n *NoopEventBus) PublishPaymentFailed(_ context.Context, orderID string, reason string) error {
	slog.Debug("event::payment_failed", "order_id", orderID, "reason", reason)
	return nil
}
