package ports

import "context"

// EventBus defines the contract for publishing order lifecycle events.
type EventBus interface {
	PublishOrderPlaced(ctx context.Context, orderID string) error
	PublishPaymentCaptured(ctx context.Context, orderID string) error
	PublishPaymentFailed(ctx context.Context, orderID string, reason string) error
}
