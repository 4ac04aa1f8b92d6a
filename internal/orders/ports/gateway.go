package ports

import (
	"context"
	"fmt"
)

// PaymentIntent is the processor-side record for an authorized but not yet
// captured payment.
type PaymentIntent struct {
	ID          string
	ApprovalURL string
}

// CaptureResult reports the outcome of finalizing an intent. Captured false
// with a nil error is a definitive decline and must not be retried.
type CaptureResult struct {
	Captured bool
	Status   string
}

// PaymentGateway bridges to the external payment processor.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string) (*PaymentIntent, error)
	CaptureIntent(ctx context.Context, intentID string) (*CaptureResult, error)
}

// GatewayError wraps a processor-side failure. Retryable marks transient
// transport or 5xx conditions, as opposed to definitive rejections.
type GatewayError struct {
	Op        string
	Status    int
	Retryable bool
	Err       error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway %s (status %d): %v", e.Op, e.Status, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }
