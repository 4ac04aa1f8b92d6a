package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmcampos/tienda/internal/orders/domain"
	"github.com/jmcampos/tienda/internal/orders/ports"
)

type CapturePaymentCommand struct {
	OrderID string
	UserID  string
	IsAdmin bool
	// IntentToken is the processor token from the redirect callback. Used
	// only when the order has no persisted intent id.
	IntentToken string
	PayerID     string
}

func (c CapturePaymentCommand) Validate() error {
	if c.OrderID == "" {
		return errors.New("order_id is required")
	}
	return nil
}

type CapturePaymentHandler interface {
	Handle(ctx context.Context, cmd CapturePaymentCommand) (*domain.Order, error)
}

type CapturePaymentCommandHandler struct {
	repo    ports.OrderRepository
	gateway ports.PaymentGateway
	events  ports.EventBus
}

func NewCapturePaymentCommandHandler(
	repo ports.OrderRepository,
	gateway ports.PaymentGateway,
	events ports.EventBus,
) *CapturePaymentCommandHandler {
	return &CapturePaymentCommandHandler{
		repo:    repo,
		gateway: gateway,
		events:  events,
	}
}

// Handle reconciles the processor capture outcome into the order. Repeated
// callbacks are safe: an order already settled is returned unchanged without
// a second capture call, and the status write is conditional on the payment
// axis still being pending.
func (h *CapturePaymentCommandHandler) Handle(ctx context.Context, cmd CapturePaymentCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	order, err := h.repo.GetByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != cmd.UserID && !cmd.IsAdmin {
		return nil, ports.ErrForbidden
	}

	if order.PaymentSettled() {
		return order, nil
	}

	intentID := order.IntentID
	if intentID == "" {
		intentID = cmd.IntentToken
	}
	if intentID == "" {
		return nil, errors.New("order has no payment intent to capture")
	}

	result, err := h.gateway.CaptureIntent(ctx, intentID)
	if err != nil {
		// Transient gateway failure: leave the order pending so the
		// callback can be retried.
		return nil, fmt.Errorf("capture intent %s: %w", intentID, err)
	}

	status := domain.PaymentFailed
	if result.Captured {
		status = domain.PaymentApproved
	}

	updated, err := h.repo.SetPaymentStatusIfPending(ctx, order.ID, status)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Lost the race against a concurrent callback; the stored outcome wins.
		return h.repo.GetByID(ctx, order.ID)
	}

	order.PaymentStatus = status

	if status == domain.PaymentApproved {
		if err := h.events.PublishPaymentCaptured(ctx, order.ID); err != nil {
			return order, fmt.Errorf("payment captured but failed to publish event: %w", err)
		}
	} else {
		if err := h.events.PublishPaymentFailed(ctx, order.ID, result.Status); err != nil {
			return order, fmt.Errorf("payment failed but failed to publish event: %w", err)
		}
	}

	return order, nil
}
