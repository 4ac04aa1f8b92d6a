package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmcampos/tienda/internal/orders/domain"
	"github.com/jmcampos/tienda/internal/orders/ports"
)

type PlaceOrderCommand struct {
	UserID       string
	Items        []domain.ItemRequest
	ClaimedCents int64
}

func (c PlaceOrderCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("user_id is required")
	}
	if len(c.Items) == 0 {
		return domain.ErrNoItems
	}
	for _, item := range c.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// PlacedOrder is the command result: the persisted order plus the processor
// approval URL the buyer is redirected to.
type PlacedOrder struct {
	Order       *domain.Order
	ApprovalURL string
}

type PlaceOrderHandler interface {
	Handle(ctx context.Context, cmd PlaceOrderCommand) (*PlacedOrder, error)
}

type PlaceOrderCommandHandler struct {
	repo     ports.OrderRepository
	gateway  ports.PaymentGateway
	events   ports.EventBus
	currency string
}

func NewPlaceOrderCommandHandler(
	repo ports.OrderRepository,
	gateway ports.PaymentGateway,
	events ports.EventBus,
	currency string,
) *PlaceOrderCommandHandler {
	return &PlaceOrderCommandHandler{
		repo:     repo,
		gateway:  gateway,
		events:   events,
		currency: currency,
	}
}

// Handle persists the order and its priced line items in one transaction,
// then requests a payment intent. A gateway failure leaves the order pending
// with no intent attached; the persisted row is returned alongside the error
// so the caller can retry intent creation without re-placing the order.
func (h *PlaceOrderCommandHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) (*PlacedOrder, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	order, err := h.repo.PlaceOrder(ctx, cmd.UserID, cmd.Items, cmd.ClaimedCents)
	if err != nil {
		return nil, err
	}

	intent, err := h.gateway.CreateIntent(ctx, order.AmountCents, h.currency)
	if err != nil {
		return &PlacedOrder{Order: order}, fmt.Errorf("order %s saved but intent creation failed: %w", order.ID, err)
	}

	if err := h.repo.AttachIntent(ctx, order.ID, intent.ID); err != nil {
		return &PlacedOrder{Order: order}, fmt.Errorf("attach intent to order %s: %w", order.ID, err)
	}
	order.IntentID = intent.ID

	if err := h.events.PublishOrderPlaced(ctx, order.ID); err != nil {
		return &PlacedOrder{Order: order, ApprovalURL: intent.ApprovalURL},
			fmt.Errorf("order saved but failed to publish event: %w", err)
	}

	return &PlacedOrder{Order: order, ApprovalURL: intent.ApprovalURL}, nil
}
