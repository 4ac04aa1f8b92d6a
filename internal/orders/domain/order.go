package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus tracks settlement with the payment processor. It leaves
// pending exactly once and never re-enters it.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentApproved PaymentStatus = "approved"
	PaymentFailed   PaymentStatus = "failed"
)

// OrderStatus tracks fulfilment. It is driven by admins and independent of
// the payment axis.
type OrderStatus string

const (
	StatusPacking   OrderStatus = "packing"
	StatusShipping  OrderStatus = "shipping"
	StatusDelivered OrderStatus = "delivered"
)

var (
	ErrInvalidStatus = errors.New("invalid order status")
	ErrTotalMismatch = errors.New("claimed total does not match line item total")
	ErrNoItems       = errors.New("order requires at least one item")
	ErrInvalidItem   = errors.New("invalid item")
)

// ParseOrderStatus validates an admin-supplied fulfilment status string.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusPacking, StatusShipping, StatusDelivered:
		return OrderStatus(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// Order is a purchase with its line items. AmountCents is fixed at creation
// time from the item snapshots.
type Order struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	AmountCents   int64         `json:"amount_cents"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	OrderStatus   OrderStatus   `json:"order_status"`
	IntentID      string        `json:"intent_id,omitempty"`
	Items         []OrderItem   `json:"items"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// OrderItem references a product and carries the price snapshot
// (unit price x quantity) computed when the order was placed. The snapshot
// is never recomputed from the catalog.
type OrderItem struct {
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"price_cents"`
}

// ItemRequest is a caller-supplied line before pricing.
type ItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (r ItemRequest) Validate() error {
	if r.ProductID == "" {
		return fmt.Errorf("%w: product_id is required", ErrInvalidItem)
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidItem)
	}
	return nil
}

// PriceItems turns requests into snapshot line items given the unit prices
// read inside the placement transaction. The lookup returning false aborts
// the whole pricing pass.
func PriceItems(reqs []ItemRequest, unitPriceCents func(productID string) (int64, bool)) ([]OrderItem, error) {
	items := make([]OrderItem, 0, len(reqs))
	for _, req := range reqs {
		if err := req.Validate(); err != nil {
			return nil, err
		}
		unit, ok := unitPriceCents(req.ProductID)
		if !ok {
			return nil, fmt.Errorf("product %s: not found", req.ProductID)
		}
		items = append(items, OrderItem{
			ProductID:  req.ProductID,
			Quantity:   req.Quantity,
			PriceCents: unit * int64(req.Quantity),
		})
	}
	return items, nil
}

// NewOrder builds a pending order from priced items, cross-checking the
// caller-claimed total against the computed sum.
func NewOrder(userID string, items []OrderItem, claimedCents int64) (*Order, error) {
	if userID == "" {
		return nil, errors.New("user_id is required")
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	var total int64
	for _, item := range items {
		total += item.PriceCents
	}
	if claimedCents != total {
		return nil, fmt.Errorf("%w: claimed %d, computed %d", ErrTotalMismatch, claimedCents, total)
	}

	now := time.Now().UTC()
	return &Order{
		ID:            uuid.NewString(),
		UserID:        userID,
		AmountCents:   total,
		PaymentStatus: PaymentPending,
		OrderStatus:   StatusPacking,
		Items:         items,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// PaymentSettled reports whether the payment axis reached a terminal value.
func (o Order) PaymentSettled() bool {
	return o.PaymentStatus != PaymentPending
}
