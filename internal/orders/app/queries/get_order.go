package queries

import (
	"context"
	"errors"
	"strings"

	"github.com/jmcampos/tienda/internal/orders/domain"
	"github.com/jmcampos/tienda/internal/orders/ports"
)

// GetOrderQuery retrieves a single order. Non-admin callers may only read
// their own orders.
type GetOrderQuery struct {
	OrderID string
	UserID  string
	IsAdmin bool
}

func (q GetOrderQuery) Validate() error {
	if strings.TrimSpace(q.OrderID) == "" {
		return errors.New("order_id is required")
	}
	return nil
}

type GetOrderQueryHandler struct {
	repo ports.OrderRepository
}

func NewGetOrderQueryHandler(repo ports.OrderRepository) *GetOrderQueryHandler {
	return &GetOrderQueryHandler{repo: repo}
}

func (h *GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (*domain.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	order, err := h.repo.GetByID(ctx, query.OrderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != query.UserID && !query.IsAdmin {
		return nil, ports.ErrForbidden
	}

	return order, nil
}
