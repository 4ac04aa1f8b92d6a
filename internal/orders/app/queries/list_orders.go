package queries

import (
	"context"

	"github.com/jmcampos/tienda/internal/orders/domain"
	"github.com/jmcampos/tienda/internal/orders/ports"
)

// ListOrdersQuery returns the caller's own orders, or every order when the
// caller is an admin asking for all of them.
type ListOrdersQuery struct {
	UserID  string
	IsAdmin bool
	All     bool
}

type ListOrdersQueryHandler struct {
	repo ports.OrderRepository
}

func NewListOrdersQueryHandler(repo ports.OrderRepository) *ListOrdersQueryHandler {
	return &ListOrdersQueryHandler{repo: repo}
}

func (h *ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) ([]domain.Order, error) {
	if query.All {
		if !query.IsAdmin {
			return nil, ports.ErrForbidden
		}
		return h.repo.List(ctx)
	}
	return h.repo.ListByUser(ctx, query.UserID)
}
