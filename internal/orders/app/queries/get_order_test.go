package queries_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmcampos/tienda/internal/orders/app/queries"
	"github.com/jmcampos/tienda/internal/orders/domain"
	"github.com/jmcampos/tienda/internal/orders/ports"
)

type mockRepository struct {
	getByIDFn    func(ctx context.Context, id string) (*domain.Order, error)
	listByUserFn func(ctx context.Context, userID string) ([]domain.Order, error)
	listFn       func(ctx context.Context) ([]domain.Order, error)
}

func (m *mockRepository) PlaceOrder(ctx context.Context, userID string, items []domain.ItemRequest, claimedCents int64) (*domain.Order, error) {
	return nil, nil
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ports.ErrNotFound
}

func (m *mockRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockRepository) List(ctx context.Context) ([]domain.Order, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockRepository) AttachIntent(ctx context.Context, id, intentID string) error {
	return nil
}

func (m *mockRepository) SetPaymentStatusIfPending(ctx context.Context, id string, status domain.PaymentStatus) (bool, error) {
	return false, nil
}

func (m *mockRepository) SetOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	return nil
}

func TestGetOrder(t *testing.T) {
	owned := &domain.Order{ID: "order-1", UserID: "user-1"}

	t.Run("owner reads own order", func(t *testing.T) {
		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
				return owned, nil
			},
		}
		handler := queries.NewGetOrderQueryHandler(repo)

		order, err := handler.Handle(context.Background(), queries.GetOrderQuery{OrderID: "order-1", UserID: "user-1"})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if order.ID != "order-1" {
			t.Errorf("expected order-1, got %s", order.ID)
		}
	})

	t.Run("another user is forbidden", func(t *testing.T) {
		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
				return owned, nil
			},
		}
		handler := queries.NewGetOrderQueryHandler(repo)

		_, err := handler.Handle(context.Background(), queries.GetOrderQuery{OrderID: "order-1", UserID: "user-2"})
		if !errors.Is(err, ports.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got: %v", err)
		}
	})

	t.Run("admin reads any order", func(t *testing.T) {
		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
				return owned, nil
			},
		}
		handler := queries.NewGetOrderQueryHandler(repo)

		_, err := handler.Handle(context.Background(), queries.GetOrderQuery{OrderID: "order-1", UserID: "admin", IsAdmin: true})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
	})

	t.Run("missing id is rejected", func(t *testing.T) {
		handler := queries.NewGetOrderQueryHandler(&mockRepository{})

		_, err := handler.Handle(context.Background(), queries.GetOrderQuery{UserID: "user-1"})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("not found passes through", func(t *testing.T) {
		handler := queries.NewGetOrderQueryHandler(&mockRepository{})

		_, err := handler.Handle(context.Background(), queries.GetOrderQuery{OrderID: "missing", UserID: "user-1"})
		if !errors.Is(err, ports.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got: %v", err)
		}
	})
}

func TestListOrders(t *testing.T) {
	t.Run("lists own orders by default", func(t *testing.T) {
		var requestedUser string
		repo := &mockRepository{
			listByUserFn: func(ctx context.Context, userID string) ([]domain.Order, error) {
				requestedUser = userID
				return []domain.Order{{ID: "order-1", UserID: userID}}, nil
			},
		}
		handler := queries.NewListOrdersQueryHandler(repo)

		orders, err := handler.Handle(context.Background(), queries.ListOrdersQuery{UserID: "user-1"})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if requestedUser != "user-1" {
			t.Errorf("expected listing for user-1, got %q", requestedUser)
		}
		if len(orders) != 1 {
			t.Errorf("expected 1 order, got %d", len(orders))
		}
	})

	t.Run("all orders requires admin", func(t *testing.T) {
		handler := queries.NewListOrdersQueryHandler(&mockRepository{})

		_, err := handler.Handle(context.Background(), queries.ListOrdersQuery{UserID: "user-1", All: true})
		if !errors.Is(err, ports.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got: %v", err)
		}
	})

	t.Run("admin lists all orders", func(t *testing.T) {
		called := false
		repo := &mockRepository{
			listFn: func(ctx context.Context) ([]domain.Order, error) {
				called = true
				return []domain.Order{{ID: "a"}, {ID: "b"}}, nil
			},
		}
		handler := queries.NewListOrdersQueryHandler(repo)

		orders, err := handler.Handle(context.Background(), queries.ListOrdersQuery{UserID: "admin", IsAdmin: true, All: true})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if !called {
			t.Error("expected full listing to be used")
		}
		if len(orders) != 2 {
			t.Errorf("expected 2 orders, got %d", len(orders))
		}
	})
}
