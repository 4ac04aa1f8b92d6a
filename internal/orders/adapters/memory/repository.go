package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jmcampos/tienda/internal/orders/domain"
	"github.com/jmcampos/tienda/internal/orders/ports"
)

// Repository is an in-memory order store for local development and tests.
// Product prices are seeded directly since there is no shared database to
// resolve them from.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
	prices map[string]int64
}

func NewRepository() *Repository {
	return &Repository{
		orders: make(map[string]domain.Order),
		prices: make(map[string]int64),
	}
}

// SeedProduct registers a product price for order placement.
func (r *Repository) SeedProduct(productID string, priceCents int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prices[productID] = priceCents
}

func (r *Repository) PlaceOrder(_ context.Context, userID string, reqs []domain.ItemRequest, claimedCents int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, req := range reqs {
		if _, ok := r.prices[req.ProductID]; !ok {
			return nil, fmt.Errorf("product %s: %w", req.ProductID, ports.ErrNotFound)
		}
	}

	items, err := domain.PriceItems(reqs, func(productID string) (int64, bool) {
		unit, ok := r.prices[productID]
		return unit, ok
	})
	if err != nil {
		return nil, err
	}

	order, err := domain.NewOrder(userID, items, claimedCents)
	if err != nil {
		return nil, err
	}

	r.orders[order.ID] = *order
	return order, nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	stored := order
	return &stored, nil
}

func (r *Repository) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			result = append(result, order)
		}
	}
	sortByCreation(result)
	return result, nil
}

func (r *Repository) List(_ context.Context) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		result = append(result, order)
	}
	sortByCreation(result)
	return result, nil
}

func (r *Repository) AttachIntent(_ context.Context, id, intentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}
	order.IntentID = intentID
	order.UpdatedAt = time.Now().UTC()
	r.orders[id] = order
	return nil
}

func (r *Repository) SetPaymentStatusIfPending(_ context.Context, id string, status domain.PaymentStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return false, ports.ErrNotFound
	}
	if order.PaymentStatus != domain.PaymentPending {
		return false, nil
	}
	order.PaymentStatus = status
	order.UpdatedAt = time.Now().UTC()
	r.orders[id] = order
	return true, nil
}

func (r *Repository) SetOrderStatus(_ context.Context, id string, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}
	order.OrderStatus = status
	order.UpdatedAt = time.Now().UTC()
	r.orders[id] = order
	return nil
}

func sortByCreation(orders []domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
}
