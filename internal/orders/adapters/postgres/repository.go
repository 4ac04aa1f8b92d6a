package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmcampos/tienda/internal/orders/domain"
	"github.com/jmcampos/tienda/internal/orders/ports"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// PlaceOrder resolves each product, snapshots its price and writes the order
// with its items inside one transaction. Product rows are share-locked so a
// concurrent price update cannot interleave with the snapshot.
func (r *Repository) PlaceOrder(ctx context.Context, userID string, reqs []domain.ItemRequest, claimedCents int64) (*domain.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin place order: %w", err)
	}
	defer tx.Rollback(ctx)

	prices := make(map[string]int64, len(reqs))
	for _, req := range reqs {
		if _, ok := prices[req.ProductID]; ok {
			continue
		}
		var unit int64
		err := tx.QueryRow(ctx,
			`SELECT price_cents FROM products WHERE id = $1 FOR SHARE`,
			req.ProductID,
		).Scan(&unit)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("product %s: %w", req.ProductID, ports.ErrNotFound)
			}
			return nil, fmt.Errorf("resolve product %s: %w", req.ProductID, err)
		}
		prices[req.ProductID] = unit
	}

	items, err := domain.PriceItems(reqs, func(productID string) (int64, bool) {
		unit, ok := prices[productID]
		return unit, ok
	})
	if err != nil {
		return nil, err
	}

	order, err := domain.NewOrder(userID, items, claimedCents)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, user_id, amount_cents, payment_status, order_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		order.ID,
		order.UserID,
		order.AmountCents,
		order.PaymentStatus,
		order.OrderStatus,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for _, item := range order.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price_cents)
			VALUES ($1, $2, $3, $4)
		`,
			order.ID,
			item.ProductID,
			item.Quantity,
			item.PriceCents,
		)
		if err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit place order: %w", err)
	}

	return order, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	var intentID *string
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, amount_cents, payment_status, order_status, intent_id, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id).Scan(
		&order.ID,
		&order.UserID,
		&order.AmountCents,
		&order.PaymentStatus,
		&order.OrderStatus,
		&intentID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}
	if intentID != nil {
		order.IntentID = *intentID
	}

	items, err := r.loadItems(ctx, []string{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]

	return &order, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.list(ctx, `
		SELECT id, user_id, amount_cents, payment_status, order_status, intent_id, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
}

func (r *Repository) List(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, `
		SELECT id, user_id, amount_cents, payment_status, order_status, intent_id, created_at, updated_at
		FROM orders
		ORDER BY created_at DESC
	`)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	var ids []string
	for rows.Next() {
		var order domain.Order
		var intentID *string
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.AmountCents,
			&order.PaymentStatus,
			&order.OrderStatus,
			&intentID,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if intentID != nil {
			order.IntentID = *intentID
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	if len(ids) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	return orders, nil
}

func (r *Repository) loadItems(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT order_id, product_id, quantity, price_cents
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id
	`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := make(map[string][]domain.OrderItem)
	for rows.Next() {
		var orderID string
		var item domain.OrderItem
		if err := rows.Scan(&orderID, &item.ProductID, &item.Quantity, &item.PriceCents); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items[orderID] = append(items[orderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

func (r *Repository) AttachIntent(ctx context.Context, id, intentID string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET intent_id = $1, updated_at = $2
		WHERE id = $3
	`, intentID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("attach intent: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// SetPaymentStatusIfPending is the idempotency guard for capture callbacks:
// the row only changes while the payment axis is still pending.
func (r *Repository) SetPaymentStatusIfPending(ctx context.Context, id string, status domain.PaymentStatus) (bool, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET payment_status = $1, updated_at = $2
		WHERE id = $3 AND payment_status = $4
	`, status, time.Now().UTC(), id, domain.PaymentPending)
	if err != nil {
		return false, fmt.Errorf("update payment status: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

func (r *Repository) SetOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET order_status = $1, updated_at = $2
		WHERE id = $3
	`, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}
