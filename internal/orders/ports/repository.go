package ports

import (
	"context"
	"errors"

	"github.com/jmcampos/tienda/internal/orders/domain"
)

// OrderRepository exposes persistence operations required by the application
// layer. PlaceOrder resolves products, snapshots prices and writes the order
// with its items inside a single transaction so concurrent catalog price
// updates cannot split a snapshot.
type OrderRepository interface {
	PlaceOrder(ctx context.Context, userID string, items []domain.ItemRequest, claimedCents int64) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	AttachIntent(ctx context.Context, id, intentID string) error
	// SetPaymentStatusIfPending transitions the payment axis only when the
	// current value is still pending. It reports whether a row changed, which
	// makes repeated capture callbacks safe.
	SetPaymentStatusIfPending(ctx context.Context, id string, status domain.PaymentStatus) (bool, error)
	SetOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error
}

var (
	// ErrNotFound is returned when the requested order or a referenced
	// product does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when a caller acts on a resource it does
	// not own without admin rights.
	ErrForbidden = errors.New("forbidden")
)
