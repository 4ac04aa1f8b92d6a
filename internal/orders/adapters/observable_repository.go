package adapters

import (
	"context"
	"time"

	"github.com/jmcampos/tienda/internal/database"
	"github.com/jmcampos/tienda/internal/orders/domain"
	"github.com/jmcampos/tienda/internal/orders/ports"
	"github.com/jmcampos/tienda/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ObservableRepository wraps an OrderRepository with spans and query metrics.
type ObservableRepository struct {
	repo    ports.OrderRepository
	metrics *database.Metrics
}

func NewObservableRepository(repo ports.OrderRepository, metrics *database.Metrics) *ObservableRepository {
	return &ObservableRepository{
		repo:    repo,
		metrics: metrics,
	}
}

func (r *ObservableRepository) PlaceOrder(ctx context.Context, userID string, items []domain.ItemRequest, claimedCents int64) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.PlaceOrder")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("user.id", userID),
		attribute.Int("items.count", len(items)),
		attribute.String("operation", "place_order"),
	)

	start := time.Now()
	order, err := r.repo.PlaceOrder(ctx, userID, items, claimedCents)
	r.metrics.RecordQuery(ctx, "place_order", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span, attribute.String("order.id", order.ID))
	telemetry.SetSpanSuccess(span)
	return order, nil
}

func (r *ObservableRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.GetByID")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", id),
		attribute.String("operation", "get_by_id"),
	)

	start := time.Now()
	order, err := r.repo.GetByID(ctx, id)
	r.metrics.RecordQuery(ctx, "get_order_by_id", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.SetSpanSuccess(span)
	return order, nil
}

func (r *ObservableRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.ListByUser")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("user.id", userID),
		attribute.String("operation", "list_by_user"),
	)

	start := time.Now()
	orders, err := r.repo.ListByUser(ctx, userID)
	r.metrics.RecordQuery(ctx, "list_orders_by_user", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span, attribute.Int("result.count", len(orders)))
	telemetry.SetSpanSuccess(span)
	return orders, nil
}

func (r *ObservableRepository) List(ctx context.Context) ([]domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.List")
	defer span.End()

	start := time.Now()
	orders, err := r.repo.List(ctx)
	r.metrics.RecordQuery(ctx, "list_orders", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span, attribute.Int("result.count", len(orders)))
	telemetry.SetSpanSuccess(span)
	return orders, nil
}

func (r *ObservableRepository) AttachIntent(ctx context.Context, id, intentID string) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.AttachIntent")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", id),
		attribute.String("intent.id", intentID),
		attribute.String("operation", "attach_intent"),
	)

	start := time.Now()
	err := r.repo.AttachIntent(ctx, id, intentID)
	r.metrics.RecordQuery(ctx, "attach_intent", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (r *ObservableRepository) SetPaymentStatusIfPending(ctx context.Context, id string, status domain.PaymentStatus) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.SetPaymentStatusIfPending")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", id),
		attribute.String("payment.new_status", string(status)),
		attribute.String("operation", "set_payment_status"),
	)

	start := time.Now()
	updated, err := r.repo.SetPaymentStatusIfPending(ctx, id, status)
	r.metrics.RecordQuery(ctx, "set_payment_status", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return false, err
	}

	telemetry.AddSpanAttributes(span, attribute.Bool("payment.transitioned", updated))
	telemetry.SetSpanSuccess(span)
	return updated, nil
}

func (r *ObservableRepository) SetOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.SetOrderStatus")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", id),
		attribute.String("order.new_status", string(status)),
		attribute.String("operation", "set_order_status"),
	)

	start := time.Now()
	err := r.repo.SetOrderStatus(ctx, id, status)
	r.metrics.RecordQuery(ctx, "set_order_status", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
