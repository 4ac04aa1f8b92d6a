package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmcampos/tienda/internal/orders/metrics"
	"github.com/jmcampos/tienda/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservablePlaceOrderHandler struct {
	handler PlaceOrderHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservablePlaceOrderHandler(handler PlaceOrderHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservablePlaceOrderHandler {
	return &ObservablePlaceOrderHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservablePlaceOrderHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) (*PlacedOrder, error) {
	ctx, span := telemetry.StartSpan(ctx, "PlaceOrderCommand.Handle")
	defer span.End()

	start := time.Now()
	var success bool
	defer func() {
		duration := time.Since(start).Seconds()
		o.metrics.RecordPlacementDuration(ctx, duration)
		o.metrics.RecordOrderPlaced(ctx, success)
	}()

	o.logger.InfoContext(ctx, "placing order",
		"user_id", cmd.UserID,
		"items", len(cmd.Items),
		"claimed_cents", cmd.ClaimedCents,
	)

	placed, err := o.handler.Handle(ctx, cmd)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to place order",
			"error", err,
			"user_id", cmd.UserID,
		)
		return placed, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", placed.Order.ID),
		attribute.Int64("order.amount_cents", placed.Order.AmountCents),
		attribute.String("order.intent_id", placed.Order.IntentID),
	)

	o.logger.InfoContext(ctx, "order placed",
		"order_id", placed.Order.ID,
		"user_id", cmd.UserID,
		"amount_cents", placed.Order.AmountCents,
	)

	success = true
	telemetry.SetSpanSuccess(span)

	return placed, nil
}
