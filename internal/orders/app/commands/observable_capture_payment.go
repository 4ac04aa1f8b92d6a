package commands

import (
	"context"
	"log/slog"

	"github.com/jmcampos/tienda/internal/orders/domain"
	"github.com/jmcampos/tienda/internal/orders/metrics"
	"github.com/jmcampos/tienda/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableCapturePaymentHandler struct {
	handler CapturePaymentHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableCapturePaymentHandler(handler CapturePaymentHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableCapturePaymentHandler {
	return &ObservableCapturePaymentHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableCapturePaymentHandler) Handle(ctx context.Context, cmd CapturePaymentCommand) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "CapturePaymentCommand.Handle")
	defer span.End()

	o.logger.InfoContext(ctx, "capturing payment",
		"order_id", cmd.OrderID,
		"user_id", cmd.UserID,
	)

	order, err := o.handler.Handle(ctx, cmd)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.metrics.RecordCapture(ctx, "error")
		o.logger.ErrorContext(ctx, "failed to capture payment",
			"error", err,
			"order_id", cmd.OrderID,
		)
		return order, err
	}

	outcome := string(order.PaymentStatus)
	o.metrics.RecordCapture(ctx, outcome)

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID),
		attribute.String("order.payment_status", outcome),
	)

	o.logger.InfoContext(ctx, "payment capture reconciled",
		"order_id", order.ID,
		"payment_status", outcome,
	)

	telemetry.SetSpanSuccess(span)

	return order, nil
}
