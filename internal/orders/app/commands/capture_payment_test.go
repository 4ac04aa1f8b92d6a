package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmcampos/tienda/internal/orders/app/commands"
	"github.com/jmcampos/tienda/internal/orders/domain"
	"github.com/jmcampos/tienda/internal/orders/ports"
)

func pendingOrder() *domain.Order {
	return &domain.Order{
		ID:            "order-1",
		UserID:        "user-1",
		AmountCents:   2500,
		PaymentStatus: domain.PaymentPending,
		OrderStatus:   domain.StatusPacking,
		IntentID:      "intent-1",
	}
}

func TestCapturePayment(t *testing.T) {
	t.Run("approves order when the gateway reports capture", func(t *testing.T) {
		order := pendingOrder()
		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
				return order, nil
			},
		}
		gateway := &mockGateway{}
		var capturedEvent string
		events := &mockEventBus{
			publishPaymentCapturedFn: func(ctx context.Context, orderID string) error {
				capturedEvent = orderID
				return nil
			},
		}
		handler := commands.NewCapturePaymentCommandHandler(repo, gateway, events)

		got, err := handler.Handle(context.Background(), commands.CapturePaymentCommand{
			OrderID: "order-1",
			UserID:  "user-1",
		})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if got.PaymentStatus != domain.PaymentApproved {
			t.Errorf("expected approved, got %s", got.PaymentStatus)
		}
		if gateway.captureIntentCalls != 1 {
			t.Errorf("expected 1 capture call, got %d", gateway.captureIntentCalls)
		}
		if capturedEvent != "order-1" {
			t.Errorf("expected payment captured event for order-1, got %q", capturedEvent)
		}
	})

	t.Run("marks order failed on a definitive decline", func(t *testing.T) {
		order := pendingOrder()
		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
				return order, nil
			},
		}
		gateway := &mockGateway{
			captureIntentFn: func(ctx context.Context, intentID string) (*ports.CaptureResult, error) {
				return &ports.CaptureResult{Captured: false, Status: "DECLINED"}, nil
			},
		}
		var failedReason string
		events := &mockEventBus{
			publishPaymentFailedFn: func(ctx context.Context, orderID, reason string) error {
				failedReason = reason
				return nil
			},
		}
		handler := commands.NewCapturePaymentCommandHandler(repo, gateway, events)

		got, err := handler.Handle(context.Background(), commands.CapturePaymentCommand{
			OrderID: "order-1",
			UserID:  "user-1",
		})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if got.PaymentStatus != domain.PaymentFailed {
			t.Errorf("expected failed, got %s", got.PaymentStatus)
		}
		if failedReason != "DECLINED" {
			t.Errorf("expected decline reason propagated, got %q", failedReason)
		}
	})

	t.Run("settled order is returned unchanged without a second capture", func(t *testing.T) {
		order := pendingOrder()
		order.PaymentStatus = domain.PaymentApproved
		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
				return order, nil
			},
		}
		gateway := &mockGateway{}
		handler := commands.NewCapturePaymentCommandHandler(repo, gateway, &mockEventBus{})

		got, err := handler.Handle(context.Background(), commands.CapturePaymentCommand{
			OrderID: "order-1",
			UserID:  "user-1",
		})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if got.PaymentStatus != domain.PaymentApproved {
			t.Errorf("expected approved to remain, got %s", got.PaymentStatus)
		}
		if gateway.captureIntentCalls != 0 {
			t.Errorf("expected no capture call for settled order, got %d", gateway.captureIntentCalls)
		}
		if repo.setPaymentIfPendingCalls != 0 {
			t.Errorf("expected no status write for settled order, got %d", repo.setPaymentIfPendingCalls)
		}
	})

	t.Run("transient gateway failure leaves order pending", func(t *testing.T) {
		order := pendingOrder()
		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
				return order, nil
			},
		}
		gateway := &mockGateway{
			captureIntentFn: func(ctx context.Context, intentID string) (*ports.CaptureResult, error) {
				return nil, &ports.GatewayError{Op: "capture", Status: 503, Retryable: true, Err: errors.New("unavailable")}
			},
		}
		handler := commands.NewCapturePaymentCommandHandler(repo, gateway, &mockEventBus{})

		_, err := handler.Handle(context.Background(), commands.CapturePaymentCommand{
			OrderID: "order-1",
			UserID:  "user-1",
		})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if repo.setPaymentIfPendingCalls != 0 {
			t.Errorf("expected no status write on gateway failure, got %d", repo.setPaymentIfPendingCalls)
		}
	})

	t.Run("lost race defers to the stored outcome", func(t *testing.T) {
		order := pendingOrder()
		stored := pendingOrder()
		stored.PaymentStatus = domain.PaymentFailed

		calls := 0
		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
				calls++
				if calls == 1 {
					return order, nil
				}
				return stored, nil
			},
			setPaymentIfPendingFn: func(ctx context.Context, id string, status domain.PaymentStatus) (bool, error) {
				return false, nil
			},
		}
		handler := commands.NewCapturePaymentCommandHandler(repo, &mockGateway{}, &mockEventBus{})

		got, err := handler.Handle(context.Background(), commands.CapturePaymentCommand{
			OrderID: "order-1",
			UserID:  "user-1",
		})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if got.PaymentStatus != domain.PaymentFailed {
			t.Errorf("expected stored outcome failed, got %s", got.PaymentStatus)
		}
	})

	t.Run("rejects another user's order", func(t *testing.T) {
		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
				return pendingOrder(), nil
			},
		}
		gateway := &mockGateway{}
		handler := commands.NewCapturePaymentCommandHandler(repo, gateway, &mockEventBus{})

		_, err := handler.Handle(context.Background(), commands.CapturePaymentCommand{
			OrderID: "order-1",
			UserID:  "user-2",
		})
		if !errors.Is(err, ports.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got: %v", err)
		}
		if gateway.captureIntentCalls != 0 {
			t.Errorf("expected no capture call, got %d", gateway.captureIntentCalls)
		}
	})

	t.Run("falls back to the callback token when no intent is attached", func(t *testing.T) {
		order := pendingOrder()
		order.IntentID = ""
		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
				return order, nil
			},
		}
		var capturedIntent string
		gateway := &mockGateway{
			captureIntentFn: func(ctx context.Context, intentID string) (*ports.CaptureResult, error) {
				capturedIntent = intentID
				return &ports.CaptureResult{Captured: true, Status: "COMPLETED"}, nil
			},
		}
		handler := commands.NewCapturePaymentCommandHandler(repo, gateway, &mockEventBus{})

		_, err := handler.Handle(context.Background(), commands.CapturePaymentCommand{
			OrderID:     "order-1",
			UserID:      "user-1",
			IntentToken: "token-from-redirect",
		})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if capturedIntent != "token-from-redirect" {
			t.Errorf("expected redirect token used, got %q", capturedIntent)
		}
	})
}
