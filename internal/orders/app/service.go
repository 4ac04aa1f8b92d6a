package app

import (
	"context"
	"log/slog"

	"github.com/jmcampos/tienda/internal/orders/app/commands"
	"github.com/jmcampos/tienda/internal/orders/app/queries"
	"github.com/jmcampos/tienda/internal/orders/domain"
	"github.com/jmcampos/tienda/internal/orders/metrics"
	"github.com/jmcampos/tienda/internal/orders/ports"
)

// Service bundles the order/payment use cases exposed over the API.
type Service struct {
	repo              ports.OrderRepository
	idemStore         ports.IdempotencyStore
	placeOrderHandler commands.PlaceOrderHandler
	captureHandler    commands.CapturePaymentHandler
	getOrderHandler   *queries.GetOrderQueryHandler
	listOrdersHandler *queries.ListOrdersQueryHandler
}

// NewService wires required dependencies.
func NewService(
	repo ports.OrderRepository,
	gateway ports.PaymentGateway,
	events ports.EventBus,
	idem ports.IdempotencyStore,
	logger *slog.Logger,
	m *metrics.Metrics,
	currency string,
) *Service {
	placeHandler := commands.NewPlaceOrderCommandHandler(repo, gateway, events, currency)
	captureHandler := commands.NewCapturePaymentCommandHandler(repo, gateway, events)

	return &Service{
		repo:              repo,
		idemStore:         idem,
		placeOrderHandler: commands.NewObservablePlaceOrderHandler(placeHandler, logger, m),
		captureHandler:    commands.NewObservableCapturePaymentHandler(captureHandler, logger, m),
		getOrderHandler:   queries.NewGetOrderQueryHandler(repo),
		listOrdersHandler: queries.NewListOrdersQueryHandler(repo),
	}
}

// PlaceOrderInput captures the payload for placing an order.
type PlaceOrderInput struct {
	Items        []domain.ItemRequest `json:"items"`
	ClaimedCents int64                `json:"total_cents"`
}

// PlaceOrder creates the order with priced line items and a payment intent.
func (s *Service) PlaceOrder(ctx context.Context, userID string, input PlaceOrderInput) (*commands.PlacedOrder, error) {
	return s.placeOrderHandler.Handle(ctx, commands.PlaceOrderCommand{
		UserID:       userID,
		Items:        input.Items,
		ClaimedCents: input.ClaimedCents,
	})
}

// CapturePayment reconciles the processor capture callback into the order.
func (s *Service) CapturePayment(ctx context.Context, cmd commands.CapturePaymentCommand) (*domain.Order, error) {
	return s.captureHandler.Handle(ctx, cmd)
}

// GetOrder retrieves an order, enforcing ownership for non-admins.
func (s *Service) GetOrder(ctx context.Context, orderID, userID string, isAdmin bool) (*domain.Order, error) {
	return s.getOrderHandler.Handle(ctx, queries.GetOrderQuery{
		OrderID: orderID,
		UserID:  userID,
		IsAdmin: isAdmin,
	})
}

// ListOrders returns the caller's orders, or all orders for admins.
func (s *Service) ListOrders(ctx context.Context, userID string, isAdmin, all bool) ([]domain.Order, error) {
	return s.listOrdersHandler.Handle(ctx, queries.ListOrdersQuery{
		UserID:  userID,
		IsAdmin: isAdmin,
		All:     all,
	})
}

// UpdateOrderStatus moves the fulfilment axis. Admin only; the payment axis
// is never touched here.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID, newStatus string, isAdmin bool) (*domain.Order, error) {
	if !isAdmin {
		return nil, ports.ErrForbidden
	}

	status, err := domain.ParseOrderStatus(newStatus)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetOrderStatus(ctx, orderID, status); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, orderID)
}

// SaveIdempotentResponse writes response details for a key.
func (s *Service) SaveIdempotentResponse(ctx context.Context, key string, response ports.StoredResponse) error {
	return s.idemStore.Save(ctx, key, response)
}

// GetIdempotentResponse retrieves previously stored response data.
func (s *Service) GetIdempotentResponse(ctx context.Context, key string) (*ports.StoredResponse, error) {
	return s.idemStore.Get(ctx, key)
}
