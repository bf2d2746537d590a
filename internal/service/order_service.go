package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/artisans-corner/storefront/internal/entity"
	"github.com/artisans-corner/storefront/internal/messaging"
	"github.com/artisans-corner/storefront/internal/money"
	"github.com/artisans-corner/storefront/internal/repository"
)

// OrderService orchestrates order placement and the downstream event flow.
// It is the order collaborator the checkout flow submits to.
type OrderService struct {
	products  repository.ProductRepository
	orders    repository.OrderRepository
	publisher messaging.Publisher
	taxRate   decimal.Decimal
}

func NewOrderService(
	products repository.ProductRepository,
	orders repository.OrderRepository,
	publisher messaging.Publisher,
	taxRate decimal.Decimal,
) *OrderService {
	return &OrderService{
		products:  products,
		orders:    orders,
		publisher: publisher,
		taxRate:   taxRate,
	}
}

// PlaceOrder validates the command, re-prices every line from the catalog
// (client prices are never trusted), writes the order and publishes
// OrderPlaced. Placement is idempotent on the order id.
func (s *OrderService) PlaceOrder(ctx context.Context, cmd *entity.PlaceOrder) (string, error) {
	slog.Info("Service: Placing order", "order_id", cmd.OrderID, "lines", len(cmd.Lines))

	if len(cmd.Lines) == 0 {
		return "", fmt.Errorf("order must have at least one item")
	}

	var items []entity.OrderItem
	var subtotal int64
	for _, line := range cmd.Lines {
		if line.Quantity <= 0 {
			return "", fmt.Errorf("invalid quantity %d for product %s", line.Quantity, line.ProductID)
		}

		p, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			return "", fmt.Errorf("failed to price product %s: %w", line.ProductID, err)
		}

		items = append(items, entity.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  line.Quantity,
		})
		subtotal += p.Price * int64(line.Quantity)
	}

	total := subtotal + money.Tax(subtotal, s.taxRate)
	if cmd.ClientTotal != 0 && cmd.ClientTotal != total {
		slog.Warn("Client total disagrees with server pricing",
			"order_id", cmd.OrderID, "client_total", cmd.ClientTotal, "server_total", total)
	}

	order := entity.Order{
		ID:         cmd.OrderID,
		UserID:     cmd.UserID,
		Items:      items,
		Total:      total,
		PaymentRef: cmd.PaymentRef,
		Status:     "placed",
		CreatedAt:  time.Now(),
	}

	created, err := s.orders.Place(ctx, order)
	if err != nil {
		return "", fmt.Errorf("failed to place order: %w", err)
	}
	if !created {
		slog.Info("Order already exists, skipping (idempotent)", "order_id", cmd.OrderID)
		return cmd.OrderID, nil
	}

	slog.Info("Order saved", "order_id", cmd.OrderID, "total", total)

	event := entity.OrderPlaced{
		OrderID:    order.ID,
		UserID:     order.UserID,
		Items:      order.Items,
		Total:      order.Total,
		PaymentRef: order.PaymentRef,
		PlacedAt:   order.CreatedAt,
	}
	// The order is durable at this point; a publish failure must not make
	// the checkout look like the order was lost.
	if err := s.publisher.PublishEvent(ctx, "orders.placed", order.ID, event); err != nil {
		slog.Error("Failed to publish OrderPlaced", "order_id", order.ID, "err", err)
	}

	return cmd.OrderID, nil
}

// HandleOrderPlaced confirms an order once its OrderPlaced event comes
// back around, then announces the confirmation.
func (s *OrderService) HandleOrderPlaced(ctx context.Context, event *entity.OrderPlaced) error {
	slog.Info("Service: Confirming order", "order_id", event.OrderID)

	if err := s.orders.SetStatus(ctx, event.OrderID, "confirmed"); err != nil {
		return fmt.Errorf("failed to confirm order: %w", err)
	}

	confirmed := entity.OrderConfirmed{
		OrderID:     event.OrderID,
		ConfirmedAt: time.Now(),
	}
	if err := s.publisher.PublishEvent(ctx, "orders.confirmed", event.OrderID, confirmed); err != nil {
		slog.Error("Failed to publish OrderConfirmed", "order_id", event.OrderID, "err", err)
	}

	slog.Info("Order confirmed", "order_id", event.OrderID)
	return nil
}

// HandleOrderConfirmed is the tail of the event loop; downstream systems
// (email, analytics) would hang off this.
func (s *OrderService) HandleOrderConfirmed(ctx context.Context, event *entity.OrderConfirmed) error {
	slog.Info("Order confirmation received", "order_id", event.OrderID, "confirmed_at", event.ConfirmedAt)
	return nil
}

// Order returns one order by id.
func (s *OrderService) Order(ctx context.Context, orderID string) (entity.Order, error) {
	return s.orders.FindByID(ctx, orderID)
}

// OrdersForUser returns a user's orders, newest first.
func (s *OrderService) OrdersForUser(ctx context.Context, userID string, limit int) ([]entity.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.orders.FindByUser(ctx, userID, limit)
}

// RecentOrders returns the latest orders across all users.
func (s *OrderService) RecentOrders(ctx context.Context, limit int) ([]entity.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.orders.FindRecent(ctx, limit)
}
