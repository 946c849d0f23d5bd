package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"evspare/internal/cart"
	"evspare/internal/metrics"
	"evspare/internal/models"
	"evspare/internal/repositories"

	"github.com/rs/zerolog"
)

// TaxRateSource supplies the current tax rate in percent.
type TaxRateSource interface {
	TaxRate(ctx context.Context) (float64, error)
}

// OrderItemInput is one requested line. Prices always come from the catalog.
type OrderItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// OrderDetails is the delivery information attached to an order.
type OrderDetails struct {
	ShippingAddress string
	BillingAddress  string
	Notes           string
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orders   repositories.OrderRepository
	products repositories.ProductRepository
	tax      TaxRateSource
	carts    cart.Store
	events   EventPublisher
	log      zerolog.Logger
	now      func() time.Time
}

// NewOrderService creates a new OrderService. events may be nil.
func NewOrderService(orders repositories.OrderRepository, products repositories.ProductRepository, tax TaxRateSource, carts cart.Store, events EventPublisher, log zerolog.Logger) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		tax:      tax,
		carts:    carts,
		events:   events,
		log:      log,
		now:      time.Now,
	}
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// CreateOrder places an order for actor from an explicit item list.
func (s *OrderService) CreateOrder(ctx context.Context, actor *models.Session, items []OrderItemInput, details OrderDetails) (*models.Order, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.place(ctx, actor, items, details, "direct")
}

// Checkout places an order from actor's cart and empties the cart.
func (s *OrderService) Checkout(ctx context.Context, actor *models.Session, details OrderDetails) (*models.Order, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	c, err := s.carts.Get(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if c.Empty() {
		return nil, ErrEmptyCart
	}

	items := make([]OrderItemInput, 0, len(c.Lines))
	for _, it := range c.Items() {
		items = append(items, OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	order, err := s.place(ctx, actor, items, details, "checkout")
	if err != nil {
		return nil, err
	}
	if err := s.carts.Delete(ctx, actor.ID); err != nil {
		s.log.Warn().Err(err).Str("session_id", actor.ID).Msg("failed to clear cart after checkout")
	}
	return order, nil
}

func (s *OrderService) place(ctx context.Context, actor *models.Session, items []OrderItemInput, details OrderDetails, source string) (*models.Order, error) {
	details.ShippingAddress = strings.TrimSpace(details.ShippingAddress)
	details.BillingAddress = strings.TrimSpace(details.BillingAddress)
	if details.ShippingAddress == "" {
		return nil, fmt.Errorf("%w: shipping address is required", ErrValidation)
	}
	if details.BillingAddress == "" {
		details.BillingAddress = details.ShippingAddress
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrValidation)
	}

	// Merge repeated products so stock is checked against the combined quantity.
	quantities := make(map[string]int, len(items))
	var productIDs []string
	for _, it := range items {
		if it.ProductID == "" || it.Quantity < 1 {
			return nil, fmt.Errorf("%w: every item needs a product and a quantity of at least 1", ErrValidation)
		}
		if _, seen := quantities[it.ProductID]; !seen {
			productIDs = append(productIDs, it.ProductID)
		}
		quantities[it.ProductID] += it.Quantity
	}

	order := &models.Order{
		UserID:          actor.UserID,
		Status:          models.OrderPending,
		ShippingAddress: details.ShippingAddress,
		BillingAddress:  details.BillingAddress,
		Notes:           strings.TrimSpace(details.Notes),
	}
	for _, id := range productIDs {
		qty := quantities[id]
		p, err := s.products.GetByID(ctx, id)
		if errors.Is(err, repositories.ErrNotFound) || (err == nil && !p.IsActive) {
			return nil, fmt.Errorf("%w: product %s is not available", ErrValidation, id)
		}
		if err != nil {
			return nil, repoErr(err, "product "+id)
		}
		if p.StockQuantity < qty {
			return nil, fmt.Errorf("%w: %s (requested %d, available %d)", ErrInsufficientStock, p.Name, qty, p.StockQuantity)
		}
		line := roundMoney(p.Price * float64(qty))
		order.Items = append(order.Items, models.OrderItem{
			ProductID:  p.ID,
			Quantity:   qty,
			UnitPrice:  p.Price,
			TotalPrice: line,
		})
		order.Subtotal += line
	}

	rate, err := s.tax.TaxRate(ctx)
	if err != nil {
		return nil, err
	}
	order.Subtotal = roundMoney(order.Subtotal)
	order.TaxAmount = roundMoney(order.Subtotal * rate / 100)
	order.TotalAmount = roundMoney(order.Subtotal + order.TaxAmount)

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, repoErr(err, "create order")
	}

	metrics.OrdersCreatedTotal.WithLabelValues(source).Inc()
	metrics.OrderAmount.Observe(order.TotalAmount)
	s.log.Info().Str("order_id", order.ID).Str("user_id", order.UserID).Float64("total_amount", order.TotalAmount).Msg("order placed")
	publishOrderEvent(s.events, s.log, RoutingOrderCreated, newOrderEvent(order, s.now()))
	return order, nil
}

// ListMyOrders returns actor's orders, newest first.
func (s *OrderService) ListMyOrders(ctx context.Context, actor *models.Session) ([]models.Order, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.orders.ListByUser(ctx, actor.UserID)
}

// GetMyOrder returns one of actor's orders. Other users' orders are not found.
func (s *OrderService) GetMyOrder(ctx context.Context, actor *models.Session, id string) (*models.Order, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "order "+id)
	}
	if order.UserID != actor.UserID {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return order, nil
}

// ListAllOrders returns every order, newest first. Admin only.
func (s *OrderService) ListAllOrders(ctx context.Context, actor *models.Session) ([]models.Order, error) {
	if err := requireAdminActor(actor); err != nil {
		return nil, err
	}
	return s.orders.List(ctx)
}

// GetOrder returns any order. Admin only.
func (s *OrderService) GetOrder(ctx context.Context, actor *models.Session, id string) (*models.Order, error) {
	if err := requireAdminActor(actor); err != nil {
		return nil, err
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "order "+id)
	}
	return order, nil
}

// UpdateOrderStatus moves an order to status. Admin only.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, actor *models.Session, id string, status string) (*models.Order, error) {
	if err := requireAdminActor(actor); err != nil {
		return nil, err
	}
	st := models.OrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if !st.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrderStatus, status)
	}
	if err := s.orders.UpdateStatus(ctx, id, st); err != nil {
		return nil, repoErr(err, "order "+id)
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "order "+id)
	}
	metrics.OrderStatusChangesTotal.WithLabelValues(string(st)).Inc()
	s.log.Info().Str("order_id", id).Str("status", string(st)).Str("by", actor.UserID).Msg("order status updated")
	publishOrderEvent(s.events, s.log, RoutingOrderStatusChanged, newOrderEvent(order, s.now()))
	return order, nil
}
