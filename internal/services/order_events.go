package services

import (
	"encoding/json"
	"fmt"
	"time"

	"evspare/internal/metrics"
	"evspare/internal/models"

	"github.com/rs/zerolog"
)

// Order event routing. Events go to a topic exchange so other consumers can bind
// their own queues.
const (
	OrdersExchange            = "orders"
	RoutingOrderCreated       = "order.created"
	RoutingOrderStatusChanged = "order.status_changed"
)

// EventPublisher sends a message to an exchange.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// OrderEvent is the JSON body of every order event.
type OrderEvent struct {
	OrderID    string             `json:"order_id"`
	UserID     string             `json:"user_id"`
	Status     models.OrderStatus `json:"status"`
	Total      float64            `json:"total_amount"`
	ItemCount  int                `json:"item_count"`
	OccurredAt time.Time          `json:"occurred_at"`
}

func newOrderEvent(o *models.Order, at time.Time) OrderEvent {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return OrderEvent{
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     o.Status,
		Total:      o.TotalAmount,
		ItemCount:  n,
		OccurredAt: at,
	}
}

// publishOrderEvent never fails the caller; the order is already committed.
func publishOrderEvent(pub EventPublisher, log zerolog.Logger, routingKey string, ev OrderEvent) {
	if pub == nil {
		log.Debug().Str("routing_key", routingKey).Str("order_id", ev.OrderID).Msg("event publishing disabled")
		return
	}
	body, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("order_id", ev.OrderID).Msg("failed to marshal order event")
		return
	}
	if err := pub.Publish(OrdersExchange, routingKey, body); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(routingKey, "error").Inc()
		log.Warn().Err(err).Str("routing_key", routingKey).Str("order_id", ev.OrderID).Msg("failed to publish order event")
		return
	}
	metrics.EventsPublishedTotal.WithLabelValues(routingKey, "ok").Inc()
}

// OrderEventHandler consumes order events from the broker and records them.
type OrderEventHandler struct {
	log zerolog.Logger
}

func NewOrderEventHandler(log zerolog.Logger) *OrderEventHandler {
	return &OrderEventHandler{log: log}
}

// Handle decodes one event. A malformed body is an error and is not retried.
func (h *OrderEventHandler) Handle(routingKey string, body []byte) error {
	var ev OrderEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		metrics.EventsConsumedTotal.WithLabelValues(routingKey, "error").Inc()
		return fmt.Errorf("decode %s event: %w", routingKey, err)
	}
	if ev.OrderID == "" {
		metrics.EventsConsumedTotal.WithLabelValues(routingKey, "error").Inc()
		return fmt.Errorf("decode %s event: missing order_id", routingKey)
	}
	metrics.EventsConsumedTotal.WithLabelValues(routingKey, "ok").Inc()
	h.log.Info().
		Str("routing_key", routingKey).
		Str("order_id", ev.OrderID).
		Str("user_id", ev.UserID).
		Str("status", string(ev.Status)).
		Float64("total_amount", ev.Total).
		Msg("order event received")
	return nil
}
