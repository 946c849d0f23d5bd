// Package metrics defines every custom Prometheus metric exported by the store.
// All metrics are registered with the default registry on package init and served
// on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "evspare"

// ── Auth ──────────────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts auth operations.
// Labels:
//   - operation: "login", "register", "logout", "update_profile"
//   - result: "success" or a short failure reason (e.g. "invalid_credentials", "email_exists")
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ── Orders ────────────────────────────────────────────────────────────────────

// OrdersCreatedTotal counts placed orders.
// Label:
//   - source: "direct" (explicit item list) or "checkout" (from the cart)
var OrdersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Total number of orders placed, by source.",
	},
	[]string{"source"},
)

// OrderAmount observes order totals including tax.
var OrderAmount = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "order_amount",
		Help:      "Order totals including tax, in store currency.",
		Buckets:   []float64{500, 1000, 2500, 5000, 10000, 25000, 50000, 100000},
	},
)

// OrderStatusChangesTotal counts admin status transitions by new status.
var OrderStatusChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_status_changes_total",
		Help:      "Total number of order status updates, by new status.",
	},
	[]string{"status"},
)

// ── Cart ──────────────────────────────────────────────────────────────────────

// CartOperationsTotal counts cart mutations.
// Label:
//   - operation: "add", "update", "remove", "clear"
var CartOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_operations_total",
		Help:      "Total number of cart mutations, by operation.",
	},
	[]string{"operation"},
)

// ── Events ────────────────────────────────────────────────────────────────────

// EventsPublishedTotal counts order events sent to the broker.
// Labels:
//   - routing_key: e.g. "order.created"
//   - result: "ok" or "error"
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of order events published, by routing key and result.",
	},
	[]string{"routing_key", "result"},
)

// EventsConsumedTotal counts order events received from the broker.
var EventsConsumedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_consumed_total",
		Help:      "Total number of order events consumed, by routing key and result.",
	},
	[]string{"routing_key", "result"},
)

// ── HTTP ──────────────────────────────────────────────────────────────────────

// HTTPRequestsTotal counts handled requests.
// Labels:
//   - method, route (the matched route pattern, not the raw path), status (code class "2xx".."5xx")
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by method, route and status class.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures request latency by route.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests, by method and route.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// StatusClass turns 404 into "4xx".
func StatusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
