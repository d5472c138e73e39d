package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// Cart metrics
	CartMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Total number of persisted cart mutations by operation",
		},
		[]string{"operation"},
	)

	CartConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_cart_version_conflicts_total",
			Help: "Total number of cart writes retried after a version conflict",
		},
	)

	// Order metrics
	OrdersCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_orders_created_total",
			Help: "Total number of orders created by payment method",
		},
		[]string{"payment_method"},
	)

	OrderStatusTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_order_status_transitions_total",
			Help: "Total number of order status changes",
		},
		[]string{"from", "to"},
	)

	// Notification metrics
	NotificationsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_notifications_published_total",
			Help: "Total number of status-change notifications handed to a sink",
		},
		[]string{"sink"},
	)

	NotificationsDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_notifications_dropped_total",
			Help: "Total number of notifications not delivered by reason",
		},
		[]string{"reason"},
	)

	LiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_live_connections",
			Help: "Number of open live notification connections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		CartMutationsTotal,
		CartConflictsTotal,
		OrdersCreatedTotal,
		OrderStatusTransitionsTotal,
		NotificationsPublishedTotal,
		NotificationsDroppedTotal,
		LiveConnections,
	)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer helps time operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration on a histogram vector
func (t *Timer) ObserveDuration(h *prometheus.HistogramVec, labels ...string) {
	h.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}
