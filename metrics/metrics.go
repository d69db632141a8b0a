package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the storefront collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	ordersPlaced *prometheus.CounterVec
	orderValue   prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storefront",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "storefront",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"method", "path"},
		),
		ordersPlaced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storefront",
				Subsystem: "orders",
				Name:      "placed_total",
				Help:      "Orders placed, by payment method.",
			},
			[]string{"payment_method"},
		),
		orderValue: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "storefront",
				Subsystem: "orders",
				Name:      "value_cents_total",
				Help:      "Sum of order totals in cents.",
			},
		),
	}
	m.Registry.MustRegister(m.httpRequests, m.httpDuration, m.ordersPlaced, m.orderValue)
	return m
}

// ObserveRequest records one handled request. path should be the route
// template, not the raw URL, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func (m *Metrics) OrderPlaced(paymentMethod string, totalCents int64) {
	m.ordersPlaced.WithLabelValues(paymentMethod).Inc()
	m.orderValue.Add(float64(totalCents))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
