package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewServerMetrics(service string) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"path", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shop",
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"path"})

	prometheus.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

// CheckoutMetrics はチェックアウトの成否を数える。
type CheckoutMetrics struct {
	OrdersPlaced prometheus.Counter
	Failures     *prometheus.CounterVec
}

func NewCheckoutMetrics() *CheckoutMetrics {
	placed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: "checkout",
		Name:      "orders_placed_total",
		Help:      "Successfully placed orders.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: "checkout",
		Name:      "failures_total",
		Help:      "Failed checkout attempts by reason.",
	}, []string{"reason"})

	prometheus.MustRegister(placed, failures)
	return &CheckoutMetrics{OrdersPlaced: placed, Failures: failures}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
