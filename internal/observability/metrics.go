package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the service.
type Metrics struct {
	registry        *prometheus.Registry
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorCount      *prometheus.CounterVec
	lotteryOps      *prometheus.CounterVec
	payoutAmount    *prometheus.CounterVec
}

// NewMetrics registers collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lottery",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lottery",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lottery",
			Name:      "http_errors_total",
			Help:      "HTTP error responses by error code.",
		}, []string{"path", "method", "code"}),
		lotteryOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lottery",
			Name:      "operations_total",
			Help:      "Lottery operations by name and outcome.",
		}, []string{"op", "outcome"}),
		payoutAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lottery",
			Name:      "payouts_amount_total",
			Help:      "Amount paid out of lotteries by payout kind.",
		}, []string{"kind"}),
	}
	m.registry.MustRegister(m.requestCount, m.requestDuration, m.errorCount, m.lotteryOps, m.payoutAmount)
	return m
}

// RecordRequest counts a served request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError counts an error response.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(path, method, code).Inc()
}

// RecordOperation counts a lottery operation. outcome is "ok" or the rejection kind.
func (m *Metrics) RecordOperation(op, outcome string) {
	if m == nil {
		return
	}
	m.lotteryOps.WithLabelValues(op, outcome).Inc()
}

// RecordPayout adds amount to the paid-out total of kind.
func (m *Metrics) RecordPayout(kind string, amount uint64) {
	if m == nil {
		return
	}
	m.payoutAmount.WithLabelValues(kind).Add(float64(amount))
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
