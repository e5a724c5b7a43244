package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the gateway collectors. Each instance owns its registry
// so several servers can live in one process (tests).
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	ordersTotal     *prometheus.CounterVec
	orderVolume     *prometheus.HistogramVec
	failuresTotal   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxgate_http_requests_total",
				Help: "HTTP requests served, by route and status code",
			},
			[]string{"route", "method", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fxgate_http_request_duration_seconds",
				Help:    "HTTP request latency, upstream round-trips included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		ordersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxgate_orders_total",
				Help: "Orders submitted upstream",
			},
			[]string{"symbol", "direction", "sizing"},
		),
		orderVolume: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fxgate_order_volume_lots",
				Help:    "Distribution of submitted order volumes",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"symbol"},
		),
		failuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxgate_failures_total",
				Help: "Failed requests, by stage",
			},
			[]string{"stage"},
		),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.ordersTotal,
		m.orderVolume,
		m.failuresTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the Prometheus metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(route, method string, code int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// RecordOrder counts a submitted order. sizing is "risk" or "fixed".
func (m *Metrics) RecordOrder(symbol, direction, sizing string, volume float64) {
	m.ordersTotal.WithLabelValues(symbol, direction, sizing).Inc()
	m.orderVolume.WithLabelValues(symbol).Observe(volume)
}

func (m *Metrics) RecordFailure(stage string) {
	m.failuresTotal.WithLabelValues(stage).Inc()
}
