// Package metrics exposes Prometheus collectors for provider calls, notifications and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orris-inc/f2fpay/internal/application/payment/usecases"
)

const namespace = "f2fpay"

type Metrics struct {
	registry *prometheus.Registry

	remoteCalls        *prometheus.CounterVec
	remoteCallDuration *prometheus.HistogramVec
	notifications      *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry, including Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		remoteCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "alipay",
				Name:      "calls_total",
				Help:      "Alipay OpenAPI calls by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		remoteCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "alipay",
				Name:      "call_duration_seconds",
				Help:      "Alipay OpenAPI call latency in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
			},
			[]string{"method"},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "alipay",
				Name:      "notifications_total",
				Help:      "Asynchronous notifications by classification and acknowledgement",
			},
			[]string{"kind", "ack"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"handler", "method", "status_code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"handler", "method", "status_code"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.remoteCalls,
		m.remoteCallDuration,
		m.notifications,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) ObserveRemoteCall(method, outcome string, elapsed time.Duration) {
	m.remoteCalls.WithLabelValues(method, outcome).Inc()
	m.remoteCallDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveNotification(kind string, ack usecases.AckToken) {
	m.notifications.WithLabelValues(kind, ack.String()).Inc()
}

func (m *Metrics) ObserveHTTP(handler, method string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(handler, method, code).Inc()
	m.httpDuration.WithLabelValues(handler, method, code).Observe(elapsed.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
