// Package metrics collects and exposes Prometheus metrics of the server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector is used by the HTTP layer and the health monitor.
type MetricsCollector interface {
	RecordRequest(api, method, route string, statusCode int, duration time.Duration)
	RecordAuthFailure(api, reason string)
	RecordSessionCreated()
	SetBackendUp(backend string, up bool)
}

// Collector is the Prometheus implementation of MetricsCollector.
type Collector struct {
	requests        *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	authFailures    *prometheus.CounterVec
	sessionsCreated prometheus.Counter
	backendUp       *prometheus.GaugeVec
}

var _ MetricsCollector = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "secretkeeper_http_requests_total",
			Help: "HTTP requests by API, method, route and status code",
		}, []string{"api", "method", "route", "status_code"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "secretkeeper_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"api", "route"}),
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "secretkeeper_auth_failures_total",
			Help: "Rejected bearer tokens, sessions and logins",
		}, []string{"api", "reason"}),
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "secretkeeper_sessions_created_total",
			Help: "Sessions issued by register and login",
		}),
		backendUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "secretkeeper_backend_up",
			Help: "1 if the last health check of the backend succeeded",
		}, []string{"backend"}),
	}

	reg.MustRegister(
		c.requests,
		c.requestLatency,
		c.authFailures,
		c.sessionsCreated,
		c.backendUp,
	)

	return c
}

// RecordRequest counts a finished request and observes its latency.
// route is the matched route pattern, not the raw path.
func (c *Collector) RecordRequest(api, method, route string, statusCode int, duration time.Duration) {
	c.requests.WithLabelValues(api, method, route, strconv.Itoa(statusCode)).Inc()
	c.requestLatency.WithLabelValues(api, route).Observe(duration.Seconds())
}

func (c *Collector) RecordAuthFailure(api, reason string) {
	c.authFailures.WithLabelValues(api, reason).Inc()
}

func (c *Collector) RecordSessionCreated() {
	c.sessionsCreated.Inc()
}

func (c *Collector) SetBackendUp(backend string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	c.backendUp.WithLabelValues(backend).Set(v)
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
