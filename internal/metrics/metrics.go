// Package metrics exposes Prometheus metrics for page requests and form
// submissions.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PageKey is the gin context key the dispatcher stores the resolved page or
// asset name under
const PageKey = "page"

// Submission outcomes
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeInvalid  = "invalid"
	OutcomeInFlight = "in_flight"
)

// HTTPBuckets are latency buckets in seconds. Pages wait on the API, so the
// range goes higher than for plain handlers.
var HTTPBuckets = []float64{0.05, 0.1, 0.2, 0.3, 0.5, 1, 2, 5, 10}

// Metrics holds the collectors of the frontend server
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	RequestsInProgress prometheus.Gauge
	SubmissionsTotal   *prometheus.CounterVec
}

// NewWithRegistry creates the collectors and registers them with registerer
func NewWithRegistry(namespace string, registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by page, method and status code",
			},
			[]string{"page", "method", "status_code"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by page",
				Buckets:   HTTPBuckets,
			},
			[]string{"page"},
		),
		RequestsInProgress: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_progress",
				Help:      "Current number of HTTP requests being served",
			},
		),
		SubmissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "form_submissions_total",
				Help:      "Total number of form submissions by page and outcome",
			},
			[]string{"page", "outcome"},
		),
	}
}

// RecordRequest records one served request
func (m *Metrics) RecordRequest(page, method string, statusCode int, duration time.Duration) {
	if page == "" {
		page = "unknown"
	}
	m.RequestsTotal.WithLabelValues(page, method, strconv.Itoa(statusCode)).Inc()
	m.RequestDuration.WithLabelValues(page).Observe(duration.Seconds())
}

// RecordSubmission records the outcome of a form submission
func (m *Metrics) RecordSubmission(page, outcome string) {
	m.SubmissionsTotal.WithLabelValues(page, outcome).Inc()
}

// IsHealthCheckEndpoint reports paths that are not worth measuring
func IsHealthCheckEndpoint(path string) bool {
	switch path {
	case "/metrics", "/health", "/healthz", "/readyz":
		return true
	}
	return false
}

// Middleware measures every request. The page label is whatever the
// dispatcher stored under PageKey, so raw paths never become labels.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsHealthCheckEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		m.RequestsInProgress.Inc()
		defer m.RequestsInProgress.Dec()

		c.Next()

		page := c.GetString(PageKey)
		if page == "" && c.FullPath() != "" {
			page = c.FullPath()
		}
		m.RecordRequest(page, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}

// Handler serves the metrics of gatherer
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
