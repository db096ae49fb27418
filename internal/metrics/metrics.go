// Package metrics holds the prometheus collectors for the API server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal  *prometheus.CounterVec
	RequestLatency *prometheus.HistogramVec
	BookOperations *prometheus.CounterVec
	LoginAttempts  *prometheus.CounterVec
	TokensPurged   prometheus.Counter
}

// New registers every collector on a fresh registry, plus the Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		RequestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_requests_latency_seconds",
				Help:    "Latency of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		BookOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "library_book_operations_total",
				Help: "Book operations by kind and outcome",
			},
			[]string{"operation", "result"}, // list|get|create|update|delete, ok|not_found|invalid|error
		),
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "library_login_attempts_total",
				Help: "Login attempts by outcome",
			},
			[]string{"result"},
		),
		TokensPurged: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "library_revoked_tokens_purged_total",
				Help: "Expired revoked tokens removed by maintenance",
			},
		),
	}

	m.registry.MustRegister(
		m.RequestsTotal,
		m.RequestLatency,
		m.BookOperations,
		m.LoginAttempts,
		m.TokensPurged,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records count and latency per matched route. Unmatched
// requests are grouped under "unmatched" to keep label cardinality bounded.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.RequestsTotal.WithLabelValues(route, c.Request.Method, status).Inc()
		m.RequestLatency.WithLabelValues(c.Request.Method, route, status).
			Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) ObserveBookOperation(operation, result string) {
	if m == nil {
		return
	}
	m.BookOperations.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) ObserveLogin(result string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) ObservePurge(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.TokensPurged.Add(float64(n))
}
