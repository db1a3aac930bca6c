// Package metrics holds the prometheus collectors of the service.
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

const Namespace = "geoconfig"

var (
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route", "code"},
	)

	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "code"},
	)

	// RegistryOperations counts registry calls by outcome; result is "ok" or
	// the lower-cased error kind.
	RegistryOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "registry_operations_total",
			Help:      "Registry operations by outcome",
		},
		[]string{"operation", "result"},
	)

	ParamsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "params",
		Help:      "Number of stored config params",
	})

	OverridesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "overrides",
		Help:      "Number of stored country overrides",
	})

	OrphanedOverrides = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "overrides_orphaned",
		Help:      "Overrides whose parent param no longer exists",
	})
)

// GinMiddleware records latency and count of every request except the
// metrics and health endpoints themselves.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" || c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		code := strconv.Itoa(c.Writer.Status())

		RequestDuration.WithLabelValues(c.Request.Method, route, code).Observe(time.Since(start).Seconds())
		RequestsTotal.WithLabelValues(c.Request.Method, route, code).Inc()
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// GinMetricsHandler exposes the default registry on a gin route.
func GinMetricsHandler() gin.HandlerFunc {
	h := Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
