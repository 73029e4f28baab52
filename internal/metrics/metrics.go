// Package metrics exposes the Prometheus collectors shared across the API.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "forkful"

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// SearchFetchTotal counts search fetches by surface and outcome.
	SearchFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_fetch_total",
			Help:      "Recipe search fetches by surface and outcome",
		},
		[]string{"surface", "outcome"},
	)

	// CacheRequestsTotal counts cache lookups.
	CacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups by cache name and result",
		},
		[]string{"cache", "result"}, // "hit" / "miss" / "error"
	)

	// NotificationsSentTotal counts milestone notifications by delivery result.
	NotificationsSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Milestone notifications by type and delivery result",
		},
		[]string{"type", "result"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(SearchFetchTotal)
	prometheus.MustRegister(CacheRequestsTotal)
	prometheus.MustRegister(NotificationsSentTotal)
}

// Middleware records HTTP request duration and count per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		path := normalizePath(c.FullPath())
		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}

// normalizePath keeps label cardinality bounded to registered routes.
func normalizePath(path string) string {
	if path == "" {
		return "unknown"
	}
	return path
}
