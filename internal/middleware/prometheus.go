package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pincheck_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pincheck_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pincheck_http_active_requests",
			Help: "Number of in-flight HTTP requests",
		},
	)
)

// PrometheusMiddleware records request counts and latencies per route.
func PrometheusMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		path := c.Path()
		if strings.HasPrefix(path, "/metrics") {
			return c.Next()
		}

		start := time.Now()
		httpActiveRequests.Inc()
		defer httpActiveRequests.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}

		// Unmatched and static paths share one label.
		routePath := c.Route().Path
		if routePath == "" || (routePath == "/" && path != "/") {
			routePath = "unmatched"
		}

		httpRequestsTotal.WithLabelValues(c.Method(), routePath, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), routePath).Observe(time.Since(start).Seconds())

		return err
	}
}

// PrometheusHandler serves the default registry in the exposition format.
func PrometheusHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
