package middleware

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	callerProvider = "provider"
	callerBot      = "bot"
	callerBrowser  = "browser"
	callerOps      = "ops"

	unmatchedRoute = "unmatched"
)

var (
	// Requests partitioned by caller, method, route pattern and status code
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "topup",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by caller (provider, bot, browser, ops) and route pattern",
		},
		[]string{"caller", "method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "topup",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"caller", "method", "route"},
	)

	httpInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "topup",
			Name:      "http_inflight_requests",
			Help:      "HTTP requests currently being served",
		},
		[]string{"caller"},
	)
)

// Metrics returns a middleware recording request counts and latencies. Requests to
// skipPaths (the scrape endpoint) are not recorded. Unmatched paths share one label
// value so that scanners cannot grow the series count.
func Metrics(skipPaths ...string) fiber.Handler {
	return func(c fiber.Ctx) error {
		for _, p := range skipPaths {
			if c.Path() == p {
				return c.Next()
			}
		}

		start := time.Now()
		inFlight := httpInFlight.WithLabelValues(callerOf(c.Path()))
		inFlight.Inc()
		defer inFlight.Dec()

		err := c.Next()

		route := unmatchedRoute
		if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
			route = r.Path
		}
		caller := callerOf(route)
		if route == unmatchedRoute {
			caller = callerOf(c.Path())
		}

		httpRequestsTotal.WithLabelValues(caller, c.Method(), route, strconv.Itoa(statusOf(c, err))).Inc()
		httpRequestDuration.WithLabelValues(caller, c.Method(), route).Observe(time.Since(start).Seconds())

		return err
	}
}

// statusOf returns the status the error handler will write for err
func statusOf(c fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// callerOf names who calls a path: the payment provider, the chat bot, the payer's browser or operators
func callerOf(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/v1/payments/"):
		return callerProvider
	case strings.HasPrefix(path, "/api/v1/bot/"):
		return callerBot
	case path == "/pay":
		return callerBrowser
	default:
		return callerOps
	}
}
