package metrics

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	callbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "votes_callbacks_total",
		Help: "Gateway callbacks by reconciliation disposition",
	}, []string{"disposition"})

	gatewayRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "votes_gateway_requests_total",
		Help: "Outbound gateway calls by operation and outcome",
	}, []string{"operation", "outcome"})

	tallyApplicationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "votes_tally_applications_total",
		Help: "Counter updates by path (atomic, fallback, skipped, error)",
	}, []string{"path"})

	amountMismatchTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "votes_amount_mismatch_total",
		Help: "Completed payments whose confirmed amount differs from the expected amount",
	})

	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "votes_submissions_total",
		Help: "Vote submissions by result",
	}, []string{"result"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "votes_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "code"})
)

func ObserveCallback(disposition string) {
	callbacksTotal.WithLabelValues(disposition).Inc()
}

func ObserveGatewayRequest(operation, outcome string) {
	gatewayRequestsTotal.WithLabelValues(operation, outcome).Inc()
}

func ObserveTally(path string) {
	tallyApplicationsTotal.WithLabelValues(path).Inc()
}

func ObserveAmountMismatch() {
	amountMismatchTotal.Inc()
}

func ObserveSubmission(result string) {
	submissionsTotal.WithLabelValues(result).Inc()
}

// EchoMiddleware times each request against its route template
func EchoMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			timer := prometheus.NewTimer(prometheus.ObserverFunc(func(seconds float64) {
				status := c.Response().Status
				if status == 0 {
					status = http.StatusOK
				}
				httpDuration.WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(status)).Observe(seconds)
			}))
			defer timer.ObserveDuration()

			return next(c)
		}
	}
}

// Handler exposes the default registry
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
