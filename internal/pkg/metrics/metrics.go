package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cleancity_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cleancity_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	reportTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cleancity_report_transitions_total",
			Help: "Report state machine transitions by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	pointsAwardedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cleancity_points_awarded_total",
			Help: "Sum of points credited on report verification",
		},
	)

	toursTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cleancity_tours_total",
			Help: "Tour lifecycle events by status",
		},
		[]string{"status"},
	)

	capacityRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cleancity_tour_capacity_rejections_total",
			Help: "Tour plans rejected because the vehicle capacity was exceeded",
		},
	)
)

// Middleware records request counts and latencies per matched route.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := "unknown"
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		httpRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// RecordTransition counts a report transition attempt.
func RecordTransition(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	reportTransitionsTotal.WithLabelValues(action, outcome).Inc()
}

func RecordPointsAwarded(points int) {
	if points > 0 {
		pointsAwardedTotal.Add(float64(points))
	}
}

func RecordTour(status string) {
	toursTotal.WithLabelValues(status).Inc()
}

func RecordCapacityRejection() {
	capacityRejectionsTotal.Inc()
}
