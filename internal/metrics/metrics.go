// Package metrics exposes Prometheus instruments for the HTTP API, the
// reservation service and outbound notifications.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reservations_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reservations_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reservations_operations_total",
		Help: "Reservation service calls by operation and result",
	}, []string{"operation", "result"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reservations_operation_duration_seconds",
		Help:    "Duration of reservation service calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reservations_notifications_total",
		Help: "Notifications handed to the notifier by event and result",
	}, []string{"event", "result"})

	reservationsByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "reservations_by_status",
		Help: "Stored reservations per status as of the last listing",
	}, []string{"status"})
)

// ObserveHTTPRequest records an HTTP request metric.
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveOperation records one reservation service call. result is "ok" or an
// error kind label.
func ObserveOperation(operation, result string, duration time.Duration) {
	if result == "" {
		result = "ok"
	}
	operationsTotal.WithLabelValues(operation, result).Inc()
	operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveNotification counts a notification attempt.
func ObserveNotification(event string, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	notificationsTotal.WithLabelValues(event, result).Inc()
}

// SetReservationsByStatus replaces the per-status gauge values. Statuses
// absent from counts are reset to zero.
func SetReservationsByStatus(statuses []string, counts map[string]int) {
	for _, s := range statuses {
		reservationsByStatus.WithLabelValues(s).Set(float64(counts[s]))
	}
}
