package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collegehub_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// NotificationsCreated counts notification inserts by kind and outcome (created|failed|rejected).
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collegehub_notifications_created_total",
			Help: "Total number of dashboard notifications written",
		},
		[]string{"kind", "result"},
	)

	// NotificationsMarkedRead counts entries flipped to read.
	NotificationsMarkedRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "collegehub_notifications_marked_read_total",
			Help: "Total number of notifications marked as read",
		},
	)

	// EventDeliveries counts binding executions per event and outcome (ok|error|panic).
	EventDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collegehub_event_deliveries_total",
			Help: "Domain event binding executions",
		},
		[]string{"event", "result"},
	)

	// NotificationsPurged counts rows removed by the retention job.
	NotificationsPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "collegehub_notifications_purged_total",
			Help: "Read notifications deleted by retention cleanup",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "collegehub_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
