package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    Namespace + "_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	PageNavigations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_page_navigations_total",
			Help: "Navigation requests by resulting page and outcome",
		},
		[]string{"page", "outcome"},
	)

	SessionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_session_transitions_total",
			Help: "Session state changes by kind and target state",
		},
		[]string{"kind", "to"},
	)

	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_auth_attempts_total",
			Help: "Auth gate submissions by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)

	DocumentsCaptured = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_documents_captured_total",
			Help: "Documents appended to the document store",
		},
		[]string{"collection"},
	)

	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    Namespace + "_storage_operation_duration_seconds",
			Help:    "Time to complete storage operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store", "operation"},
	)

	PresenceOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    Namespace + "_presence_operation_duration_seconds",
			Help:    "Time to complete presence tracker operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store", "operation"},
	)

	ActiveUsers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: Namespace + "_active_users",
			Help: "Current number of users marked active",
		},
		[]string{"store"},
	)

	BackoffAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_backoff_attempts_total",
			Help: "Outbound HTTP attempts made by the retry helper",
		},
		[]string{"outcome"},
	)

	NarrationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_narration_requests_total",
			Help: "Narration toggles and synthesis requests",
		},
		[]string{"mode", "result"},
	)

	IsLeader = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: Namespace + "_leader_is_leader",
			Help: "1 if this instance is the leader, 0 otherwise",
		},
	)
	LeadershipChanges = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: Namespace + "_leader_changes_total",
			Help: "Total number of leadership changes",
		})
)
