package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TaskTransitions counts applied status changes by target status.
	TaskTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskdesk",
		Name:      "task_transitions_total",
		Help:      "Applied task status transitions by target status.",
	}, []string{"status"})

	// AuthorizationDenied counts denied permission checks by category.
	AuthorizationDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskdesk",
		Name:      "authorization_denied_total",
		Help:      "Denied authorization checks by permission category.",
	}, []string{"category"})

	// NotificationsDispatched counts stored notifications by kind.
	NotificationsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskdesk",
		Name:      "notifications_dispatched_total",
		Help:      "Notifications written to the store by kind.",
	}, []string{"kind"})

	// PushSendFailures counts push deliveries that errored.
	PushSendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "taskdesk",
		Name:      "push_send_failures_total",
		Help:      "Push notification deliveries that returned an error.",
	})

	// AuditWriteFailures counts activity log writes that were swallowed.
	AuditWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "taskdesk",
		Name:      "audit_write_failures_total",
		Help:      "Activity log writes that failed and were logged instead.",
	})

	// SweepRuns counts sweep executions by job name.
	SweepRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskdesk",
		Name:      "sweep_runs_total",
		Help:      "Background sweep executions by job.",
	}, []string{"job"})
)
