package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// MembershipsByStatus gauges the membership population per status.
	MembershipsByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "pos",
			Subsystem: "memberships",
			Name:      "by_status",
			Help:      "Memberships by lifecycle status.",
		},
		[]string{"status"},
	)

	// LifecycleTransitions counts pause, resume, cancel and reactivate events.
	LifecycleTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pos",
			Subsystem: "memberships",
			Name:      "lifecycle_transitions_total",
			Help:      "Membership lifecycle transitions by kind.",
		},
		[]string{"kind"},
	)

	// BillingSyncFailures counts provider sync warnings where local state
	// committed but the provider update did not.
	BillingSyncFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pos",
			Subsystem: "memberships",
			Name:      "billing_sync_failures_total",
			Help:      "Provider subscription syncs that failed after local commit.",
		},
	)

	// WorkerActivations counts scheduler activations (due pauses, due resumes,
	// due cancellations) by job.
	WorkerActivations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pos",
			Subsystem: "memberships",
			Name:      "worker_activations_total",
			Help:      "Due lifecycle records processed by the scheduler.",
		},
		[]string{"job"},
	)
)

func init() {
	register(
		MembershipsByStatus,
		LifecycleTransitions,
		BillingSyncFailures,
		WorkerActivations,
	)
}
