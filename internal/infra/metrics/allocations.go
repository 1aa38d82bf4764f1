package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// SeatsReserved counts seats written during post-payment fan-out.
	SeatsReserved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pos",
			Subsystem: "allocations",
			Name:      "seats_reserved_total",
			Help:      "Seats reserved during fan-out.",
		},
	)

	// SeatsSkipped counts paid seats skipped because the slot filled between
	// quote and fan-out.
	SeatsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pos",
			Subsystem: "allocations",
			Name:      "seats_skipped_total",
			Help:      "Paid seats skipped because the slot was full.",
		},
	)

	// AdmissionsIssued counts casual and general admissions created.
	AdmissionsIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pos",
			Subsystem: "allocations",
			Name:      "admissions_issued_total",
			Help:      "Admissions created during fan-out, by kind.",
		},
		[]string{"kind"},
	)

	// PassRedemptions counts prepaid pass redemptions by outcome.
	PassRedemptions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pos",
			Subsystem: "allocations",
			Name:      "pass_redemptions_total",
			Help:      "Prepaid pass redemptions by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	register(
		SeatsReserved,
		SeatsSkipped,
		AdmissionsIssued,
		PassRedemptions,
	)
}
