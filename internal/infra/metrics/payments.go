package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// TransactionsTotal counts transactions by final status.
	TransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pos",
			Subsystem: "payments",
			Name:      "transactions_total",
			Help:      "Checkout transactions by final status.",
		},
		[]string{"status"},
	)

	// TransactionAmount observes captured totals in major currency units.
	TransactionAmount = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pos",
			Subsystem: "payments",
			Name:      "transaction_amount",
			Help:      "Captured transaction totals.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	// ProviderErrors counts failed calls to the billing provider by operation.
	ProviderErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pos",
			Subsystem: "payments",
			Name:      "provider_errors_total",
			Help:      "Billing provider call failures.",
		},
		[]string{"op"},
	)

	// PendingTransactions gauges transactions awaiting capture or webhook.
	PendingTransactions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "pos",
			Subsystem: "payments",
			Name:      "pending_transactions",
			Help:      "Transactions not yet finalized, by status.",
		},
		[]string{"status"},
	)

	// ReconcilerRuns counts reconciler sweeps by outcome.
	ReconcilerRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pos",
			Subsystem: "payments",
			Name:      "reconciler_runs_total",
			Help:      "Payment reconciler sweeps by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	register(
		TransactionsTotal,
		TransactionAmount,
		ProviderErrors,
		PendingTransactions,
		ReconcilerRuns,
	)
}
