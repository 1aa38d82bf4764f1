package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"gym-studio-pos/internal/domain/ports/repository"
	"gym-studio-pos/internal/infra/metrics"
)

// MetricsPoller refreshes the status gauges from storage counts.
type MetricsPoller struct {
	interval     time.Duration
	memberships  repository.MembershipRepository
	transactions repository.TransactionRepository
	log          *zerolog.Logger
}

func NewMetricsPoller(interval time.Duration, memberships repository.MembershipRepository, transactions repository.TransactionRepository, logger *zerolog.Logger) *MetricsPoller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	plog := logger.With().Str("component", "MetricsPoller").Logger()
	return &MetricsPoller{interval: interval, memberships: memberships, transactions: transactions, log: &plog}
}

func (w *MetricsPoller) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *MetricsPoller) tick(ctx context.Context) {
	if counts, err := w.memberships.CountByStatus(ctx, repository.NoTX); err != nil {
		w.log.Warn().Err(err).Msg("membership counts unavailable")
	} else {
		for status, n := range counts {
			metrics.MembershipsByStatus.WithLabelValues(string(status)).Set(float64(n))
		}
	}

	if counts, err := w.transactions.CountByStatus(ctx, repository.NoTX); err != nil {
		w.log.Warn().Err(err).Msg("transaction counts unavailable")
	} else {
		for status, n := range counts {
			metrics.PendingTransactions.WithLabelValues(string(status)).Set(float64(n))
		}
	}
}
