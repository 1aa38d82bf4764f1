package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"gym-studio-pos/internal/domain/ports/repository"
	"gym-studio-pos/internal/infra/metrics"
	"gym-studio-pos/internal/usecase"
)

// PaymentReconciler periodically scans for stale pending transactions and
// settles them against the provider's view of the payment intent. This covers
// missed webhooks and crashes mid-capture.
type PaymentReconciler struct {
	uc           usecase.CheckoutUseCase
	transactions repository.TransactionRepository
	interval     time.Duration // how often to scan
	staleAfter   time.Duration // how old a pending transaction must be to retry
	log          *zerolog.Logger
}

func NewPaymentReconciler(uc usecase.CheckoutUseCase, transactions repository.TransactionRepository, interval, staleAfter time.Duration, logger *zerolog.Logger) *PaymentReconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	rlog := logger.With().Str("component", "PaymentReconciler").Logger()
	return &PaymentReconciler{uc: uc, transactions: transactions, interval: interval, staleAfter: staleAfter, log: &rlog}
}

func (w *PaymentReconciler) Run(ctx context.Context) error {
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

func (w *PaymentReconciler) tick(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	pending, err := w.transactions.ListPendingOlderThan(ctx, repository.NoTX, cutoff, 200)
	if err != nil {
		metrics.ReconcilerRuns.WithLabelValues("list_error").Inc()
		w.log.Error().Err(err).Msg("list pending transactions failed")
		return
	}
	for _, t := range pending {
		if err := w.uc.Reconcile(ctx, t.ID); err != nil {
			metrics.ReconcilerRuns.WithLabelValues("error").Inc()
			w.log.Warn().Err(err).Str("transaction_id", t.ID).Msg("reconcile failed")
			continue
		}
		metrics.ReconcilerRuns.WithLabelValues("ok").Inc()
		w.log.Info().Str("transaction_id", t.ID).Msg("transaction reconciled")
	}
}
