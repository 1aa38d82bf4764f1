package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"gym-studio-pos/internal/infra/metrics"
	"gym-studio-pos/internal/usecase"
)

// LifecycleWorker periodically activates due scheduled pauses, resumes
// elapsed suspensions and finalizes due cancellations via the use case.
type LifecycleWorker struct {
	interval time.Duration
	memUC    usecase.MembershipUseCase
	log      *zerolog.Logger
}

func NewLifecycleWorker(interval time.Duration, memUC usecase.MembershipUseCase, logger *zerolog.Logger) *LifecycleWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	wlog := logger.With().Str("component", "LifecycleWorker").Logger()
	return &LifecycleWorker{interval: interval, memUC: memUC, log: &wlog}
}

func (w *LifecycleWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting lifecycle worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping lifecycle worker")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *LifecycleWorker) tick(ctx context.Context) {
	now := time.Now()

	if n, err := w.memUC.ActivateDuePauses(ctx, now); err != nil {
		w.log.Error().Err(err).Msg("activate due pauses error")
	} else if n > 0 {
		metrics.WorkerActivations.WithLabelValues("pause").Add(float64(n))
		w.log.Info().Int("count", n).Msg("scheduled pauses activated")
	}

	if n, err := w.memUC.ActivateDueResumes(ctx, now); err != nil {
		w.log.Error().Err(err).Msg("activate due resumes error")
	} else if n > 0 {
		metrics.WorkerActivations.WithLabelValues("resume").Add(float64(n))
		w.log.Info().Int("count", n).Msg("scheduled resumes applied")
	}

	if n, err := w.memUC.FinalizeDueCancellations(ctx, now); err != nil {
		w.log.Error().Err(err).Msg("finalize due cancellations error")
	} else if n > 0 {
		metrics.WorkerActivations.WithLabelValues("cancel").Add(float64(n))
		w.log.Info().Int("count", n).Msg("due cancellations finalized")
	}
}
