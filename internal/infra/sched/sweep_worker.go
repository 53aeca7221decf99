package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"marketplace-monetization/internal/config"
	"marketplace-monetization/internal/infra/metrics"
	"marketplace-monetization/internal/infra/redis"
	"marketplace-monetization/internal/usecase"
)

const sweepLockKey = "monetization:sweep:lock"

// SweepWorker periodically runs the reconciliation passes. A Redis lock
// guarantees only one replica sweeps per round; losing the race skips the
// round instead of waiting, the next tick will try again.
type SweepWorker struct {
	interval time.Duration
	lockTTL  time.Duration
	sweeps   usecase.SweepUseCase
	locker   redis.Locker
	log      *zerolog.Logger
}

func NewSweepWorker(cfg config.SweepConfig, sweeps usecase.SweepUseCase, locker redis.Locker, logger *zerolog.Logger) *SweepWorker {
	l := logger.With().Str("component", "SweepWorker").Logger()
	return &SweepWorker{
		interval: cfg.Interval,
		lockTTL:  cfg.LockTTL,
		sweeps:   sweeps,
		locker:   locker,
		log:      &l,
	}
}

func (w *SweepWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting sweep worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping sweep worker")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *SweepWorker) tick(ctx context.Context) {
	token, err := w.locker.TryLock(ctx, sweepLockKey, w.lockTTL)
	if err != nil {
		if errors.Is(err, redis.ErrLockHeld) {
			w.log.Debug().Msg("sweep lock held elsewhere, skipping round")
			metrics.IncSweepRun("all", "skipped")
			return
		}
		w.log.Error().Err(err).Msg("sweep lock error")
		return
	}
	defer func() {
		if err := w.locker.Unlock(ctx, sweepLockKey, token); err != nil {
			w.log.Warn().Err(err).Msg("sweep unlock failed, lock will expire by TTL")
		}
	}()

	passes := []struct {
		kind string
		fn   func(context.Context) (int, error)
	}{
		{"stale_payments", w.sweeps.ExpireStalePayments},
		{"stale_card_submissions", w.sweeps.RejectStaleCardSubmissions},
		{"featured_expiry", w.sweeps.ExpireFeatured},
		{"featured_warning", w.sweeps.WarnExpiringFeatured},
		{"listing_expiry", w.sweeps.ExpireListings},
		{"renewal_reminders", w.sweeps.SendRenewalReminders},
	}
	for _, p := range passes {
		n, err := p.fn(ctx)
		if err != nil {
			w.log.Error().Err(err).Str("kind", p.kind).Msg("sweep pass error")
			metrics.IncSweepRun(p.kind, "error")
			continue
		}
		metrics.IncSweepRun(p.kind, "ok")
		if n > 0 {
			w.log.Info().Str("kind", p.kind).Int("count", n).Msg("sweep pass reconciled rows")
		}
	}
}
