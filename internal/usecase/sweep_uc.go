// File: internal/usecase/sweep_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"marketplace-monetization/internal/config"
	"marketplace-monetization/internal/domain/model"
	"marketplace-monetization/internal/domain/ports/adapter"
	"marketplace-monetization/internal/domain/ports/repository"
	"marketplace-monetization/internal/infra/metrics"
)

// Compile-time check
var _ SweepUseCase = (*sweepUC)(nil)

// SweepUseCase reconciles state that drifted out of sync. Every method is
// idempotent: running it twice in a row is a no-op the second time. A
// failure on one row is logged and counted, never aborts the rest.
type SweepUseCase interface {
	// ExpireStalePayments moves gateway payments pending longer than the
	// configured window to expired.
	ExpireStalePayments(ctx context.Context) (int, error)
	// RejectStaleCardSubmissions closes card-transfer payments that outlived
	// the (stricter) confirmation window.
	RejectStaleCardSubmissions(ctx context.Context) (int, error)
	// ExpireFeatured deletes placements whose end date has passed.
	ExpireFeatured(ctx context.Context) (int, error)
	// WarnExpiringFeatured sends the one-time "expiring soon" notice,
	// deduplicated through the notification log keyed by placement id.
	WarnExpiringFeatured(ctx context.Context) (int, error)
	// ExpireListings flips still-active listings past their expiry.
	ExpireListings(ctx context.Context) (int, error)
	// SendRenewalReminders notifies owners of listings expiring within the
	// warning window. Days left is recomputed every run; duplicate
	// suppression is the dispatcher's job, not ours.
	SendRenewalReminders(ctx context.Context) (int, error)
}

type sweepUC struct {
	payments   repository.PaymentRepository
	placements repository.FeaturedListingRepository
	listings   repository.ListingRepository
	notifLog   repository.NotificationLogRepository
	notify     adapter.NotificationDispatcher
	cfg        config.SweepConfig
	log        *zerolog.Logger
}

func NewSweepUseCase(
	payments repository.PaymentRepository,
	placements repository.FeaturedListingRepository,
	listings repository.ListingRepository,
	notifLog repository.NotificationLogRepository,
	notify adapter.NotificationDispatcher,
	cfg config.SweepConfig,
	logger *zerolog.Logger,
) *sweepUC {
	l := logger.With().Str("component", "SweepUC").Logger()
	return &sweepUC{
		payments:   payments,
		placements: placements,
		listings:   listings,
		notifLog:   notifLog,
		notify:     notify,
		cfg:        cfg,
		log:        &l,
	}
}

func (u *sweepUC) ExpireStalePayments(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-u.cfg.PendingTimeout())
	stale, err := u.payments.ListPendingOlderThan(ctx, repository.NoTX, model.PaymentMethodGateway, cutoff, u.cfg.BatchLimit)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, p := range stale {
		won, err := u.payments.UpdateStatusIfPending(ctx, repository.NoTX, p.ID, model.PaymentStatusExpired, nil, nil, "payment window elapsed")
		if err != nil {
			u.log.Error().Err(err).Str("payment_id", p.ID).Msg("expire payment failed")
			continue
		}
		if !won {
			continue // verified or failed between listing and the write
		}
		n++
		u.dispatch(ctx, model.Notification{
			Kind:      model.NotifyPaymentExpired,
			UserID:    p.UserID,
			ListingID: p.ListingID,
			Message:   "your payment was not completed in time",
		})
	}
	metrics.AddSwept("payments_expired", n)
	return n, nil
}

func (u *sweepUC) RejectStaleCardSubmissions(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-u.cfg.CardWindow())
	stale, err := u.payments.ListPendingOlderThan(ctx, repository.NoTX, model.PaymentMethodCardTransfer, cutoff, u.cfg.BatchLimit)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, p := range stale {
		won, err := u.payments.UpdateStatusIfPending(ctx, repository.NoTX, p.ID, model.PaymentStatusRejected, nil, nil, "card transfer confirmation window elapsed")
		if err != nil {
			u.log.Error().Err(err).Str("payment_id", p.ID).Msg("reject card submission failed")
			continue
		}
		if !won {
			continue
		}
		n++
		u.dispatch(ctx, model.Notification{
			Kind:      model.NotifyPaymentRejected,
			UserID:    p.UserID,
			ListingID: p.ListingID,
			Message:   "card transfer was not confirmed in time",
		})
	}
	metrics.AddSwept("card_rejected", n)
	return n, nil
}

func (u *sweepUC) ExpireFeatured(ctx context.Context) (int, error) {
	ended, err := u.placements.ListEndedBefore(ctx, repository.NoTX, time.Now(), u.cfg.BatchLimit)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, f := range ended {
		if err := u.placements.Delete(ctx, repository.NoTX, f.ID); err != nil {
			u.log.Error().Err(err).Str("placement_id", f.ID).Msg("delete ended placement failed")
			continue
		}
		n++
		if owner, err := u.ownerOf(ctx, f.ListingID); err == nil {
			u.dispatch(ctx, model.Notification{
				Kind:      model.NotifyFeaturedExpired,
				UserID:    owner,
				ListingID: f.ListingID,
				Message:   "your featured placement has ended",
			})
		}
	}
	metrics.AddSwept("featured_expired", n)
	return n, nil
}

func (u *sweepUC) WarnExpiringFeatured(ctx context.Context) (int, error) {
	window := time.Duration(u.cfg.FeaturedWarningHours) * time.Hour
	ending, err := u.placements.ListEndingWithin(ctx, repository.NoTX, time.Now(), window, u.cfg.BatchLimit)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, f := range ending {
		sent, err := u.notifLog.Exists(ctx, repository.NoTX, f.ID, string(model.NotifyFeaturedExpiring))
		if err != nil {
			u.log.Error().Err(err).Str("placement_id", f.ID).Msg("notification log lookup failed")
			continue
		}
		if sent {
			continue
		}
		owner, err := u.ownerOf(ctx, f.ListingID)
		if err != nil {
			continue
		}
		u.dispatch(ctx, model.Notification{
			Kind:      model.NotifyFeaturedExpiring,
			UserID:    owner,
			ListingID: f.ListingID,
			Message:   "your featured placement ends soon",
		})
		if err := u.notifLog.Save(ctx, repository.NoTX, f.ID, owner, string(model.NotifyFeaturedExpiring)); err != nil {
			u.log.Error().Err(err).Str("placement_id", f.ID).Msg("notification log save failed")
			continue
		}
		n++
	}
	metrics.AddSwept("featured_warned", n)
	return n, nil
}

func (u *sweepUC) ExpireListings(ctx context.Context) (int, error) {
	expired, err := u.listings.ListActiveExpiredBefore(ctx, repository.NoTX, time.Now(), u.cfg.BatchLimit)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, l := range expired {
		won, err := u.listings.ExpireIfActive(ctx, repository.NoTX, l.ID)
		if err != nil {
			u.log.Error().Err(err).Str("listing_id", l.ID).Msg("expire listing failed")
			continue
		}
		if !won {
			continue // renewed or already expired by a concurrent sweep
		}
		n++
		u.dispatch(ctx, model.Notification{
			Kind:      model.NotifyListingExpired,
			UserID:    l.OwnerID,
			ListingID: l.ID,
			Message:   fmt.Sprintf("your listing %q has expired", l.Title),
		})
	}
	metrics.AddSwept("listings_expired", n)
	return n, nil
}

func (u *sweepUC) SendRenewalReminders(ctx context.Context) (int, error) {
	now := time.Now()
	window := time.Duration(u.cfg.ExpiryWarningDays) * 24 * time.Hour
	expiring, err := u.listings.ListActiveExpiringWithin(ctx, repository.NoTX, now, window, u.cfg.BatchLimit)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, l := range expiring {
		daysLeft := int(l.ExpiresAt.Sub(now).Hours() / 24)
		u.dispatch(ctx, model.Notification{
			Kind:      model.NotifyRenewalReminder,
			UserID:    l.OwnerID,
			ListingID: l.ID,
			Message:   fmt.Sprintf("your listing %q expires in %d day(s)", l.Title, daysLeft),
			Meta:      map[string]string{"days_left": fmt.Sprintf("%d", daysLeft)},
		})
		n++
	}
	metrics.AddSwept("renewal_reminders", n)
	return n, nil
}

func (u *sweepUC) ownerOf(ctx context.Context, listingID string) (string, error) {
	listing, err := u.listings.FindByID(ctx, repository.NoTX, listingID)
	if err != nil {
		u.log.Error().Err(err).Str("listing_id", listingID).Msg("listing lookup failed")
		return "", err
	}
	return listing.OwnerID, nil
}

func (u *sweepUC) dispatch(ctx context.Context, n model.Notification) {
	if err := u.notify.Dispatch(ctx, n); err != nil {
		u.log.Error().Err(err).Str("kind", string(n.Kind)).Msg("notification dispatch failed")
	}
}
