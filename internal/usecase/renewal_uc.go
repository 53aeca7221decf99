// File: internal/usecase/renewal_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"marketplace-monetization/internal/config"
	"marketplace-monetization/internal/domain"
	"marketplace-monetization/internal/domain/model"
	"marketplace-monetization/internal/domain/ports/adapter"
	"marketplace-monetization/internal/domain/ports/repository"
	"marketplace-monetization/internal/infra/metrics"
)

// Compile-time check
var _ RenewalUseCase = (*renewalUC)(nil)

// RenewalUseCase extends a published listing's visibility window. Renewals
// under the free-tier counter apply immediately; later ones wait for payment
// and an admin decision.
type RenewalUseCase interface {
	IsExpired(ctx context.Context, listingID string) (bool, error)
	IsRenewalFree(ctx context.Context, listingID string) (bool, error)

	CreateRequest(ctx context.Context, listingID, userID, paymentRef string) (*model.Renewal, error)
	Approve(ctx context.Context, renewalID, adminID, note string) error
	Reject(ctx context.Context, renewalID, adminID, reason string) error
	ListPending(ctx context.Context, offset, limit int) ([]*model.Renewal, int, error)
}

type renewalUC struct {
	renewals repository.RenewalRepository
	listings repository.ListingRepository
	tm       repository.TransactionManager
	notify   adapter.NotificationDispatcher
	cfg      config.RenewalConfig
	log      *zerolog.Logger
}

func NewRenewalUseCase(
	renewals repository.RenewalRepository,
	listings repository.ListingRepository,
	tm repository.TransactionManager,
	notify adapter.NotificationDispatcher,
	cfg config.RenewalConfig,
	logger *zerolog.Logger,
) *renewalUC {
	l := logger.With().Str("component", "RenewalUC").Logger()
	return &renewalUC{renewals: renewals, listings: listings, tm: tm, notify: notify, cfg: cfg, log: &l}
}

func (u *renewalUC) IsExpired(ctx context.Context, listingID string) (bool, error) {
	listing, err := u.listings.FindByID(ctx, repository.NoTX, listingID)
	if err != nil {
		return false, err
	}
	return listing.ExpiredAt(time.Now()), nil
}

func (u *renewalUC) IsRenewalFree(ctx context.Context, listingID string) (bool, error) {
	listing, err := u.listings.FindByID(ctx, repository.NoTX, listingID)
	if err != nil {
		return false, err
	}
	return listing.RenewalCount < u.cfg.FreeRenewalCount, nil
}

// newExpiry keeps remaining time when renewing early without back-dating a
// late renewal: max(old, now) + duration.
func (u *renewalUC) newExpiry(oldExpiry, now time.Time) time.Time {
	base := oldExpiry
	if now.After(base) {
		base = now
	}
	return base.AddDate(0, 0, u.cfg.RenewalDurationDays)
}

func (u *renewalUC) CreateRequest(ctx context.Context, listingID, userID, paymentRef string) (*model.Renewal, error) {
	listing, err := u.listings.FindByID(ctx, repository.NoTX, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != userID {
		return nil, domain.Validation(domain.ErrListingNotOwned)
	}
	if listing.Status != model.ListingStatusActive && listing.Status != model.ListingStatusExpired {
		return nil, domain.Validation(domain.ErrListingNotEligible)
	}

	now := time.Now()
	r := &model.Renewal{
		ID:           uuid.NewString(),
		ListingID:    listingID,
		UserID:       userID,
		OldExpiresAt: listing.ExpiresAt,
		NewExpiresAt: u.newExpiry(listing.ExpiresAt, now),
		CreatedAt:    now,
	}

	if listing.RenewalCount < u.cfg.FreeRenewalCount {
		// Free path: the request is born approved and the listing is updated
		// in the same transaction. No human in the loop.
		r.Type = model.RenewalTypeFree
		r.Status = model.RenewalStatusApproved
		r.ProcessedAt = &now
		raced := false
		err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			// Re-read on the locked row: the counter gate must hold at write
			// time, not just at the unlocked read above. A concurrent request
			// may have spent the last free slot in between.
			fresh, err := u.listings.FindByID(ctx, tx, listingID)
			if err != nil {
				return err
			}
			r.OldExpiresAt = fresh.ExpiresAt
			r.NewExpiresAt = u.newExpiry(fresh.ExpiresAt, now)
			if fresh.RenewalCount >= u.cfg.FreeRenewalCount {
				raced = true
				return nil
			}
			if err := u.renewals.Save(ctx, tx, r); err != nil {
				return err
			}
			return u.listings.ApplyRenewal(ctx, tx, listingID, r.NewExpiresAt)
		})
		if err != nil {
			return nil, err
		}
		if !raced {
			metrics.IncRenewal("free")
			u.log.Info().Str("listing_id", listingID).Time("new_expiry", r.NewExpiresAt).Msg("free renewal applied")
			return r, nil
		}
		// Lost the free-tier race; this request pays like any later one.
		r.ProcessedAt = nil
	}

	r.Type = model.RenewalTypePaid
	r.Status = model.RenewalStatusPending
	r.AmountIRR = u.cfg.PriceIRR
	r.PaymentID = paymentRef
	if err := u.renewals.Save(ctx, repository.NoTX, r); err != nil {
		return nil, err
	}
	metrics.IncRenewal("paid_requested")
	u.log.Info().Str("listing_id", listingID).Msg("paid renewal awaiting admin approval")
	return r, nil
}

func (u *renewalUC) Approve(ctx context.Context, renewalID, adminID, note string) error {
	r, err := u.renewals.FindByID(ctx, repository.NoTX, renewalID)
	if err != nil {
		return err
	}

	now := time.Now()
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		won, err := u.renewals.CloseIfPending(ctx, tx, renewalID, model.RenewalStatusApproved, adminID, note, now)
		if err != nil {
			return err
		}
		if !won {
			return domain.Conflict(domain.ErrRenewalNotPending)
		}
		// Same apply routine as the free path, just deferred to admin action.
		return u.listings.ApplyRenewal(ctx, tx, r.ListingID, r.NewExpiresAt)
	})
	if err != nil {
		return err
	}

	metrics.IncRenewal("approved")
	u.dispatch(ctx, model.Notification{
		Kind:      model.NotifyRenewalApproved,
		UserID:    r.UserID,
		ListingID: r.ListingID,
		Message:   "your listing renewal was approved",
	})
	return nil
}

func (u *renewalUC) Reject(ctx context.Context, renewalID, adminID, reason string) error {
	if reason == "" {
		return domain.Validation(domain.ErrInvalidArgument)
	}
	r, err := u.renewals.FindByID(ctx, repository.NoTX, renewalID)
	if err != nil {
		return err
	}
	won, err := u.renewals.CloseIfPending(ctx, repository.NoTX, renewalID, model.RenewalStatusRejected, adminID, reason, time.Now())
	if err != nil {
		return err
	}
	if !won {
		return domain.Conflict(domain.ErrRenewalNotPending)
	}
	metrics.IncRenewal("rejected")
	u.dispatch(ctx, model.Notification{
		Kind:      model.NotifyRenewalRejected,
		UserID:    r.UserID,
		ListingID: r.ListingID,
		Message:   reason,
	})
	return nil
}

func (u *renewalUC) ListPending(ctx context.Context, offset, limit int) ([]*model.Renewal, int, error) {
	return u.renewals.ListPending(ctx, repository.NoTX, offset, limit)
}

func (u *renewalUC) dispatch(ctx context.Context, n model.Notification) {
	if err := u.notify.Dispatch(ctx, n); err != nil {
		u.log.Error().Err(err).Str("kind", string(n.Kind)).Msg("notification dispatch failed")
	}
}
