// File: internal/usecase/featured_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"marketplace-monetization/internal/domain"
	"marketplace-monetization/internal/domain/model"
	"marketplace-monetization/internal/domain/ports/repository"
	"marketplace-monetization/internal/infra/metrics"
)

// Compile-time check
var _ FeaturedUseCase = (*featuredUC)(nil)

// FeaturedUseCase converts a completed payment into a time-bounded placement.
type FeaturedUseCase interface {
	// Activate creates the placement for the payment's listing, or pushes an
	// already-active placement's end date forward by the plan duration. It is
	// called inside the payment-completion transaction and must run through
	// that tx handle.
	Activate(ctx context.Context, tx repository.Tx, payment *model.Payment) (*model.FeaturedListing, error)

	IsFeatured(ctx context.Context, listingID string) (bool, error)
}

type featuredUC struct {
	placements repository.FeaturedListingRepository
	plans      repository.FeaturedPlanRepository
	log        *zerolog.Logger
}

func NewFeaturedUseCase(placements repository.FeaturedListingRepository, plans repository.FeaturedPlanRepository, logger *zerolog.Logger) *featuredUC {
	l := logger.With().Str("component", "FeaturedUC").Logger()
	return &featuredUC{placements: placements, plans: plans, log: &l}
}

func (u *featuredUC) Activate(ctx context.Context, tx repository.Tx, payment *model.Payment) (*model.FeaturedListing, error) {
	if payment == nil || payment.ListingID == "" {
		return nil, domain.ErrInvalidArgument
	}
	plan, err := u.plans.FindByID(ctx, tx, payment.PlanID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	duration := time.Duration(plan.DurationDays) * 24 * time.Hour

	existing, err := u.placements.FindActiveByListing(ctx, tx, payment.ListingID)
	if err != nil && err != domain.ErrNotFound {
		return nil, err
	}

	// Extend-or-create: a listing never carries two concurrent placements.
	if existing.ActiveAt(now) {
		newEnd := existing.EndAt.Add(duration)
		if err := u.placements.UpdateEnd(ctx, tx, existing.ID, newEnd); err != nil {
			return nil, err
		}
		existing.EndAt = newEnd
		metrics.IncFeaturedActivation("extended")
		u.log.Info().Str("listing_id", payment.ListingID).Time("end_at", newEnd).Msg("placement extended")
		return existing, nil
	}

	placement := &model.FeaturedListing{
		ID:        uuid.NewString(),
		ListingID: payment.ListingID,
		PlanID:    payment.PlanID,
		PaymentID: payment.ID,
		StartAt:   now,
		EndAt:     now.Add(duration),
		CreatedAt: now,
	}
	if err := u.placements.Save(ctx, tx, placement); err != nil {
		return nil, err
	}
	metrics.IncFeaturedActivation("created")
	u.log.Info().Str("listing_id", payment.ListingID).Time("end_at", placement.EndAt).Msg("placement created")
	return placement, nil
}

func (u *featuredUC) IsFeatured(ctx context.Context, listingID string) (bool, error) {
	existing, err := u.placements.FindActiveByListing(ctx, repository.NoTX, listingID)
	if err == domain.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return existing.ActiveAt(time.Now()), nil
}
