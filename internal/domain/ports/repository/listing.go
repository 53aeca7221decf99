package repository

import (
	"context"
	"time"

	"marketplace-monetization/internal/domain/model"
)

// ListingRepository is the engine's narrow window onto the listings table.
// Full listing CRUD belongs to the marketplace service.
type ListingRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.Listing, error)

	// ApplyRenewal atomically sets the new expiry, forces status back to
	// active and bumps the renewal counter.
	ApplyRenewal(ctx context.Context, tx Tx, id string, newExpiresAt time.Time) error

	// ExpireIfActive performs the guarded transition `active -> expired` and
	// reports whether this call won it.
	ExpireIfActive(ctx context.Context, tx Tx, id string) (bool, error)

	ListActiveExpiredBefore(ctx context.Context, tx Tx, cutoff time.Time, limit int) ([]*model.Listing, error)
	ListActiveExpiringWithin(ctx context.Context, tx Tx, now time.Time, window time.Duration, limit int) ([]*model.Listing, error)
}
