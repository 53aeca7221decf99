package repository

import (
	"context"
	"time"

	"marketplace-monetization/internal/domain/model"
)

type FeaturedListingRepository interface {
	Save(ctx context.Context, tx Tx, f *model.FeaturedListing) error
	FindActiveByListing(ctx context.Context, tx Tx, listingID string) (*model.FeaturedListing, error)
	UpdateEnd(ctx context.Context, tx Tx, id string, endAt time.Time) error

	// ListEndedBefore returns placements whose EndAt has passed the cutoff.
	ListEndedBefore(ctx context.Context, tx Tx, cutoff time.Time, limit int) ([]*model.FeaturedListing, error)
	// ListEndingWithin returns still-active placements ending inside the window.
	ListEndingWithin(ctx context.Context, tx Tx, now time.Time, window time.Duration, limit int) ([]*model.FeaturedListing, error)
	Delete(ctx context.Context, tx Tx, id string) error
}
