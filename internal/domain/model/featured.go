package model

import "time"

// FeaturedListing is an active or historical visibility boost (a placement).
// At most one placement per listing may have EndAt in the future; a new
// qualifying payment extends the active placement instead of adding a second.
type FeaturedListing struct {
	ID        string
	ListingID string
	PlanID    string
	PaymentID string // payment that created it; extensions keep the original
	StartAt   time.Time
	EndAt     time.Time
	CreatedAt time.Time
}

func (f *FeaturedListing) ActiveAt(t time.Time) bool { return f != nil && f.EndAt.After(t) }
