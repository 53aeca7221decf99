package model

import "time"

type ListingStatus string

const (
	ListingStatusActive  ListingStatus = "active"
	ListingStatusExpired ListingStatus = "expired"
)

// Listing is the engine's projection of a marketplace listing. Listing CRUD
// and moderation live elsewhere; this engine only flips status on expiry and
// pushes the expiry window forward on renewal.
type Listing struct {
	ID           string
	OwnerID      string
	Title        string // used in notifications only
	Status       ListingStatus
	ExpiresAt    time.Time
	RenewalCount int // free-tier counter
}

func (l *Listing) ExpiredAt(t time.Time) bool { return !l.ExpiresAt.After(t) }
