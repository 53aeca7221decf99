package model

import "time"

type RenewalType string

const (
	RenewalTypeFree RenewalType = "free"
	RenewalTypePaid RenewalType = "paid"
)

type RenewalStatus string

const (
	RenewalStatusPending  RenewalStatus = "pending"
	RenewalStatusApproved RenewalStatus = "approved"
	RenewalStatusRejected RenewalStatus = "rejected"
)

// Renewal is a request to extend a published listing's expiry window.
// Free renewals are applied immediately; paid ones wait for an admin.
type Renewal struct {
	ID        string
	ListingID string
	UserID    string
	Type      RenewalType
	AmountIRR int64
	PaymentID string // set for paid renewals once a payment exists

	OldExpiresAt time.Time
	NewExpiresAt time.Time // computed at request time: max(old, now) + duration

	Status      RenewalStatus
	AdminNote   string
	ProcessedBy string // admin id for paid renewals
	CreatedAt   time.Time
	ProcessedAt *time.Time
}
