package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // created; awaiting gateway verify or admin review
	PaymentStatusCompleted PaymentStatus = "completed" // verified at provider or approved by admin
	PaymentStatusFailed    PaymentStatus = "failed"    // verification failed or user cancelled
	PaymentStatusExpired   PaymentStatus = "expired"   // swept after the pending window elapsed
	PaymentStatusRejected  PaymentStatus = "rejected"  // admin rejected a card-transfer receipt
)

// Terminal reports whether no further transition is allowed from s.
func (s PaymentStatus) Terminal() bool { return s != PaymentStatusPending }

type PaymentMethod string

const (
	PaymentMethodGateway      PaymentMethod = "gateway"
	PaymentMethodCardTransfer PaymentMethod = "card_transfer"
)

// Payment records one purchase attempt for a featured placement.
type Payment struct {
	ID        string // UUID
	UserID    string
	ListingID string
	PlanID    string
	Method    PaymentMethod
	Gateway   string // provider name for gateway payments, e.g. "zarinpal"
	AmountIRR int64  // post-discount amount, integer Rials

	DiscountCode      string // normalized code, empty when none applied
	DiscountAmountIRR int64

	Authority  string // provider token issued at request time
	RefID      string // provider settlement id, set on successful verify
	ReceiptRef string // uploaded receipt reference for card transfers

	Status       PaymentStatus
	RejectReason string

	CreatedAt  time.Time
	UpdatedAt  time.Time
	VerifiedAt *time.Time // set when completed
}
