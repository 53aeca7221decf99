package model

type NotificationKind string

const (
	NotifyPaymentCompleted NotificationKind = "payment_completed"
	NotifyPaymentFailed    NotificationKind = "payment_failed"
	NotifyPaymentExpired   NotificationKind = "payment_expired"
	NotifyPaymentRejected  NotificationKind = "payment_rejected"

	NotifyFeaturedActivated NotificationKind = "featured_activated"
	NotifyFeaturedExpiring  NotificationKind = "featured_expiring"
	NotifyFeaturedExpired   NotificationKind = "featured_expired"

	NotifyListingExpired  NotificationKind = "listing_expired"
	NotifyRenewalReminder NotificationKind = "renewal_reminder"
	NotifyRenewalApproved NotificationKind = "renewal_approved"
	NotifyRenewalRejected NotificationKind = "renewal_rejected"
)

// Notification is a domain event handed to the external dispatcher, which
// fans it out to in-app push, email and SMS.
type Notification struct {
	Kind      NotificationKind
	UserID    string
	ListingID string
	Message   string // human-readable reason; required for failures/rejections
	Meta      map[string]string
}
