package repository

import "context"

// NotificationLogRepository records one-time notifications so repeated
// sweeps do not re-notify. Keyed by (subject id, kind).
type NotificationLogRepository interface {
	// Save records that a notification was sent.
	Save(ctx context.Context, tx Tx, subjectID, userID, kind string) error
	// Exists checks if a specific notification has already been sent.
	Exists(ctx context.Context, tx Tx, subjectID, kind string) (bool, error)
}
