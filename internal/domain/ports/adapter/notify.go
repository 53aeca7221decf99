package adapter

import (
	"context"

	"marketplace-monetization/internal/domain/model"
)

// NotificationDispatcher is the port to the external notification system
// (in-app push + email/SMS). The engine only emits events; delivery,
// batching and user preferences are the dispatcher's problem.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, n model.Notification) error
}
