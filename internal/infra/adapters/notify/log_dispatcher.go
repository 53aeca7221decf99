package notify

import (
	"context"

	"github.com/rs/zerolog"

	"marketplace-monetization/internal/domain/model"
	"marketplace-monetization/internal/domain/ports/adapter"
)

var _ adapter.NotificationDispatcher = (*LogDispatcher)(nil)

// LogDispatcher stands in for the external push/email/SMS dispatcher. It
// records every event at INFO level so the flow is observable end to end
// without the delivery system being deployed.
type LogDispatcher struct {
	log *zerolog.Logger
}

func NewLogDispatcher(logger *zerolog.Logger) *LogDispatcher {
	l := logger.With().Str("component", "NotificationDispatcher").Logger()
	return &LogDispatcher{log: &l}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, n model.Notification) error {
	ev := d.log.Info().
		Str("kind", string(n.Kind)).
		Str("user_id", n.UserID).
		Str("listing_id", n.ListingID).
		Str("message", n.Message)
	for k, v := range n.Meta {
		ev = ev.Str(k, v)
	}
	ev.Msg("notification dispatched")
	return nil
}
