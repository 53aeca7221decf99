package repository

import (
	"context"
	"time"

	"marketplace-monetization/internal/domain/model"
)

type RenewalRepository interface {
	Save(ctx context.Context, tx Tx, r *model.Renewal) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Renewal, error)

	// CloseIfPending performs the guarded transition `pending -> status` and
	// reports whether this call won it.
	CloseIfPending(ctx context.Context, tx Tx, id string, status model.RenewalStatus, adminID, note string, processedAt time.Time) (bool, error)

	ListPending(ctx context.Context, tx Tx, offset, limit int) ([]*model.Renewal, int, error)
}
