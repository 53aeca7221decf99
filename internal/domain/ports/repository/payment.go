package repository

import (
	"context"
	"time"

	"marketplace-monetization/internal/domain/model"
)

type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)
	FindByAuthority(ctx context.Context, tx Tx, authority string) (*model.Payment, error)

	// UpdateStatusIfPending performs the guarded transition `pending -> status`
	// and reports whether this call won the transition. Every writer (callback,
	// admin, sweep) goes through it; "already in a terminal state" comes back
	// as false, never as a row mutation.
	UpdateStatusIfPending(ctx context.Context, tx Tx, id string, status model.PaymentStatus, refID *string, verifiedAt *time.Time, reason string) (bool, error)

	SetAuthority(ctx context.Context, tx Tx, id, authority string) error
	SetReceipt(ctx context.Context, tx Tx, id, receiptRef string) error

	// ListPendingOlderThan returns pending payments of the given method created
	// before the cutoff, oldest first.
	ListPendingOlderThan(ctx context.Context, tx Tx, method model.PaymentMethod, cutoff time.Time, limit int) ([]*model.Payment, error)
	ListPending(ctx context.Context, tx Tx, offset, limit int) ([]*model.Payment, int, error)

	ExistsByPlan(ctx context.Context, tx Tx, planID string) (bool, error)
	SumCompletedSince(ctx context.Context, tx Tx, since time.Time) (int64, error)
}
