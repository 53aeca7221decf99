package repository

import (
	"context"

	"marketplace-monetization/internal/domain/model"
)

type DiscountCodeRepository interface {
	Save(ctx context.Context, tx Tx, code *model.DiscountCode) error
	FindByCode(ctx context.Context, tx Tx, normalized string) (*model.DiscountCode, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.DiscountCode, error)

	// IncrementUsedIfBelowCap bumps used_count only while it stays at or under
	// max_uses, and reports whether the increment happened. This is the
	// completion-time guard against overselling a near-exhausted code.
	IncrementUsedIfBelowCap(ctx context.Context, tx Tx, codeID string) (bool, error)
}

type DiscountUsageRepository interface {
	Save(ctx context.Context, tx Tx, usage *model.DiscountUsage) error
	CountByCodeAndUser(ctx context.Context, tx Tx, codeID, userID string) (int, error)
	ExistsByPayment(ctx context.Context, tx Tx, paymentID string) (bool, error)
}
