package repository

import (
	"context"

	"marketplace-monetization/internal/domain/model"
)

// FeaturedPlanRepository is the port for plan persistence.
type FeaturedPlanRepository interface {
	Save(ctx context.Context, tx Tx, plan *model.FeaturedPlan) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.FeaturedPlan, error)
	ListActive(ctx context.Context, tx Tx) ([]*model.FeaturedPlan, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.FeaturedPlan, error)
	Delete(ctx context.Context, tx Tx, id string) error
}
