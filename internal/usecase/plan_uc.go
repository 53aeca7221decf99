// File: internal/usecase/plan_uc.go
package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"marketplace-monetization/internal/domain"
	"marketplace-monetization/internal/domain/model"
	"marketplace-monetization/internal/domain/ports/repository"
)

// Compile-time check
var _ PlanUseCase = (*planUC)(nil)

// PlanUseCase manages featured-placement plans.
type PlanUseCase interface {
	Create(ctx context.Context, name string, durationDays int, priceIRR int64, discountPercent int, features []string, sortOrder int) (*model.FeaturedPlan, error)
	Update(ctx context.Context, plan *model.FeaturedPlan) error
	Get(ctx context.Context, id string) (*model.FeaturedPlan, error)
	ListActive(ctx context.Context) ([]*model.FeaturedPlan, error)
	ListAll(ctx context.Context) ([]*model.FeaturedPlan, error)
	// Delete hard-deletes a plan. A plan with payment history cannot be
	// deleted; the caller gets a conflict telling them to deactivate instead.
	Delete(ctx context.Context, id string) error
	// FinalPrice applies the plan's own discount percent (distinct from
	// user-entered discount codes).
	FinalPrice(ctx context.Context, planID string) (int64, error)
}

type planUC struct {
	plans    repository.FeaturedPlanRepository
	payments repository.PaymentRepository
	log      *zerolog.Logger
}

func NewPlanUseCase(plans repository.FeaturedPlanRepository, payments repository.PaymentRepository, logger *zerolog.Logger) *planUC {
	l := logger.With().Str("component", "PlanUC").Logger()
	return &planUC{plans: plans, payments: payments, log: &l}
}

func (u *planUC) Create(ctx context.Context, name string, durationDays int, priceIRR int64, discountPercent int, features []string, sortOrder int) (*model.FeaturedPlan, error) {
	plan, err := model.NewFeaturedPlan(uuid.NewString(), name, durationDays, priceIRR, discountPercent, features, sortOrder)
	if err != nil {
		return nil, domain.Validation(err)
	}
	if err := u.plans.Save(ctx, repository.NoTX, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (u *planUC) Update(ctx context.Context, plan *model.FeaturedPlan) error {
	if plan.IsZero() || plan.DurationDays <= 0 || plan.PriceIRR <= 0 {
		return domain.Validation(domain.ErrInvalidArgument)
	}
	return u.plans.Save(ctx, repository.NoTX, plan)
}

func (u *planUC) Get(ctx context.Context, id string) (*model.FeaturedPlan, error) {
	return u.plans.FindByID(ctx, repository.NoTX, id)
}

func (u *planUC) ListActive(ctx context.Context) ([]*model.FeaturedPlan, error) {
	return u.plans.ListActive(ctx, repository.NoTX)
}

func (u *planUC) ListAll(ctx context.Context) ([]*model.FeaturedPlan, error) {
	return u.plans.ListAll(ctx, repository.NoTX)
}

func (u *planUC) Delete(ctx context.Context, id string) error {
	inUse, err := u.payments.ExistsByPlan(ctx, repository.NoTX, id)
	if err != nil {
		return err
	}
	if inUse {
		return domain.Conflict(domain.ErrPlanInUse)
	}
	return u.plans.Delete(ctx, repository.NoTX, id)
}

func (u *planUC) FinalPrice(ctx context.Context, planID string) (int64, error) {
	plan, err := u.plans.FindByID(ctx, repository.NoTX, planID)
	if err != nil {
		return 0, err
	}
	return plan.FinalPriceIRR(), nil
}
