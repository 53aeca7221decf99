//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"marketplace-monetization/internal/domain"
	"marketplace-monetization/internal/domain/model"
	"marketplace-monetization/internal/usecase"
)

func newPlanUCDeps() (*MockPlanRepo, *MockPaymentRepo, usecase.PlanUseCase) {
	plans := NewMockPlanRepo()
	payments := NewMockPaymentRepo()
	return plans, payments, usecase.NewPlanUseCase(plans, payments, newTestLogger())
}

func TestPlanUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an active plan", func(t *testing.T) {
		_, _, uc := newPlanUCDeps()
		plan, err := uc.Create(ctx, "Weekly Boost", 7, 500_000, 0, []string{"Featured badge"}, 0)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if plan.ID == "" {
			t.Error("expected an id")
		}
		if !plan.Active {
			t.Error("new plans start active")
		}
	})

	t.Run("rejects invalid fields", func(t *testing.T) {
		_, _, uc := newPlanUCDeps()
		cases := []struct {
			name  string
			plan  string
			days  int
			price int64
			disc  int
		}{
			{"empty name", "", 7, 500_000, 0},
			{"zero duration", "X", 0, 500_000, 0},
			{"zero price", "X", 7, 0, 0},
			{"discount over 100", "X", 7, 500_000, 150},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if _, err := uc.Create(ctx, tc.plan, tc.days, tc.price, tc.disc, nil, 0); domain.KindOf(err) != domain.KindValidation {
					t.Errorf("expected a validation error, got: %v", err)
				}
			})
		}
	})
}

func TestPlanUseCase_FinalPrice(t *testing.T) {
	ctx := context.Background()
	_, _, uc := newPlanUCDeps()

	plan, err := uc.Create(ctx, "Monthly Spotlight", 30, 1_000_000, 25, nil, 0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	price, err := uc.FinalPrice(ctx, plan.ID)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if price != 750_000 {
		t.Errorf("final price = %d, want 750000", price)
	}
}

func TestPlanUseCase_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes an unused plan", func(t *testing.T) {
		plans, _, uc := newPlanUCDeps()
		plan, _ := uc.Create(ctx, "Weekly Boost", 7, 500_000, 0, nil, 0)

		if err := uc.Delete(ctx, plan.ID); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if _, err := plans.FindByID(ctx, nil, plan.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected the plan to be gone, got: %v", err)
		}
	})

	t.Run("a plan with payment history cannot be deleted", func(t *testing.T) {
		_, payments, uc := newPlanUCDeps()
		plan, _ := uc.Create(ctx, "Weekly Boost", 7, 500_000, 0, nil, 0)
		_ = payments.Save(ctx, nil, &model.Payment{
			ID: "pay-1", PlanID: plan.ID, Status: model.PaymentStatusCompleted,
		})

		err := uc.Delete(ctx, plan.ID)
		if !errors.Is(err, domain.ErrPlanInUse) {
			t.Fatalf("expected ErrPlanInUse, got: %v", err)
		}
		if domain.KindOf(err) != domain.KindConflict {
			t.Errorf("kind = %q, want conflict", domain.KindOf(err))
		}
	})
}
