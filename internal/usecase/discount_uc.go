// File: internal/usecase/discount_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"marketplace-monetization/internal/domain"
	"marketplace-monetization/internal/domain/model"
	"marketplace-monetization/internal/domain/ports/repository"
	"marketplace-monetization/internal/infra/metrics"
)

// Compile-time check
var _ DiscountUseCase = (*discountUC)(nil)

// DiscountResult is the outcome of a successful validation.
type DiscountResult struct {
	Code        *model.DiscountCode
	DiscountIRR int64
	FinalIRR    int64
}

type DiscountUseCase interface {
	// Validate checks a code against the catalog of constraints and computes
	// the discount for the given amount. It never consumes quota; recording
	// happens only when the payment completes.
	Validate(ctx context.Context, code, userID, planID string, amountIRR int64) (*DiscountResult, error)

	// RecordUsage appends the usage ledger row and bumps the global counter
	// under the cap guard, inside the caller's transaction. It reports whether
	// the discount was actually applied; false means a concurrent completion
	// exhausted the cap first and the caller keeps the payment but drops the
	// discount bookkeeping.
	RecordUsage(ctx context.Context, tx repository.Tx, code, userID, paymentID string, discountIRR int64) (bool, error)

	Create(ctx context.Context, code *model.DiscountCode) error
	List(ctx context.Context) ([]*model.DiscountCode, error)
}

type discountUC struct {
	codes  repository.DiscountCodeRepository
	usages repository.DiscountUsageRepository
	log    *zerolog.Logger
}

func NewDiscountUseCase(codes repository.DiscountCodeRepository, usages repository.DiscountUsageRepository, logger *zerolog.Logger) *discountUC {
	l := logger.With().Str("component", "DiscountUC").Logger()
	return &discountUC{codes: codes, usages: usages, log: &l}
}

// Validate applies the constraint chain in a fixed order and returns the
// first failing reason.
func (u *discountUC) Validate(ctx context.Context, code, userID, planID string, amountIRR int64) (*DiscountResult, error) {
	normalized := model.NormalizeCode(code)
	if normalized == "" {
		return nil, domain.Validation(domain.ErrCodeNotFound)
	}

	dc, err := u.codes.FindByCode(ctx, repository.NoTX, normalized)
	if err != nil {
		if err == domain.ErrNotFound {
			metrics.IncDiscountValidation("not_found")
			return nil, domain.Validation(domain.ErrCodeNotFound)
		}
		return nil, err
	}

	now := time.Now()
	switch {
	case !dc.Active:
		metrics.IncDiscountValidation("inactive")
		return nil, domain.Validation(domain.ErrCodeInactive)
	case dc.ExpiresAt != nil && !dc.ExpiresAt.After(now):
		metrics.IncDiscountValidation("expired")
		return nil, domain.Validation(domain.ErrCodeExpired)
	case dc.MaxUses > 0 && dc.UsedCount >= dc.MaxUses:
		metrics.IncDiscountValidation("exhausted")
		return nil, domain.Validation(domain.ErrCodeExhausted)
	}

	if dc.MaxPerUser > 0 {
		// Counted from the ledger, not a cached field, so caps hold across
		// sessions.
		used, err := u.usages.CountByCodeAndUser(ctx, repository.NoTX, dc.ID, userID)
		if err != nil {
			return nil, err
		}
		if used >= dc.MaxPerUser {
			metrics.IncDiscountValidation("user_cap")
			return nil, domain.Validation(domain.ErrCodeAlreadyUsed)
		}
	}

	if dc.MinAmountIRR > 0 && amountIRR < dc.MinAmountIRR {
		metrics.IncDiscountValidation("min_amount")
		return nil, domain.Validation(domain.ErrCodeMinAmount)
	}
	if !dc.AppliesToPlan(planID) {
		metrics.IncDiscountValidation("wrong_plan")
		return nil, domain.Validation(domain.ErrCodeNotForPlan)
	}

	discount := dc.DiscountAmount(amountIRR)
	metrics.IncDiscountValidation("ok")
	return &DiscountResult{
		Code:        dc,
		DiscountIRR: discount,
		FinalIRR:    amountIRR - discount,
	}, nil
}

func (u *discountUC) RecordUsage(ctx context.Context, tx repository.Tx, code, userID, paymentID string, discountIRR int64) (bool, error) {
	dc, err := u.codes.FindByCode(ctx, tx, model.NormalizeCode(code))
	if err != nil {
		return false, err
	}

	// The payment may be completed twice only through a bug; the ledger is
	// still guarded so a replay cannot double-count.
	if exists, err := u.usages.ExistsByPayment(ctx, tx, paymentID); err != nil {
		return false, err
	} else if exists {
		return true, nil
	}

	applied, err := u.codes.IncrementUsedIfBelowCap(ctx, tx, dc.ID)
	if err != nil {
		return false, err
	}
	if !applied {
		u.log.Warn().Str("code", dc.Code).Str("payment_id", paymentID).
			Msg("discount cap reached between validate and completion; usage not recorded")
		return false, nil
	}

	usage := &model.DiscountUsage{
		ID:        uuid.NewString(),
		CodeID:    dc.ID,
		UserID:    userID,
		PaymentID: paymentID,
		AmountIRR: discountIRR,
		CreatedAt: time.Now(),
	}
	if err := u.usages.Save(ctx, tx, usage); err != nil {
		return false, err
	}
	metrics.AddDiscountApplied(discountIRR)
	return true, nil
}

func (u *discountUC) Create(ctx context.Context, code *model.DiscountCode) error {
	code.Code = model.NormalizeCode(code.Code)
	if code.Code == "" || code.Value <= 0 {
		return domain.Validation(domain.ErrInvalidArgument)
	}
	switch code.Type {
	case model.DiscountTypePercentage:
		if code.Value > 100 {
			return domain.Validation(domain.ErrInvalidArgument)
		}
	case model.DiscountTypeFixed:
	default:
		return domain.Validation(domain.ErrInvalidArgument)
	}
	if code.ID == "" {
		code.ID = uuid.NewString()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}
	return u.codes.Save(ctx, repository.NoTX, code)
}

func (u *discountUC) List(ctx context.Context) ([]*model.DiscountCode, error) {
	return u.codes.ListAll(ctx, repository.NoTX)
}
