// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"marketplace-monetization/internal/config"
	"marketplace-monetization/internal/domain"
	"marketplace-monetization/internal/domain/model"
	"marketplace-monetization/internal/domain/ports/adapter"
	"marketplace-monetization/internal/domain/ports/repository"
	"marketplace-monetization/internal/infra/metrics"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// InitiateResult is what the storefront needs after starting a payment:
// either a gateway redirect URL or bank-transfer instructions.
type InitiateResult struct {
	Payment          *model.Payment
	RedirectURL      string
	BankInstructions string
}

// PaymentUseCase owns the payment state machine.
type PaymentUseCase interface {
	Initiate(ctx context.Context, userID, listingID, planID string, method model.PaymentMethod, gatewayName, discountCode string) (*InitiateResult, error)

	// Verify finalizes a gateway payment after the provider callback.
	// Calling it again for an already-completed payment returns success
	// without side effects.
	Verify(ctx context.Context, authority, providerStatus string) (*model.Payment, error)

	// Approve and Reject are the manual path for card-transfer payments.
	Approve(ctx context.Context, paymentID, adminID string) (*model.Payment, error)
	Reject(ctx context.Context, paymentID, adminID, reason string) error

	// SubmitReceipt attaches a transfer receipt to a pending card payment.
	SubmitReceipt(ctx context.Context, paymentID, userID, receiptRef string) error

	ListPending(ctx context.Context, offset, limit int) ([]*model.Payment, int, error)
	RevenueSince(ctx context.Context, since time.Time) (int64, error)
}

type paymentUC struct {
	payments repository.PaymentRepository
	plans    repository.FeaturedPlanRepository
	listings repository.ListingRepository
	discount DiscountUseCase
	featured FeaturedUseCase
	gateways adapter.GatewayFactory
	notify   adapter.NotificationDispatcher
	tm       repository.TransactionManager
	cfg      config.PaymentConfig
	log      *zerolog.Logger
}

func NewPaymentUseCase(
	payments repository.PaymentRepository,
	plans repository.FeaturedPlanRepository,
	listings repository.ListingRepository,
	discount DiscountUseCase,
	featured FeaturedUseCase,
	gateways adapter.GatewayFactory,
	notify adapter.NotificationDispatcher,
	tm repository.TransactionManager,
	cfg config.PaymentConfig,
	logger *zerolog.Logger,
) *paymentUC {
	l := logger.With().Str("component", "PaymentUC").Logger()
	return &paymentUC{
		payments: payments,
		plans:    plans,
		listings: listings,
		discount: discount,
		featured: featured,
		gateways: gateways,
		notify:   notify,
		tm:       tm,
		cfg:      cfg,
		log:      &l,
	}
}

func (u *paymentUC) methodEnabled(method model.PaymentMethod) bool {
	switch method {
	case model.PaymentMethodGateway:
		return u.cfg.GatewayEnabled
	case model.PaymentMethodCardTransfer:
		return u.cfg.CardTransferEnabled
	default:
		return false
	}
}

func (u *paymentUC) Initiate(ctx context.Context, userID, listingID, planID string, method model.PaymentMethod, gatewayName, discountCode string) (*InitiateResult, error) {
	if !u.methodEnabled(method) {
		return nil, domain.Validation(domain.ErrMethodDisabled)
	}

	plan, err := u.plans.FindByID(ctx, repository.NoTX, planID)
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, domain.Validation(domain.ErrPlanInactive)
	}

	listing, err := u.listings.FindByID(ctx, repository.NoTX, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != userID {
		return nil, domain.Validation(domain.ErrListingNotOwned)
	}

	amount := plan.FinalPriceIRR()
	var discountApplied int64
	normalizedCode := ""
	if discountCode != "" {
		res, err := u.discount.Validate(ctx, discountCode, userID, planID, amount)
		if err != nil {
			return nil, err
		}
		amount = res.FinalIRR
		discountApplied = res.DiscountIRR
		normalizedCode = res.Code.Code
	}

	if amount < u.cfg.MinAmountIRR || amount > u.cfg.MaxAmountIRR {
		// A fully discounted (zero) amount is still out of bounds here by
		// design: free placements go through admin approval, not the gateway.
		return nil, domain.Validation(domain.ErrAmountOutOfBounds)
	}

	now := time.Now()
	p := &model.Payment{
		ID:                uuid.NewString(),
		UserID:            userID,
		ListingID:         listingID,
		PlanID:            planID,
		Method:            method,
		AmountIRR:         amount,
		DiscountCode:      normalizedCode,
		DiscountAmountIRR: discountApplied,
		Status:            model.PaymentStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if method == model.PaymentMethodCardTransfer {
		if err := u.payments.Save(ctx, repository.NoTX, p); err != nil {
			return nil, err
		}
		metrics.IncPayment("initiated")
		return &InitiateResult{Payment: p, BankInstructions: u.cfg.BankAccount}, nil
	}

	gw := u.gateways.Default()
	if gatewayName != "" {
		if gw, err = u.gateways.ByName(gatewayName); err != nil {
			return nil, domain.Validation(err)
		}
	}
	p.Gateway = gw.Name()

	// The pending row exists before the gateway call so the reconciliation
	// sweep can expire it if the call or the user abandons the flow.
	if err := u.payments.Save(ctx, repository.NoTX, p); err != nil {
		return nil, err
	}

	description := fmt.Sprintf("featured placement %q for listing %s", plan.Name, listingID)
	authority, payURL, err := gw.Request(ctx, amount, description, u.cfg.ZarinPal.CallbackURL, adapter.RequestMeta{})
	if err != nil {
		metrics.IncPayment("request_failed")
		return nil, err
	}
	if err := u.payments.SetAuthority(ctx, repository.NoTX, p.ID, authority); err != nil {
		return nil, err
	}
	p.Authority = authority

	metrics.IncPayment("initiated")
	u.log.Info().Str("payment_id", p.ID).Str("gateway", p.Gateway).Int64("amount", amount).Msg("payment initiated")
	return &InitiateResult{Payment: p, RedirectURL: payURL}, nil
}

func (u *paymentUC) Verify(ctx context.Context, authority, providerStatus string) (*model.Payment, error) {
	p, err := u.payments.FindByAuthority(ctx, repository.NoTX, authority)
	if err != nil {
		return nil, err
	}

	// Idempotent no-op: gateways deliver callbacks more than once and users
	// reload the return page.
	if p.Status == model.PaymentStatusCompleted {
		return p, nil
	}
	if p.Status != model.PaymentStatusPending {
		return p, domain.Conflict(domain.ErrPaymentNotPending)
	}

	if providerStatus != "OK" {
		u.failPayment(ctx, p, "payment was cancelled before completion")
		return p, domain.Validation(errors.New("payment not approved by user"))
	}

	gw, err := u.gateways.ByName(p.Gateway)
	if err != nil {
		return p, err
	}
	refID, verifyErr := gw.Verify(ctx, authority, p.AmountIRR)
	if verifyErr != nil {
		if domain.KindOf(verifyErr) == domain.KindTransient {
			// Infrastructure trouble: leave the row pending; the sweep or a
			// later callback retry finishes the job.
			return p, verifyErr
		}
		u.failPayment(ctx, p, verifyErr.Error())
		return p, verifyErr
	}

	return u.complete(ctx, p, refID)
}

// complete runs the guarded completion transaction: CAS to completed, record
// discount usage, activate the placement. One crash-safe unit.
func (u *paymentUC) complete(ctx context.Context, p *model.Payment, refID string) (*model.Payment, error) {
	now := time.Now()
	var won bool
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		var ref *string
		if refID != "" {
			ref = &refID
		}
		won, err = u.payments.UpdateStatusIfPending(ctx, tx, p.ID, model.PaymentStatusCompleted, ref, &now, "")
		if err != nil {
			return err
		}
		if !won {
			return nil
		}
		if p.DiscountCode != "" {
			if _, err := u.discount.RecordUsage(ctx, tx, p.DiscountCode, p.UserID, p.ID, p.DiscountAmountIRR); err != nil {
				return err
			}
		}
		if _, err := u.featured.Activate(ctx, tx, p); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return p, err
	}

	if !won {
		// A concurrent verify or the admin finished first. Treat as success
		// when the winner reached completed; otherwise report the conflict.
		fresh, ferr := u.payments.FindByID(ctx, repository.NoTX, p.ID)
		if ferr != nil {
			return p, ferr
		}
		if fresh.Status == model.PaymentStatusCompleted {
			return fresh, nil
		}
		return fresh, domain.Conflict(domain.ErrPaymentNotPending)
	}

	p.Status = model.PaymentStatusCompleted
	p.RefID = refID
	p.VerifiedAt = &now
	p.UpdatedAt = now

	metrics.IncPayment("completed")
	metrics.AddPaymentRevenue(p.AmountIRR)
	u.log.Info().Str("payment_id", p.ID).Str("ref_id", refID).Msg("payment completed")

	u.dispatch(ctx, model.Notification{
		Kind:      model.NotifyPaymentCompleted,
		UserID:    p.UserID,
		ListingID: p.ListingID,
		Message:   "your listing is now featured",
		Meta:      map[string]string{"ref_id": refID, "payment_id": p.ID},
	})
	return p, nil
}

func (u *paymentUC) failPayment(ctx context.Context, p *model.Payment, reason string) {
	won, err := u.payments.UpdateStatusIfPending(ctx, repository.NoTX, p.ID, model.PaymentStatusFailed, nil, nil, reason)
	if err != nil {
		u.log.Error().Err(err).Str("payment_id", p.ID).Msg("failed to mark payment failed")
		return
	}
	if !won {
		return
	}
	p.Status = model.PaymentStatusFailed
	p.RejectReason = reason
	metrics.IncPayment("failed")
	u.dispatch(ctx, model.Notification{
		Kind:      model.NotifyPaymentFailed,
		UserID:    p.UserID,
		ListingID: p.ListingID,
		Message:   reason,
	})
}

func (u *paymentUC) Approve(ctx context.Context, paymentID, adminID string) (*model.Payment, error) {
	p, err := u.payments.FindByID(ctx, repository.NoTX, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != model.PaymentStatusPending {
		return nil, domain.Conflict(domain.ErrPaymentNotPending)
	}
	u.log.Info().Str("payment_id", paymentID).Str("admin_id", adminID).Msg("manual payment approval")
	return u.complete(ctx, p, "")
}

func (u *paymentUC) Reject(ctx context.Context, paymentID, adminID, reason string) error {
	if reason == "" {
		return domain.Validation(domain.ErrInvalidArgument)
	}
	p, err := u.payments.FindByID(ctx, repository.NoTX, paymentID)
	if err != nil {
		return err
	}
	won, err := u.payments.UpdateStatusIfPending(ctx, repository.NoTX, paymentID, model.PaymentStatusRejected, nil, nil, reason)
	if err != nil {
		return err
	}
	if !won {
		return domain.Conflict(domain.ErrPaymentNotPending)
	}
	metrics.IncPayment("rejected")
	u.log.Info().Str("payment_id", paymentID).Str("admin_id", adminID).Msg("payment rejected")
	u.dispatch(ctx, model.Notification{
		Kind:      model.NotifyPaymentRejected,
		UserID:    p.UserID,
		ListingID: p.ListingID,
		Message:   reason,
	})
	return nil
}

func (u *paymentUC) SubmitReceipt(ctx context.Context, paymentID, userID, receiptRef string) error {
	p, err := u.payments.FindByID(ctx, repository.NoTX, paymentID)
	if err != nil {
		return err
	}
	if p.UserID != userID {
		return domain.Validation(domain.ErrListingNotOwned)
	}
	if p.Method != model.PaymentMethodCardTransfer || p.Status != model.PaymentStatusPending {
		return domain.Conflict(domain.ErrPaymentNotPending)
	}
	return u.payments.SetReceipt(ctx, repository.NoTX, paymentID, receiptRef)
}

func (u *paymentUC) ListPending(ctx context.Context, offset, limit int) ([]*model.Payment, int, error) {
	return u.payments.ListPending(ctx, repository.NoTX, offset, limit)
}

func (u *paymentUC) RevenueSince(ctx context.Context, since time.Time) (int64, error) {
	return u.payments.SumCompletedSince(ctx, repository.NoTX, since)
}

func (u *paymentUC) dispatch(ctx context.Context, n model.Notification) {
	if err := u.notify.Dispatch(ctx, n); err != nil {
		u.log.Error().Err(err).Str("kind", string(n.Kind)).Msg("notification dispatch failed")
	}
}
