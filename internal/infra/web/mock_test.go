//go:build !integration

package web_test

import (
	"context"
	"time"

	"marketplace-monetization/internal/domain/model"
	"marketplace-monetization/internal/domain/ports/repository"
	"marketplace-monetization/internal/usecase"
)

// Stub use cases with overridable behavior. Methods a test does not override
// fail loudly via the zero-value nil map/slice returns.

type stubPaymentUC struct {
	InitiateFunc      func(ctx context.Context, userID, listingID, planID string, method model.PaymentMethod, gatewayName, discountCode string) (*usecase.InitiateResult, error)
	VerifyFunc        func(ctx context.Context, authority, providerStatus string) (*model.Payment, error)
	ApproveFunc       func(ctx context.Context, paymentID, adminID string) (*model.Payment, error)
	RejectFunc        func(ctx context.Context, paymentID, adminID, reason string) error
	SubmitReceiptFunc func(ctx context.Context, paymentID, userID, receiptRef string) error
	ListPendingFunc   func(ctx context.Context, offset, limit int) ([]*model.Payment, int, error)
	RevenueSinceFunc  func(ctx context.Context, since time.Time) (int64, error)
}

var _ usecase.PaymentUseCase = (*stubPaymentUC)(nil)

func (s *stubPaymentUC) Initiate(ctx context.Context, userID, listingID, planID string, method model.PaymentMethod, gatewayName, discountCode string) (*usecase.InitiateResult, error) {
	return s.InitiateFunc(ctx, userID, listingID, planID, method, gatewayName, discountCode)
}

func (s *stubPaymentUC) Verify(ctx context.Context, authority, providerStatus string) (*model.Payment, error) {
	return s.VerifyFunc(ctx, authority, providerStatus)
}

func (s *stubPaymentUC) Approve(ctx context.Context, paymentID, adminID string) (*model.Payment, error) {
	return s.ApproveFunc(ctx, paymentID, adminID)
}

func (s *stubPaymentUC) Reject(ctx context.Context, paymentID, adminID, reason string) error {
	return s.RejectFunc(ctx, paymentID, adminID, reason)
}

func (s *stubPaymentUC) SubmitReceipt(ctx context.Context, paymentID, userID, receiptRef string) error {
	return s.SubmitReceiptFunc(ctx, paymentID, userID, receiptRef)
}

func (s *stubPaymentUC) ListPending(ctx context.Context, offset, limit int) ([]*model.Payment, int, error) {
	return s.ListPendingFunc(ctx, offset, limit)
}

func (s *stubPaymentUC) RevenueSince(ctx context.Context, since time.Time) (int64, error) {
	return s.RevenueSinceFunc(ctx, since)
}

type stubPlanUC struct {
	CreateFunc     func(ctx context.Context, name string, durationDays int, priceIRR int64, discountPercent int, features []string, sortOrder int) (*model.FeaturedPlan, error)
	UpdateFunc     func(ctx context.Context, plan *model.FeaturedPlan) error
	GetFunc        func(ctx context.Context, id string) (*model.FeaturedPlan, error)
	ListActiveFunc func(ctx context.Context) ([]*model.FeaturedPlan, error)
	ListAllFunc    func(ctx context.Context) ([]*model.FeaturedPlan, error)
	DeleteFunc     func(ctx context.Context, id string) error
	FinalPriceFunc func(ctx context.Context, planID string) (int64, error)
}

var _ usecase.PlanUseCase = (*stubPlanUC)(nil)

func (s *stubPlanUC) Create(ctx context.Context, name string, durationDays int, priceIRR int64, discountPercent int, features []string, sortOrder int) (*model.FeaturedPlan, error) {
	return s.CreateFunc(ctx, name, durationDays, priceIRR, discountPercent, features, sortOrder)
}

func (s *stubPlanUC) Update(ctx context.Context, plan *model.FeaturedPlan) error {
	return s.UpdateFunc(ctx, plan)
}

func (s *stubPlanUC) Get(ctx context.Context, id string) (*model.FeaturedPlan, error) {
	return s.GetFunc(ctx, id)
}

func (s *stubPlanUC) ListActive(ctx context.Context) ([]*model.FeaturedPlan, error) {
	return s.ListActiveFunc(ctx)
}

func (s *stubPlanUC) ListAll(ctx context.Context) ([]*model.FeaturedPlan, error) {
	return s.ListAllFunc(ctx)
}

func (s *stubPlanUC) Delete(ctx context.Context, id string) error { return s.DeleteFunc(ctx, id) }

func (s *stubPlanUC) FinalPrice(ctx context.Context, planID string) (int64, error) {
	return s.FinalPriceFunc(ctx, planID)
}

type stubDiscountUC struct {
	ValidateFunc    func(ctx context.Context, code, userID, planID string, amountIRR int64) (*usecase.DiscountResult, error)
	RecordUsageFunc func(ctx context.Context, tx repository.Tx, code, userID, paymentID string, discountIRR int64) (bool, error)
	CreateFunc      func(ctx context.Context, code *model.DiscountCode) error
	ListFunc        func(ctx context.Context) ([]*model.DiscountCode, error)
}

var _ usecase.DiscountUseCase = (*stubDiscountUC)(nil)

func (s *stubDiscountUC) Validate(ctx context.Context, code, userID, planID string, amountIRR int64) (*usecase.DiscountResult, error) {
	return s.ValidateFunc(ctx, code, userID, planID, amountIRR)
}

func (s *stubDiscountUC) RecordUsage(ctx context.Context, tx repository.Tx, code, userID, paymentID string, discountIRR int64) (bool, error) {
	return s.RecordUsageFunc(ctx, tx, code, userID, paymentID, discountIRR)
}

func (s *stubDiscountUC) Create(ctx context.Context, code *model.DiscountCode) error {
	return s.CreateFunc(ctx, code)
}

func (s *stubDiscountUC) List(ctx context.Context) ([]*model.DiscountCode, error) {
	return s.ListFunc(ctx)
}

type stubRenewalUC struct {
	IsExpiredFunc     func(ctx context.Context, listingID string) (bool, error)
	IsRenewalFreeFunc func(ctx context.Context, listingID string) (bool, error)
	CreateRequestFunc func(ctx context.Context, listingID, userID, paymentRef string) (*model.Renewal, error)
	ApproveFunc       func(ctx context.Context, renewalID, adminID, note string) error
	RejectFunc        func(ctx context.Context, renewalID, adminID, reason string) error
	ListPendingFunc   func(ctx context.Context, offset, limit int) ([]*model.Renewal, int, error)
}

var _ usecase.RenewalUseCase = (*stubRenewalUC)(nil)

func (s *stubRenewalUC) IsExpired(ctx context.Context, listingID string) (bool, error) {
	return s.IsExpiredFunc(ctx, listingID)
}

func (s *stubRenewalUC) IsRenewalFree(ctx context.Context, listingID string) (bool, error) {
	return s.IsRenewalFreeFunc(ctx, listingID)
}

func (s *stubRenewalUC) CreateRequest(ctx context.Context, listingID, userID, paymentRef string) (*model.Renewal, error) {
	return s.CreateRequestFunc(ctx, listingID, userID, paymentRef)
}

func (s *stubRenewalUC) Approve(ctx context.Context, renewalID, adminID, note string) error {
	return s.ApproveFunc(ctx, renewalID, adminID, note)
}

func (s *stubRenewalUC) Reject(ctx context.Context, renewalID, adminID, reason string) error {
	return s.RejectFunc(ctx, renewalID, adminID, reason)
}

func (s *stubRenewalUC) ListPending(ctx context.Context, offset, limit int) ([]*model.Renewal, int, error) {
	return s.ListPendingFunc(ctx, offset, limit)
}

type stubFeaturedUC struct {
	ActivateFunc   func(ctx context.Context, tx repository.Tx, payment *model.Payment) (*model.FeaturedListing, error)
	IsFeaturedFunc func(ctx context.Context, listingID string) (bool, error)
}

var _ usecase.FeaturedUseCase = (*stubFeaturedUC)(nil)

func (s *stubFeaturedUC) Activate(ctx context.Context, tx repository.Tx, payment *model.Payment) (*model.FeaturedListing, error) {
	return s.ActivateFunc(ctx, tx, payment)
}

func (s *stubFeaturedUC) IsFeatured(ctx context.Context, listingID string) (bool, error) {
	return s.IsFeaturedFunc(ctx, listingID)
}
