//go:build !integration

package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"marketplace-monetization/internal/domain"
	"marketplace-monetization/internal/domain/model"
	"marketplace-monetization/internal/domain/ports/adapter"
	"marketplace-monetization/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

// =============================
// Transaction manager
// =============================

type fakeTx struct{}

type MockTxManager struct {
	Calls int
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

func (m *MockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.Calls++
	return fn(ctx, fakeTx{})
}

// =============================
// Repositories
// =============================

// ---- Payments ----

type MockPaymentRepo struct {
	mu     sync.Mutex
	data   map[string]*model.Payment
	byAuth map[string]string

	SaveFunc func(ctx context.Context, tx repository.Tx, p *model.Payment) error
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{data: map[string]*model.Payment{}, byAuth: map[string]string{}}
}

func (r *MockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if r.SaveFunc != nil {
		if err := r.SaveFunc(ctx, tx, p); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.data[p.ID] = &cp
	if p.Authority != "" {
		r.byAuth[p.Authority] = p.ID
	}
	return nil
}

func (r *MockPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MockPaymentRepo) FindByAuthority(ctx context.Context, tx repository.Tx, authority string) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byAuth[authority]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r.data[id]
	return &cp, nil
}

func (r *MockPaymentRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, refID *string, verifiedAt *time.Time, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if p.Status != model.PaymentStatusPending {
		return false, nil
	}
	p.Status = status
	if refID != nil {
		p.RefID = *refID
	}
	if verifiedAt != nil {
		p.VerifiedAt = verifiedAt
	}
	p.RejectReason = reason
	p.UpdatedAt = time.Now()
	return true, nil
}

func (r *MockPaymentRepo) SetAuthority(ctx context.Context, tx repository.Tx, id, authority string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Authority = authority
	r.byAuth[authority] = id
	return nil
}

func (r *MockPaymentRepo) SetReceipt(ctx context.Context, tx repository.Tx, id, receiptRef string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.ReceiptRef = receiptRef
	return nil
}

func (r *MockPaymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, method model.PaymentMethod, cutoff time.Time, limit int) ([]*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Payment
	for _, p := range r.data {
		if p.Status == model.PaymentStatusPending && p.Method == method && p.CreatedAt.Before(cutoff) {
			cp := *p
			out = append(out, &cp)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *MockPaymentRepo) ListPending(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Payment, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*model.Payment
	for _, p := range r.data {
		if p.Status == model.PaymentStatusPending {
			cp := *p
			all = append(all, &cp)
		}
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *MockPaymentRepo) ExistsByPlan(ctx context.Context, tx repository.Tx, planID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.data {
		if p.PlanID == planID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MockPaymentRepo) SumCompletedSince(ctx context.Context, tx repository.Tx, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, p := range r.data {
		if p.Status == model.PaymentStatusCompleted && p.VerifiedAt != nil && p.VerifiedAt.After(since) {
			sum += p.AmountIRR
		}
	}
	return sum, nil
}

// ---- Plans ----

type MockPlanRepo struct {
	mu   sync.Mutex
	data map[string]*model.FeaturedPlan
}

var _ repository.FeaturedPlanRepository = (*MockPlanRepo)(nil)

func NewMockPlanRepo() *MockPlanRepo {
	return &MockPlanRepo{data: map[string]*model.FeaturedPlan{}}
}

func (r *MockPlanRepo) Save(ctx context.Context, tx repository.Tx, plan *model.FeaturedPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	cp := *plan
	r.data[plan.ID] = &cp
	return nil
}

func (r *MockPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.FeaturedPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MockPlanRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.FeaturedPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.FeaturedPlan
	for _, p := range r.data {
		if p.Active {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockPlanRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.FeaturedPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.FeaturedPlan
	for _, p := range r.data {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MockPlanRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, id)
	return nil
}

// ---- Discount codes ----

type MockDiscountCodeRepo struct {
	mu   sync.Mutex
	data map[string]*model.DiscountCode // by normalized code
}

var _ repository.DiscountCodeRepository = (*MockDiscountCodeRepo)(nil)

func NewMockDiscountCodeRepo() *MockDiscountCodeRepo {
	return &MockDiscountCodeRepo{data: map[string]*model.DiscountCode{}}
}

func (r *MockDiscountCodeRepo) Save(ctx context.Context, tx repository.Tx, code *model.DiscountCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if code.ID == "" {
		code.ID = uuid.NewString()
	}
	cp := *code
	r.data[model.NormalizeCode(code.Code)] = &cp
	return nil
}

func (r *MockDiscountCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, normalized string) (*model.DiscountCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.data[normalized]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *MockDiscountCodeRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.DiscountCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.DiscountCode
	for _, c := range r.data {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MockDiscountCodeRepo) IncrementUsedIfBelowCap(ctx context.Context, tx repository.Tx, codeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.data {
		if c.ID == codeID {
			if c.MaxUses > 0 && c.UsedCount >= c.MaxUses {
				return false, nil
			}
			c.UsedCount++
			return true, nil
		}
	}
	return false, domain.ErrNotFound
}

// ---- Discount usages ----

type MockDiscountUsageRepo struct {
	mu   sync.Mutex
	data []*model.DiscountUsage
}

var _ repository.DiscountUsageRepository = (*MockDiscountUsageRepo)(nil)

func NewMockDiscountUsageRepo() *MockDiscountUsageRepo {
	return &MockDiscountUsageRepo{}
}

func (r *MockDiscountUsageRepo) Save(ctx context.Context, tx repository.Tx, usage *model.DiscountUsage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *usage
	r.data = append(r.data, &cp)
	return nil
}

func (r *MockDiscountUsageRepo) CountByCodeAndUser(ctx context.Context, tx repository.Tx, codeID, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.data {
		if u.CodeID == codeID && u.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *MockDiscountUsageRepo) ExistsByPayment(ctx context.Context, tx repository.Tx, paymentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.data {
		if u.PaymentID == paymentID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MockDiscountUsageRepo) All() []*model.DiscountUsage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.DiscountUsage, len(r.data))
	copy(out, r.data)
	return out
}

// ---- Featured placements ----

type MockFeaturedRepo struct {
	mu   sync.Mutex
	data map[string]*model.FeaturedListing
}

var _ repository.FeaturedListingRepository = (*MockFeaturedRepo)(nil)

func NewMockFeaturedRepo() *MockFeaturedRepo {
	return &MockFeaturedRepo{data: map[string]*model.FeaturedListing{}}
}

func (r *MockFeaturedRepo) Save(ctx context.Context, tx repository.Tx, f *model.FeaturedListing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	cp := *f
	r.data[f.ID] = &cp
	return nil
}

func (r *MockFeaturedRepo) FindActiveByListing(ctx context.Context, tx repository.Tx, listingID string) (*model.FeaturedListing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, f := range r.data {
		if f.ListingID == listingID && f.EndAt.After(now) {
			cp := *f
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockFeaturedRepo) UpdateEnd(ctx context.Context, tx repository.Tx, id string, endAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	f.EndAt = endAt
	return nil
}

func (r *MockFeaturedRepo) ListEndedBefore(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.FeaturedListing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.FeaturedListing
	for _, f := range r.data {
		if f.EndAt.Before(cutoff) {
			cp := *f
			out = append(out, &cp)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *MockFeaturedRepo) ListEndingWithin(ctx context.Context, tx repository.Tx, now time.Time, window time.Duration, limit int) ([]*model.FeaturedListing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.FeaturedListing
	edge := now.Add(window)
	for _, f := range r.data {
		if f.EndAt.After(now) && f.EndAt.Before(edge) {
			cp := *f
			out = append(out, &cp)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *MockFeaturedRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.data, id)
	return nil
}

func (r *MockFeaturedRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data)
}

// ---- Renewals ----

type MockRenewalRepo struct {
	mu   sync.Mutex
	data map[string]*model.Renewal
}

var _ repository.RenewalRepository = (*MockRenewalRepo)(nil)

func NewMockRenewalRepo() *MockRenewalRepo {
	return &MockRenewalRepo{data: map[string]*model.Renewal{}}
}

func (r *MockRenewalRepo) Save(ctx context.Context, tx repository.Tx, ren *model.Renewal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ren.ID == "" {
		ren.ID = uuid.NewString()
	}
	cp := *ren
	r.data[ren.ID] = &cp
	return nil
}

func (r *MockRenewalRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Renewal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ren, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *ren
	return &cp, nil
}

func (r *MockRenewalRepo) CloseIfPending(ctx context.Context, tx repository.Tx, id string, status model.RenewalStatus, adminID, note string, processedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ren, ok := r.data[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if ren.Status != model.RenewalStatusPending {
		return false, nil
	}
	ren.Status = status
	ren.ProcessedBy = adminID
	ren.AdminNote = note
	ren.ProcessedAt = &processedAt
	return true, nil
}

func (r *MockRenewalRepo) ListPending(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Renewal, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*model.Renewal
	for _, ren := range r.data {
		if ren.Status == model.RenewalStatusPending {
			cp := *ren
			all = append(all, &cp)
		}
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// ---- Listings ----

type MockListingRepo struct {
	mu   sync.Mutex
	data map[string]*model.Listing

	// FindByIDFunc replaces the lookup entirely when set.
	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Listing, error)
}

var _ repository.ListingRepository = (*MockListingRepo)(nil)

func NewMockListingRepo() *MockListingRepo {
	return &MockListingRepo{data: map[string]*model.Listing{}}
}

func (r *MockListingRepo) Put(l *model.Listing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *l
	r.data[l.ID] = &cp
}

func (r *MockListingRepo) Get(id string) *model.Listing {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.data[id]
	if !ok {
		return nil
	}
	cp := *l
	return &cp
}

func (r *MockListingRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Listing, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *MockListingRepo) ApplyRenewal(ctx context.Context, tx repository.Tx, id string, newExpiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	l.Status = model.ListingStatusActive
	l.ExpiresAt = newExpiresAt
	l.RenewalCount++
	return nil
}

func (r *MockListingRepo) ExpireIfActive(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.data[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if l.Status != model.ListingStatusActive {
		return false, nil
	}
	l.Status = model.ListingStatusExpired
	return true, nil
}

func (r *MockListingRepo) ListActiveExpiredBefore(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Listing
	for _, l := range r.data {
		if l.Status == model.ListingStatusActive && l.ExpiresAt.Before(cutoff) {
			cp := *l
			out = append(out, &cp)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *MockListingRepo) ListActiveExpiringWithin(ctx context.Context, tx repository.Tx, now time.Time, window time.Duration, limit int) ([]*model.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Listing
	edge := now.Add(window)
	for _, l := range r.data {
		if l.Status == model.ListingStatusActive && l.ExpiresAt.After(now) && l.ExpiresAt.Before(edge) {
			cp := *l
			out = append(out, &cp)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// ---- Notification log ----

type MockNotificationLogRepo struct {
	mu   sync.Mutex
	sent map[string]bool // subjectID + "/" + kind
}

var _ repository.NotificationLogRepository = (*MockNotificationLogRepo)(nil)

func NewMockNotificationLogRepo() *MockNotificationLogRepo {
	return &MockNotificationLogRepo{sent: map[string]bool{}}
}

func (r *MockNotificationLogRepo) Save(ctx context.Context, tx repository.Tx, subjectID, userID, kind string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent[subjectID+"/"+kind] = true
	return nil
}

func (r *MockNotificationLogRepo) Exists(ctx context.Context, tx repository.Tx, subjectID, kind string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent[subjectID+"/"+kind], nil
}

// =============================
// Adapters
// =============================

// ---- Payment gateway ----

type MockGateway struct {
	mu sync.Mutex

	RequestFunc func(ctx context.Context, amountIRR int64, description, callbackURL string, meta adapter.RequestMeta) (string, string, error)
	VerifyFunc  func(ctx context.Context, authority string, expectedAmountIRR int64) (string, error)

	RequestCalls int
	VerifyCalls  int
}

var _ adapter.PaymentGateway = (*MockGateway)(nil)

func (g *MockGateway) Name() string { return "mock" }

func (g *MockGateway) Request(ctx context.Context, amountIRR int64, description, callbackURL string, meta adapter.RequestMeta) (string, string, error) {
	g.mu.Lock()
	g.RequestCalls++
	g.mu.Unlock()
	if g.RequestFunc != nil {
		return g.RequestFunc(ctx, amountIRR, description, callbackURL, meta)
	}
	return "AUTH-" + uuid.NewString(), "https://gateway.example/pay", nil
}

func (g *MockGateway) Verify(ctx context.Context, authority string, expectedAmountIRR int64) (string, error) {
	g.mu.Lock()
	g.VerifyCalls++
	g.mu.Unlock()
	if g.VerifyFunc != nil {
		return g.VerifyFunc(ctx, authority, expectedAmountIRR)
	}
	return "REF-12345", nil
}

type MockGatewayFactory struct {
	Gateway *MockGateway
}

var _ adapter.GatewayFactory = (*MockGatewayFactory)(nil)

func (f *MockGatewayFactory) ByName(name string) (adapter.PaymentGateway, error) {
	return f.Gateway, nil
}

func (f *MockGatewayFactory) Default() adapter.PaymentGateway { return f.Gateway }

// ---- Notification dispatcher ----

type MockDispatcher struct {
	mu   sync.Mutex
	Sent []model.Notification
}

var _ adapter.NotificationDispatcher = (*MockDispatcher)(nil)

func (d *MockDispatcher) Dispatch(ctx context.Context, n model.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Sent = append(d.Sent, n)
	return nil
}

func (d *MockDispatcher) ByKind(kind model.NotificationKind) []model.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []model.Notification
	for _, n := range d.Sent {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}
