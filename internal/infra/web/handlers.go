package web

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"marketplace-monetization/internal/domain"
	"marketplace-monetization/internal/domain/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error kind onto an HTTP status. Unknown
// errors stay opaque 500s so internals never leak to the caller.
func writeError(w http.ResponseWriter, err error) {
	var status int
	switch domain.KindOf(err) {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindConflict:
		status = http.StatusConflict
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindTransient:
		status = http.StatusServiceUnavailable
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func pageParams(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

// ===== Gateway callback =====

// handleGatewayCallback receives the payer's browser back from the gateway,
// verifies the payment and bounces to the storefront's result page. The
// verify itself is idempotent, so a refreshed callback is harmless.
func (s *Server) handleGatewayCallback(w http.ResponseWriter, r *http.Request) {
	authority := r.URL.Query().Get("Authority")
	status := r.URL.Query().Get("Status")

	if authority == "" {
		s.redirectFailure(w, r, "missing authority")
		return
	}

	payment, err := s.payments.Verify(r.Context(), authority, status)
	if err != nil {
		s.log.Warn().Err(err).Str("authority", authority).Msg("callback verify failed")
		s.redirectFailure(w, r, err.Error())
		return
	}

	u, err := url.Parse(s.cfg.SuccessURL)
	if err != nil {
		writeJSON(w, http.StatusOK, payment)
		return
	}
	q := u.Query()
	q.Set("payment_id", payment.ID)
	q.Set("ref_id", payment.RefID)
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}

func (s *Server) redirectFailure(w http.ResponseWriter, r *http.Request, reason string) {
	u, err := url.Parse(s.cfg.FailureURL)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": reason})
		return
	}
	q := u.Query()
	q.Set("message", reason)
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}

// ===== Payments =====

type paymentInitiateRequest struct {
	UserID       string `json:"user_id"`
	ListingID    string `json:"listing_id"`
	PlanID       string `json:"plan_id"`
	Method       string `json:"method"`
	Gateway      string `json:"gateway"`
	DiscountCode string `json:"discount_code"`
}

func (s *Server) handlePaymentInitiate(w http.ResponseWriter, r *http.Request) {
	var req paymentInitiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res, err := s.payments.Initiate(r.Context(), req.UserID, req.ListingID, req.PlanID,
		model.PaymentMethod(req.Method), req.Gateway, req.DiscountCode)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		Payment          *model.Payment `json:"payment"`
		RedirectURL      string         `json:"redirect_url,omitempty"`
		BankInstructions string         `json:"bank_instructions,omitempty"`
	}{res.Payment, res.RedirectURL, res.BankInstructions})
}

func (s *Server) handleReceiptSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID     string `json:"user_id"`
		ReceiptRef string `json:"receipt_ref"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.payments.SubmitReceipt(r.Context(), chi.URLParam(r, "id"), req.UserID, req.ReceiptRef); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePaymentsPending(w http.ResponseWriter, r *http.Request) {
	offset, limit := pageParams(r)
	payments, total, err := s.payments.ListPending(r.Context(), offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Data   []*model.Payment `json:"data"`
		Total  int              `json:"total"`
		Limit  int              `json:"limit"`
		Offset int              `json:"offset"`
	}{payments, total, limit, offset})
}

func (s *Server) handlePaymentApprove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AdminID string `json:"admin_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	payment, err := s.payments.Approve(r.Context(), chi.URLParam(r, "id"), req.AdminID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (s *Server) handlePaymentReject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AdminID string `json:"admin_id"`
		Reason  string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.payments.Reject(r.Context(), chi.URLParam(r, "id"), req.AdminID, req.Reason); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===== Discounts =====

func (s *Server) handleDiscountValidate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code      string `json:"code"`
		UserID    string `json:"user_id"`
		PlanID    string `json:"plan_id"`
		AmountIRR int64  `json:"amount_irr"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res, err := s.discounts.Validate(r.Context(), req.Code, req.UserID, req.PlanID, req.AmountIRR)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Code        string `json:"code"`
		DiscountIRR int64  `json:"discount_irr"`
		FinalIRR    int64  `json:"final_irr"`
	}{res.Code.Code, res.DiscountIRR, res.FinalIRR})
}

type discountCreateRequest struct {
	Code         string     `json:"code"`
	Type         string     `json:"type"`
	Value        int64      `json:"value"`
	MaxDiscount  int64      `json:"max_discount_irr"`
	MinAmountIRR int64      `json:"min_amount_irr"`
	MaxUses      int        `json:"max_uses"`
	MaxPerUser   int        `json:"max_per_user"`
	PlanIDs      []string   `json:"plan_ids"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

func (s *Server) handleDiscountCreate(w http.ResponseWriter, r *http.Request) {
	var req discountCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	code := &model.DiscountCode{
		Code:         req.Code,
		Type:         model.DiscountType(req.Type),
		Value:        req.Value,
		MaxDiscount:  req.MaxDiscount,
		MinAmountIRR: req.MinAmountIRR,
		MaxUses:      req.MaxUses,
		MaxPerUser:   req.MaxPerUser,
		PlanIDs:      req.PlanIDs,
		ExpiresAt:    req.ExpiresAt,
		Active:       true,
	}
	if err := s.discounts.Create(r.Context(), code); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, code)
}

func (s *Server) handleDiscountsList(w http.ResponseWriter, r *http.Request) {
	codes, err := s.discounts.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Data []*model.DiscountCode `json:"data"`
	}{codes})
}

// ===== Renewals =====

func (s *Server) handleRenewalCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ListingID  string `json:"listing_id"`
		UserID     string `json:"user_id"`
		PaymentRef string `json:"payment_ref"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	renewal, err := s.renewals.CreateRequest(r.Context(), req.ListingID, req.UserID, req.PaymentRef)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, renewal)
}

func (s *Server) handleRenewalsPending(w http.ResponseWriter, r *http.Request) {
	offset, limit := pageParams(r)
	renewals, total, err := s.renewals.ListPending(r.Context(), offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Data   []*model.Renewal `json:"data"`
		Total  int              `json:"total"`
		Limit  int              `json:"limit"`
		Offset int              `json:"offset"`
	}{renewals, total, limit, offset})
}

func (s *Server) handleRenewalApprove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AdminID string `json:"admin_id"`
		Note    string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.renewals.Approve(r.Context(), chi.URLParam(r, "id"), req.AdminID, req.Note); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRenewalReject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AdminID string `json:"admin_id"`
		Reason  string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.renewals.Reject(r.Context(), chi.URLParam(r, "id"), req.AdminID, req.Reason); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===== Featured =====

func (s *Server) handleFeaturedStatus(w http.ResponseWriter, r *http.Request) {
	featured, err := s.featured.IsFeatured(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"featured": featured})
}

// ===== Plans =====

type planRequest struct {
	Name            string   `json:"name"`
	DurationDays    int      `json:"duration_days"`
	PriceIRR        int64    `json:"price_irr"`
	DiscountPercent int      `json:"discount_percent"`
	Features        []string `json:"features"`
	Active          bool     `json:"active"`
	SortOrder       int      `json:"sort_order"`
}

func (s *Server) handlePlansListActive(w http.ResponseWriter, r *http.Request) {
	plans, err := s.plans.ListActive(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Data []*model.FeaturedPlan `json:"data"`
	}{plans})
}

func (s *Server) handlePlansListAll(w http.ResponseWriter, r *http.Request) {
	plans, err := s.plans.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Data []*model.FeaturedPlan `json:"data"`
	}{plans})
}

func (s *Server) handlePlanCreate(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	plan, err := s.plans.Create(r.Context(), req.Name, req.DurationDays, req.PriceIRR,
		req.DiscountPercent, req.Features, req.SortOrder)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) handlePlanUpdate(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	plan := &model.FeaturedPlan{
		ID:              chi.URLParam(r, "id"),
		Name:            req.Name,
		DurationDays:    req.DurationDays,
		PriceIRR:        req.PriceIRR,
		DiscountPercent: req.DiscountPercent,
		Features:        req.Features,
		Active:          req.Active,
		SortOrder:       req.SortOrder,
	}
	if err := s.plans.Update(r.Context(), plan); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handlePlanDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.plans.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===== Admin session & stats =====

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !s.auth.Check(req.Username, req.Password) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	token, err := s.auth.Mint(w)
	if err != nil {
		s.log.Error().Err(err).Msg("mint session token")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := time.Now()

	week, err := s.payments.RevenueSince(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		writeError(w, err)
		return
	}
	month, err := s.payments.RevenueSince(ctx, now.AddDate(0, -1, 0))
	if err != nil {
		writeError(w, err)
		return
	}
	year, err := s.payments.RevenueSince(ctx, now.AddDate(-1, 0, 0))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Revenue struct {
			Week  int64 `json:"week"`
			Month int64 `json:"month"`
			Year  int64 `json:"year"`
		} `json:"revenue_irr"`
	}{struct {
		Week  int64 `json:"week"`
		Month int64 `json:"month"`
		Year  int64 `json:"year"`
	}{week, month, year}})
}
