// File: internal/infra/adapters/gateway/zarinpal.go
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"marketplace-monetization/internal/domain"
	"marketplace-monetization/internal/domain/ports/adapter"
	"marketplace-monetization/internal/infra/metrics"
)

var _ adapter.PaymentGateway = (*ZarinPal)(nil)

const (
	zpCodeOK              = 100
	zpCodeAlreadyVerified = 101

	maxAttempts   = 3
	baseRetryWait = time.Second
)

// ZarinPal implements adapter.PaymentGateway against the REST v4 API.
// Transient failures (network errors, 5xx) are retried with exponential
// backoff; provider validation failures surface immediately.
type ZarinPal struct {
	merchantID string
	sandbox    bool
	baseURL    string // overrides the provider endpoint when set
	retryWait  time.Duration
	client     *http.Client
}

func NewZarinPal(merchantID string, sandbox bool) (*ZarinPal, error) {
	if merchantID == "" {
		return nil, errors.New("merchant id empty")
	}
	return &ZarinPal{
		merchantID: merchantID,
		sandbox:    sandbox,
		retryWait:  baseRetryWait,
		client:     &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (z *ZarinPal) Name() string { return "zarinpal" }

func (z *ZarinPal) endpoint(path string) string {
	if z.baseURL != "" {
		return z.baseURL + path
	}
	base := "https://api.zarinpal.com/pg/v4"
	if z.sandbox {
		base = "https://sandbox.zarinpal.com/pg/v4"
	}
	return base + path
}

func (z *ZarinPal) payURL(authority string) string {
	if z.sandbox {
		return fmt.Sprintf("https://sandbox.zarinpal.com/pg/StartPay/%s", authority)
	}
	return fmt.Sprintf("https://www.zarinpal.com/pg/StartPay/%s", authority)
}

// post sends the payload and decodes into out, retrying transient failures.
func (z *ZarinPal) post(ctx context.Context, op, endpoint string, payload, out any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	wait := z.retryWait
	if wait <= 0 {
		wait = baseRetryWait
	}
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			metrics.IncGatewayRetry(z.Name(), op)
			select {
			case <-ctx.Done():
				return domain.Transient(ctx.Err())
			case <-time.After(wait):
			}
			wait *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := z.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("zarinpal %s: http %d", op, resp.StatusCode)
			continue
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			// Client-side problem; retrying cannot help.
			metrics.IncGatewayCall(z.Name(), op, "client_error")
			return fmt.Errorf("zarinpal %s: http %d", op, resp.StatusCode)
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	metrics.IncGatewayCall(z.Name(), op, "transient")
	return domain.Transient(fmt.Errorf("zarinpal %s failed after %d attempts: %w", op, maxAttempts, lastErr))
}

// Request calls /payment/request.json and returns (authority, payURL).
func (z *ZarinPal) Request(ctx context.Context, amountIRR int64, description, callbackURL string, meta adapter.RequestMeta) (string, string, error) {
	if _, err := url.Parse(callbackURL); err != nil || callbackURL == "" {
		return "", "", fmt.Errorf("invalid callback url: %q", callbackURL)
	}
	payload := map[string]any{
		"merchant_id":  z.merchantID,
		"amount":       amountIRR,
		"description":  description,
		"callback_url": callbackURL,
	}
	if meta.Mobile != "" || meta.Email != "" {
		payload["metadata"] = map[string]string{"mobile": meta.Mobile, "email": meta.Email}
	}

	var out struct {
		Data struct {
			Authority string `json:"authority"`
			Code      int    `json:"code"`
			Message   string `json:"message"`
		} `json:"data"`
		Errors any `json:"errors"`
	}
	if err := z.post(ctx, "request", z.endpoint("/payment/request.json"), payload, &out); err != nil {
		return "", "", err
	}
	if out.Data.Code != zpCodeOK || out.Data.Authority == "" {
		metrics.IncGatewayCall(z.Name(), "request", "rejected")
		return "", "", fmt.Errorf("zarinpal request rejected: code=%d %s", out.Data.Code, out.Data.Message)
	}
	metrics.IncGatewayCall(z.Name(), "request", "ok")
	return out.Data.Authority, z.payURL(out.Data.Authority), nil
}

// Verify calls /payment/verify.json and returns the provider refID.
// Code 101 means "already verified" and counts as success, because the
// provider may deliver the callback more than once.
func (z *ZarinPal) Verify(ctx context.Context, authority string, expectedAmountIRR int64) (string, error) {
	payload := map[string]any{
		"merchant_id": z.merchantID,
		"amount":      expectedAmountIRR,
		"authority":   authority,
	}

	var out struct {
		Data struct {
			Code    int    `json:"code"`
			RefID   int64  `json:"ref_id"`
			Message string `json:"message"`
		} `json:"data"`
		Errors any `json:"errors"`
	}
	if err := z.post(ctx, "verify", z.endpoint("/payment/verify.json"), payload, &out); err != nil {
		return "", err
	}
	if (out.Data.Code != zpCodeOK && out.Data.Code != zpCodeAlreadyVerified) || out.Data.RefID == 0 {
		metrics.IncGatewayCall(z.Name(), "verify", "rejected")
		return "", fmt.Errorf("zarinpal verify rejected: code=%d %s", out.Data.Code, out.Data.Message)
	}
	metrics.IncGatewayCall(z.Name(), "verify", "ok")
	return fmt.Sprintf("%d", out.Data.RefID), nil
}
