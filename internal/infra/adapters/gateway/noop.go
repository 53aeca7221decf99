package gateway

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"marketplace-monetization/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*Noop)(nil)

// Noop accepts every request and verifies every authority. Used in dev mode
// and tests; never wire it in production.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) Name() string { return "noop" }

func (n *Noop) Request(ctx context.Context, amountIRR int64, description, callbackURL string, meta adapter.RequestMeta) (string, string, error) {
	authority := "NOOP-" + uuid.NewString()
	return authority, fmt.Sprintf("%s?Authority=%s&Status=OK", callbackURL, authority), nil
}

func (n *Noop) Verify(ctx context.Context, authority string, expectedAmountIRR int64) (string, error) {
	return "noop-ref-" + authority, nil
}
