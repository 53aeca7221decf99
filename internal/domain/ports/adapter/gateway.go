package adapter

import "context"

// RequestMeta carries optional user contact details forwarded to the provider.
type RequestMeta struct {
	Mobile string
	Email  string
}

// PaymentGateway is the hex port for payment providers. Callers are
// gateway-agnostic; concrete gateways live in infra.
type PaymentGateway interface {
	Name() string

	// Request initiates a payment intent and returns the provider authority
	// and a redirect URL the user completes the payment at.
	Request(ctx context.Context, amountIRR int64, description, callbackURL string, meta RequestMeta) (authority, payURL string, err error)

	// Verify confirms a payment given the authority and expected amount and
	// returns the provider refID. A provider-side "already verified" response
	// must be reported as success, since callbacks can arrive more than once.
	Verify(ctx context.Context, authority string, expectedAmountIRR int64) (refID string, err error)
}

// GatewayFactory resolves gateways by name. It is built once during wiring
// from configuration and passed by reference; there is no global registry.
type GatewayFactory interface {
	ByName(name string) (PaymentGateway, error)
	Default() PaymentGateway
}
