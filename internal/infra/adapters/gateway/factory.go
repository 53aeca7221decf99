package gateway

import (
	"fmt"

	"marketplace-monetization/internal/domain/ports/adapter"
)

var _ adapter.GatewayFactory = (*Factory)(nil)

// Factory holds the configured gateways. It is built once during wiring and
// passed by reference wherever gateway selection happens; nothing global.
type Factory struct {
	byName     map[string]adapter.PaymentGateway
	defaultGew adapter.PaymentGateway
}

func NewFactory(defaultGateway adapter.PaymentGateway, others ...adapter.PaymentGateway) *Factory {
	f := &Factory{
		byName:     make(map[string]adapter.PaymentGateway, len(others)+1),
		defaultGew: defaultGateway,
	}
	f.byName[defaultGateway.Name()] = defaultGateway
	for _, g := range others {
		f.byName[g.Name()] = g
	}
	return f
}

func (f *Factory) ByName(name string) (adapter.PaymentGateway, error) {
	g, ok := f.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown payment gateway %q", name)
	}
	return g, nil
}

func (f *Factory) Default() adapter.PaymentGateway { return f.defaultGew }
