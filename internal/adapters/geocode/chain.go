package geocode

import (
	"context"

	"weekly-route-service/internal/domain"
	"weekly-route-service/internal/logger"
	"weekly-route-service/internal/ports"
)

// Provider is one geocoding backend in the fallback chain.
type Provider interface {
	Name() string
	// Lookup resolves an address in a single attempt. ok=false means the
	// address was rejected; err means the provider itself failed.
	Lookup(ctx context.Context, address string) (domain.Coordinates, bool, error)
}

// Chain implements ports.Geocoder over an ordered list of providers. Only a
// provider failure moves the chain to the next provider; failures are logged
// and never abort a batch. A rejection is final: an address the primary
// filtered out must stay unresolved rather than sneak through a weaker
// fallback.
type Chain struct {
	providers []Provider
	log       logger.Logger
}

var _ ports.Geocoder = (*Chain)(nil)

func NewChain(log logger.Logger, providers ...Provider) *Chain {
	return &Chain{providers: providers, log: log}
}

func (c *Chain) Geocode(ctx context.Context, address string) (domain.Coordinates, bool) {
	for _, p := range c.providers {
		coords, ok, err := p.Lookup(ctx, address)
		if err != nil {
			c.log.Warnf("geocode: provider=%s address=%q: %v", p.Name(), address, err)
			continue
		}
		if !ok {
			c.log.Debugf("geocode: provider=%s rejected address=%q", p.Name(), address)
			return domain.Coordinates{}, false
		}
		return coords, true
	}

	return domain.Coordinates{}, false
}
