// Package liquidity resolves the market block of an analysis by trying liquidity sources in priority order.
package liquidity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/notlelouch/chaincheck/internal/models"
	"github.com/notlelouch/chaincheck/internal/provider"
	"github.com/rs/zerolog/log"
)

// Strategy is one liquidity source in the chain
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, address string) (*models.LiquidityInfo, error)
}

type named struct {
	name string
	src  provider.Source[models.LiquidityInfo]
}

func (n named) Name() string { return n.name }

func (n named) Fetch(ctx context.Context, address string) (*models.LiquidityInfo, error) {
	return n.src.Fetch(ctx, address)
}

// Named wraps a fetch function as a Strategy.
func Named(name string, fn provider.FetchFunc[models.LiquidityInfo]) Strategy {
	return named{name: name, src: fn}
}

// Chain tries each strategy in order and keeps the first valid payload
type Chain struct {
	strategies []Strategy
}

func NewChain(strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies}
}

func (c *Chain) Names() []string {
	out := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		out[i] = s.Name()
	}
	return out
}

// Fetch returns the first payload with a positive price, unchanged. Later strategies are not called.
// When nothing answers the result is the unavailable sentinel and ok is false.
func (c *Chain) Fetch(ctx context.Context, address string) (info models.LiquidityInfo, ok bool) {
	for _, s := range c.strategies {
		payload, err := try(ctx, s, address)
		if err != nil {
			log.Debug().Str("provider", s.Name()).Str("address", address).Err(err).Msg("liquidity source skipped")
			continue
		}
		if !payload.Valid() {
			log.Debug().Str("provider", s.Name()).Str("address", address).Msg("liquidity payload without price")
			continue
		}
		if payload.Source == "" {
			payload.Source = s.Name()
		}
		return *payload, true
	}
	log.Warn().Str("address", address).Strs("providers", c.Names()).Msg("no liquidity source answered")
	return models.DefaultLiquidityInfo(), false
}

func try(ctx context.Context, s Strategy, address string) (info *models.LiquidityInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			info, err = nil, fmt.Errorf("%w: %s panicked: %v", provider.ErrUnavailable, s.Name(), r)
		}
	}()
	return s.Fetch(ctx, address)
}

var ErrUnknownStrategy = errors.New("unknown liquidity provider")

// Ordered picks strategies from available in the order given by names.
func Ordered(available map[string]Strategy, names []string) ([]Strategy, error) {
	out := make([]Strategy, 0, len(names))
	for _, name := range names {
		s, ok := available[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
		}
		out = append(out, s)
	}
	return out, nil
}
