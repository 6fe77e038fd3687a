package scoring

import (
	"context"
	"sync"

	"github.com/notlelouch/chaincheck/internal/market"
	"github.com/notlelouch/chaincheck/internal/models"
	"github.com/notlelouch/chaincheck/internal/provider"
	"github.com/notlelouch/chaincheck/internal/security"
	"github.com/rs/zerolog/log"
)

// The scorers below fetch their payloads and fall back to the category default when a
// provider has nothing usable. None of them returns an error.

type ContractScorer struct {
	Security provider.Source[security.TokenSecurity]
}

func (s ContractScorer) Score(ctx context.Context, address string) models.ContractBehavior {
	data, err := fetch(ctx, s.Security, address)
	if err != nil {
		logFallback("contract_behavior", address, err)
		return DefaultContractBehavior()
	}
	return ScoreContractBehavior(data)
}

// LiquidityScorer scores LP data from the security provider. Activity is optional and only
// contributes the observed pool age to the details.
type LiquidityScorer struct {
	Security provider.Source[security.TokenSecurity]
	Activity provider.Source[market.Activity]
}

func (s LiquidityScorer) Score(ctx context.Context, address string) models.LiquidityHealth {
	data, err := fetch(ctx, s.Security, address)
	if err != nil {
		logFallback("liquidity_health", address, err)
		return DefaultLiquidityHealth()
	}
	l := ScoreLiquidityHealth(data)
	if s.Activity != nil {
		if act, err := fetch(ctx, s.Activity, address); err == nil {
			l.Details.PoolAgeDays = act.OldestPairAgeDays
		}
	}
	return l
}

type HolderScorer struct {
	Security provider.Source[security.TokenSecurity]
}

func (s HolderScorer) Score(ctx context.Context, address string) models.HolderDistribution {
	data, err := fetch(ctx, s.Security, address)
	if err != nil {
		logFallback("holder_distribution", address, err)
		return DefaultHolderDistribution()
	}
	return ScoreHolderDistribution(data)
}

// CommunityScorer reads the social/market provider and the on-chain activity provider concurrently.
type CommunityScorer struct {
	Coins    provider.Source[market.Coin]
	Activity provider.Source[market.Activity]
}

func (s CommunityScorer) Score(ctx context.Context, address string) models.CommunitySignals {
	var (
		wg      sync.WaitGroup
		coin    *market.Coin
		act     *market.Activity
		coinErr error
		actErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		coin, coinErr = fetch(ctx, s.Coins, address)
	}()
	go func() {
		defer wg.Done()
		act, actErr = fetch(ctx, s.Activity, address)
	}()
	wg.Wait()

	if coinErr != nil {
		coin = nil
	}
	if actErr != nil {
		act = nil
	}
	if coin == nil && act == nil {
		logFallback("community_signals", address, coinErr)
	}
	return ScoreCommunitySignals(coin, act)
}

// fetch treats a missing source or a panicking source like an unavailable provider.
func fetch[T any](ctx context.Context, src provider.Source[T], address string) (v *T, err error) {
	if src == nil {
		return nil, provider.ErrUnavailable
	}
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, provider.ErrUnavailable
			log.Error().Interface("panic", r).Str("address", address).Msg("provider panicked")
		}
	}()
	v, err = src.Fetch(ctx, address)
	if err == nil && v == nil {
		err = provider.ErrNotFound
	}
	return v, err
}

func logFallback(category, address string, err error) {
	log.Warn().
		Str("category", category).
		Str("address", address).
		Err(err).
		Msg("using category default")
}
