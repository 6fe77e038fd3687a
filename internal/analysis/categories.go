package analysis

import (
	"context"

	"github.com/notlelouch/chaincheck/internal/models"
	"github.com/notlelouch/chaincheck/internal/scoring"
	"github.com/rs/zerolog/log"
)

// The single-category entry points back the per-category endpoints. Like Analyze they never fail.

func (a *Analyzer) ContractBehavior(ctx context.Context, address string) models.ContractBehavior {
	return guard(a, "contract_behavior", scoring.DefaultContractBehavior, func() models.ContractBehavior {
		return scoring.ContractScorer{Security: a.sources.Security}.Score(ctx, NormalizeAddress(address))
	})
}

func (a *Analyzer) LiquidityHealth(ctx context.Context, address string) models.LiquidityHealth {
	return guard(a, "liquidity_health", scoring.DefaultLiquidityHealth, func() models.LiquidityHealth {
		return scoring.LiquidityScorer{Security: a.sources.Security, Activity: a.sources.Activity}.Score(ctx, NormalizeAddress(address))
	})
}

func (a *Analyzer) HolderDistribution(ctx context.Context, address string) models.HolderDistribution {
	return guard(a, "holder_distribution", scoring.DefaultHolderDistribution, func() models.HolderDistribution {
		return scoring.HolderScorer{Security: a.sources.Security}.Score(ctx, NormalizeAddress(address))
	})
}

func (a *Analyzer) CommunitySignals(ctx context.Context, address string) models.CommunitySignals {
	return guard(a, "community_signals", scoring.DefaultCommunitySignals, func() models.CommunitySignals {
		return scoring.CommunityScorer{Coins: a.sources.Coins, Activity: a.sources.Activity}.Score(ctx, NormalizeAddress(address))
	})
}

func (a *Analyzer) Liquidity(ctx context.Context, address string) models.LiquidityInfo {
	return guard(a, "liquidity_info", models.DefaultLiquidityInfo, func() models.LiquidityInfo {
		info, _ := a.liquidityInfo(ctx, NormalizeAddress(address))
		return info
	})
}

func guard[T any](a *Analyzer, task string, fallback func() T, fn func() T) (out T) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("task", task).Interface("panic", r).Msg("task panicked, using default")
			a.recorder.CategoryFallback(task)
			out = fallback()
		}
	}()
	return fn()
}
