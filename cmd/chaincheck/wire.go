package main

import (
	"fmt"

	"github.com/notlelouch/chaincheck/internal/analysis"
	"github.com/notlelouch/chaincheck/internal/cache"
	"github.com/notlelouch/chaincheck/internal/chain"
	"github.com/notlelouch/chaincheck/internal/config"
	"github.com/notlelouch/chaincheck/internal/liquidity"
	"github.com/notlelouch/chaincheck/internal/market"
	"github.com/notlelouch/chaincheck/internal/metrics"
	"github.com/notlelouch/chaincheck/internal/provider"
	"github.com/notlelouch/chaincheck/internal/scoring"
	"github.com/notlelouch/chaincheck/internal/security"
)

// engine is everything the commands need from the wiring
type engine struct {
	analyzer *analysis.Analyzer
}

func buildEngine(cfg *config.Config, reg *metrics.Registry, c cache.Cache) (*engine, error) {
	failures := uint32(max(cfg.BreakerFailures, 0))

	goplus := security.NewGoPlusClient(security.Config{
		BaseURL:         cfg.GoPlusBaseURL,
		ChainID:         cfg.SecurityChainID,
		APIKey:          cfg.GoPlusAPIKey,
		RPS:             cfg.ProviderRPS,
		BreakerFailures: failures,
		BreakerCooldown: cfg.BreakerCooldown,
		Recorder:        reg,
	})
	coingecko := market.NewCoinGeckoClient(market.CoinGeckoConfig{
		BaseURL:         cfg.CoinGeckoBaseURL,
		APIKey:          cfg.CoinGeckoAPIKey,
		Platform:        cfg.CoinGeckoPlatform,
		RPS:             cfg.ProviderRPS,
		BreakerFailures: failures,
		BreakerCooldown: cfg.BreakerCooldown,
		Recorder:        reg,
	})
	sui := chain.NewSuiClient(chain.Config{
		RPCURL:          cfg.SuiRPCURL,
		RPS:             cfg.ProviderRPS,
		BreakerFailures: failures,
		BreakerCooldown: cfg.BreakerCooldown,
		Recorder:        reg,
	})

	dexConfig := func(baseURL string) market.DexConfig {
		return market.DexConfig{
			BaseURL:         baseURL,
			RPS:             cfg.ProviderRPS,
			BreakerFailures: failures,
			BreakerCooldown: cfg.BreakerCooldown,
			Recorder:        reg,
		}
	}
	dex := market.NewDexScreenerClient(dexConfig(cfg.DexScreenerBaseURL))
	cetus := market.NewCetusClient(dexConfig(cfg.CetusBaseURL))
	turbos := market.NewTurbosClient(dexConfig(cfg.TurbosBaseURL))
	bluemove := market.NewBlueMoveClient(dexConfig(cfg.BlueMoveBaseURL))

	strategies, err := liquidity.Ordered(map[string]liquidity.Strategy{
		"dexscreener": liquidity.Named("dexscreener", dex.Liquidity),
		"cetus":       liquidity.Named("cetus", cetus.Liquidity),
		"turbos":      liquidity.Named("turbos", turbos.Liquidity),
		"bluemove":    liquidity.Named("bluemove", bluemove.Liquidity),
		"coingecko":   liquidity.Named("coingecko", coingecko.Liquidity),
	}, cfg.LiquidityProviders)
	if err != nil {
		return nil, fmt.Errorf("liquidity providers: %w", err)
	}

	composite, err := scoring.NewComposite(scoring.Weights{
		Contract:  cfg.ContractWeight,
		Liquidity: cfg.LiquidityWeight,
		Holders:   cfg.HolderWeight,
		Community: cfg.CommunityWeight,
	})
	if err != nil {
		return nil, fmt.Errorf("scoring weights: %w", err)
	}

	sources := analysis.Sources{
		Security:  provider.FetchFunc[security.TokenSecurity](goplus.Fetch),
		Coins:     provider.FetchFunc[market.Coin](coingecko.Coin),
		Activity:  provider.FetchFunc[market.Activity](dex.Activity),
		Metadata:  provider.FetchFunc[chain.CoinMetadata](sui.CoinMetadata),
		Liquidity: liquidity.NewChain(strategies...),
	}
	opts := []analysis.Option{
		analysis.WithRecorder(reg),
		analysis.WithTimeout(cfg.AnalysisTimeout),
	}
	if c != nil {
		opts = append(opts, analysis.WithCache(c, cfg.CacheTTL))
	}

	return &engine{
		analyzer: analysis.New(sources, composite, opts...),
	}, nil
}
