package analysis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/notlelouch/chaincheck/internal/cache"
	"github.com/notlelouch/chaincheck/internal/chain"
	"github.com/notlelouch/chaincheck/internal/liquidity"
	"github.com/notlelouch/chaincheck/internal/market"
	"github.com/notlelouch/chaincheck/internal/models"
	"github.com/notlelouch/chaincheck/internal/provider"
	"github.com/notlelouch/chaincheck/internal/scoring"
	"github.com/notlelouch/chaincheck/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const addr = "0xabc::token::TOKEN"

var fixedNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func composite(t *testing.T) *scoring.Composite {
	t.Helper()
	c, err := scoring.NewComposite(scoring.DefaultWeights)
	require.NoError(t, err)
	return c
}

func failing[T any](err error) provider.FetchFunc[T] {
	return func(context.Context, string) (*T, error) { return nil, err }
}

func healthySecurity() *security.TokenSecurity {
	return &security.TokenSecurity{
		IsVerified: "1", IsHoneypot: "0", IsMintable: "0", CanTakeBackOwnership: "0",
		CannotBuy: "0", CannotSellAll: "0", SlippageModifiable: "0", HiddenOwner: "0",
		HolderCount: "2500",
		Holders: []security.Holder{
			{Address: "0x1", Percent: "0.05"},
			{Address: "0x2", Percent: "0.04"},
		},
		LPHolders: []security.Holder{{Address: "0xlock", Percent: "1", Balance: "50000", IsLocked: 1}},
		Dex:       []security.DexPool{{Name: "cetus", Liquidity: "80000"}},
	}
}

func healthyCoin() *market.Coin {
	coin := &market.Coin{ID: "token", Name: "Token", Symbol: "tok"}
	coin.CommunityData.TwitterFollowers = 20000
	coin.CommunityData.RedditAccountsActive48h = 1000
	coin.Links.TwitterScreenName = "token"
	vol := 250000.0
	coin.MarketData.TotalVolume.USD = &vol
	return coin
}

type counter struct{ n int32 }

func (c *counter) inc() { atomic.AddInt32(&c.n, 1) }
func (c *counter) get() int32 { return atomic.LoadInt32(&c.n) }

func healthySources(secCalls *counter) Sources {
	return Sources{
		Security: provider.FetchFunc[security.TokenSecurity](func(context.Context, string) (*security.TokenSecurity, error) {
			secCalls.inc()
			return healthySecurity(), nil
		}),
		Coins: provider.FetchFunc[market.Coin](func(context.Context, string) (*market.Coin, error) {
			return healthyCoin(), nil
		}),
		Activity: provider.FetchFunc[market.Activity](func(context.Context, string) (*market.Activity, error) {
			return &market.Activity{Transactions24h: 400, Volume24h: 90000, OldestPairAgeDays: 42}, nil
		}),
		Metadata: provider.FetchFunc[chain.CoinMetadata](func(context.Context, string) (*chain.CoinMetadata, error) {
			return &chain.CoinMetadata{Name: "On-chain Token", Symbol: "otk"}, nil
		}),
		Liquidity: liquidity.NewChain(liquidity.Named("cetus", func(context.Context, string) (*models.LiquidityInfo, error) {
			return &models.LiquidityInfo{Price: models.Known(1.2), Liquidity: models.Known(80000), Source: "cetus"}, nil
		})),
	}
}

func TestAnalyzeAllProvidersFailEqualsFallback(t *testing.T) {
	sources := Sources{
		Security: failing[security.TokenSecurity](provider.ErrUnavailable),
		Coins:    failing[market.Coin](provider.ErrNotFound),
		Activity: failing[market.Activity](provider.ErrMalformed),
		Metadata: failing[chain.CoinMetadata](provider.ErrUnavailable),
		Liquidity: liquidity.NewChain(liquidity.Named("cetus", func(context.Context, string) (*models.LiquidityInfo, error) {
			return nil, provider.ErrUnavailable
		})),
	}
	a := New(sources, composite(t), WithClock(clock))

	got := a.Analyze(context.Background(), " "+addr+" ")
	want := a.Fallback(addr)

	assert.Equal(t, want, got)
	assert.Equal(t, 0.03, got.OverallScore)
	assert.Equal(t, models.RiskVeryHigh, got.RiskLevel)
	assert.Equal(t, models.ConfidenceLow, got.Confidence)
	assert.Equal(t, AllSources, got.MissingSources)
	assert.Equal(t, models.UnknownTokenName, got.TokenName)
	assert.Equal(t, models.UnknownTokenSymbol, got.TokenSymbol)
	assert.Equal(t, models.SourceNone, got.LiquidityInfo.Source)
}

func TestAnalyzeWithNoSourcesConfigured(t *testing.T) {
	a := New(Sources{}, composite(t), WithClock(clock))
	assert.Equal(t, a.Fallback(addr), a.Analyze(context.Background(), addr))
}

func TestAnalyzeHealthyToken(t *testing.T) {
	var secCalls counter
	a := New(healthySources(&secCalls), composite(t), WithClock(clock))

	got := a.Analyze(context.Background(), addr)

	assert.Equal(t, int32(1), secCalls.get(), "security payload is shared by three scorers")
	assert.Equal(t, addr, got.ContractAddress)
	assert.Equal(t, "Token", got.TokenName)
	assert.Equal(t, "TOK", got.TokenSymbol)
	assert.Equal(t, 1.0, got.ContractBehavior.TotalScore)
	assert.Equal(t, 0.88, got.LiquidityHealth.TotalScore)
	assert.Equal(t, 42, got.LiquidityHealth.Details.PoolAgeDays)
	assert.Equal(t, scoring.NeutralPoolAgeScore, got.LiquidityHealth.PoolAgeScore)
	assert.Equal(t, 1.0, got.HolderDistribution.TotalScore)
	assert.Equal(t, 1.0, got.CommunitySignals.TotalScore)
	assert.Equal(t, 0.97, got.OverallScore)
	assert.Equal(t, models.RiskLow, got.RiskLevel)
	assert.Equal(t, models.ConfidenceHigh, got.Confidence)
	assert.Empty(t, got.MissingSources)
	assert.Equal(t, "cetus", got.LiquidityInfo.Source)
	assert.Equal(t, fixedNow, got.Timestamp)
}

func TestAnalyzeHoneypotScenario(t *testing.T) {
	var secCalls counter
	sources := healthySources(&secCalls)
	sources.Security = provider.FetchFunc[security.TokenSecurity](func(context.Context, string) (*security.TokenSecurity, error) {
		data := healthySecurity()
		data.IsHoneypot = "1"
		return data, nil
	})

	got := New(sources, composite(t), WithClock(clock)).Analyze(context.Background(), addr)
	assert.Equal(t, 0.0, got.ContractBehavior.HoneypotScore)
	assert.True(t, got.ContractBehavior.Details.IsHoneypot)
}

func TestAnalyzePartialConfidenceAndMetadataFallback(t *testing.T) {
	var secCalls counter
	sources := healthySources(&secCalls)
	sources.Coins = failing[market.Coin](provider.ErrNotFound)

	got := New(sources, composite(t), WithClock(clock)).Analyze(context.Background(), addr)
	assert.Equal(t, models.ConfidencePartial, got.Confidence)
	assert.Equal(t, []string{SourceMarket}, got.MissingSources)
	assert.Equal(t, "On-chain Token", got.TokenName)
	assert.Equal(t, "OTK", got.TokenSymbol)
	assert.False(t, got.CommunitySignals.Details.IsListedOnCoinGecko)
}

func TestAnalyzeSurvivesPanickingMetadataSource(t *testing.T) {
	var secCalls counter
	sources := healthySources(&secCalls)
	sources.Metadata = provider.FetchFunc[chain.CoinMetadata](func(context.Context, string) (*chain.CoinMetadata, error) {
		panic("rpc decoder bug")
	})
	sources.Coins = failing[market.Coin](provider.ErrNotFound)

	var got models.CompositeAnalysis
	require.NotPanics(t, func() {
		got = New(sources, composite(t), WithClock(clock)).Analyze(context.Background(), addr)
	})
	assert.Equal(t, models.UnknownTokenName, got.TokenName)
	assert.Equal(t, models.UnknownTokenSymbol, got.TokenSymbol)
	assert.Contains(t, got.MissingSources, SourceChain)
	assert.Contains(t, got.MissingSources, SourceMarket)
	assert.Equal(t, models.ConfidencePartial, got.Confidence)
	assert.Equal(t, 1.0, got.ContractBehavior.TotalScore)
}

func TestAnalyzePanickingSecuritySourceIsReportedMissing(t *testing.T) {
	var secCalls counter
	sources := healthySources(&secCalls)
	sources.Security = provider.FetchFunc[security.TokenSecurity](func(context.Context, string) (*security.TokenSecurity, error) {
		secCalls.inc()
		panic("nil map in decoder")
	})

	got := New(sources, composite(t), WithClock(clock)).Analyze(context.Background(), addr)

	assert.Equal(t, int32(1), secCalls.get())
	assert.Equal(t, []string{SourceSecurity}, got.MissingSources)
	assert.Equal(t, models.ConfidencePartial, got.Confidence)
	assert.Equal(t, scoring.DefaultContractBehavior(), got.ContractBehavior)
	assert.Equal(t, scoring.DefaultLiquidityHealth(), got.LiquidityHealth)
	assert.Equal(t, scoring.DefaultHolderDistribution(), got.HolderDistribution)
	assert.Equal(t, "Token", got.TokenName)
}

func TestAnalyzeUsesCache(t *testing.T) {
	var secCalls counter
	a := New(healthySources(&secCalls), composite(t), WithClock(clock), WithCache(cache.NewMemoryCache(), time.Minute))

	first := a.Analyze(context.Background(), addr)
	second := a.Analyze(context.Background(), addr)

	assert.Equal(t, int32(1), secCalls.get())
	assert.Equal(t, first.OverallScore, second.OverallScore)
	assert.Equal(t, first.LiquidityInfo, second.LiquidityInfo)
	assert.True(t, first.Timestamp.Equal(second.Timestamp))
}

func TestLowConfidenceResultsAreNotCached(t *testing.T) {
	mem := cache.NewMemoryCache()
	a := New(Sources{}, composite(t), WithClock(clock), WithCache(mem, time.Minute))
	a.Analyze(context.Background(), addr)

	_, ok := mem.Get(context.Background(), cache.Key(addr))
	assert.False(t, ok)
}

type fallbackRecorder struct {
	mu    sync.Mutex
	tasks []string
}

func (r *fallbackRecorder) ObserveAnalysis(string, string, time.Duration) {}
func (r *fallbackRecorder) CacheLookup(bool)                              {}
func (r *fallbackRecorder) CategoryFallback(task string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
}

func TestSettleIsolatesPanics(t *testing.T) {
	rec := &fallbackRecorder{}
	a := New(Sources{}, composite(t), WithRecorder(rec))

	var broken models.HolderDistribution
	var healthy models.CommunitySignals
	var wg sync.WaitGroup
	settle(&wg, a, "holder_distribution", &broken, scoring.DefaultHolderDistribution, func() models.HolderDistribution {
		panic("index out of range")
	})
	settle(&wg, a, "community_signals", &healthy, scoring.DefaultCommunitySignals, func() models.CommunitySignals {
		return models.CommunitySignals{TotalScore: 0.75}
	})
	wg.Wait()

	assert.Equal(t, scoring.DefaultHolderDistribution(), broken)
	assert.Equal(t, 0.75, healthy.TotalScore)
	assert.Equal(t, []string{"holder_distribution"}, rec.tasks)
}

func TestCategoryEntryPoints(t *testing.T) {
	var secCalls counter
	a := New(healthySources(&secCalls), composite(t))
	ctx := context.Background()

	assert.Equal(t, 1.0, a.ContractBehavior(ctx, addr).TotalScore)
	assert.Equal(t, 0.88, a.LiquidityHealth(ctx, addr).TotalScore)
	assert.Equal(t, 42, a.LiquidityHealth(ctx, addr).Details.PoolAgeDays)
	assert.Equal(t, 1.0, a.HolderDistribution(ctx, addr).TotalScore)
	assert.Equal(t, 1.0, a.CommunitySignals(ctx, addr).TotalScore)
	assert.Equal(t, "cetus", a.Liquidity(ctx, addr).Source)

	empty := New(Sources{}, composite(t))
	assert.Equal(t, models.DefaultLiquidityInfo(), empty.Liquidity(ctx, addr))
	assert.Equal(t, scoring.DefaultContractBehavior(), empty.ContractBehavior(ctx, addr))
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "0x2::sui::SUI", NormalizeAddress("  0x2::sui::SUI "))
	assert.Equal(t, "0xABC", NormalizeAddress("0xABC"))
	// already decoded input is never decoded again
	assert.Equal(t, "0xabc%25def", NormalizeAddress("0xabc%25def"))

	assert.NoError(t, ValidateAddress("0x2::sui::SUI"))
	assert.ErrorIs(t, ValidateAddress("0x2"), ErrInvalidAddress)
}
