// Package analysis runs the category scorers, the liquidity chain and name resolution for one token
// concurrently and assembles the composite result.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/notlelouch/chaincheck/internal/cache"
	"github.com/notlelouch/chaincheck/internal/chain"
	"github.com/notlelouch/chaincheck/internal/liquidity"
	"github.com/notlelouch/chaincheck/internal/market"
	"github.com/notlelouch/chaincheck/internal/models"
	"github.com/notlelouch/chaincheck/internal/provider"
	"github.com/notlelouch/chaincheck/internal/scoring"
	"github.com/notlelouch/chaincheck/internal/security"
	"github.com/rs/zerolog/log"
)

// Source names reported in missingSources
const (
	SourceSecurity  = "goplus"
	SourceMarket    = "coingecko"
	SourceActivity  = "dexscreener"
	SourceChain     = "sui-rpc"
	SourceLiquidity = "liquidity"
)

// AllSources is the sorted list of every source an analysis consults.
var AllSources = []string{SourceMarket, SourceActivity, SourceSecurity, SourceLiquidity, SourceChain}

const MinAddressLength = 5

var ErrInvalidAddress = errors.New("invalid contract address")

// NormalizeAddress trims an address. Case is preserved. Percent-decoding belongs to the
// transport: the router decodes path variables exactly once.
func NormalizeAddress(raw string) string {
	return strings.TrimSpace(raw)
}

func ValidateAddress(addr string) error {
	if len(addr) < MinAddressLength {
		return ErrInvalidAddress
	}
	return nil
}

// Sources are the upstream providers. Any of them may be nil, which counts as unavailable.
type Sources struct {
	Security  provider.Source[security.TokenSecurity]
	Coins     provider.Source[market.Coin]
	Activity  provider.Source[market.Activity]
	Metadata  provider.Source[chain.CoinMetadata]
	Liquidity *liquidity.Chain
}

type Recorder interface {
	ObserveAnalysis(riskLevel, confidence string, elapsed time.Duration)
	CategoryFallback(category string)
	CacheLookup(hit bool)
}

type nopRecorder struct{}

func (nopRecorder) ObserveAnalysis(string, string, time.Duration) {}
func (nopRecorder) CategoryFallback(string)                       {}
func (nopRecorder) CacheLookup(bool)                              {}

type Analyzer struct {
	sources   Sources
	composite *scoring.Composite
	cache     cache.Cache
	ttl       time.Duration
	timeout   time.Duration
	recorder  Recorder
	now       func() time.Time
}

type Option func(*Analyzer)

func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(a *Analyzer) { a.cache, a.ttl = c, ttl }
}

func WithRecorder(r Recorder) Option {
	return func(a *Analyzer) {
		if r != nil {
			a.recorder = r
		}
	}
}

// WithTimeout bounds a whole analysis. Providers still bound each call on their own.
func WithTimeout(d time.Duration) Option {
	return func(a *Analyzer) { a.timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

func New(sources Sources, composite *scoring.Composite, opts ...Option) *Analyzer {
	a := &Analyzer{
		sources:   sources,
		composite: composite,
		recorder:  nopRecorder{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// parts are the positional results of one analysis
type parts struct {
	contract  models.ContractBehavior
	liquidity models.LiquidityHealth
	holders   models.HolderDistribution
	community models.CommunitySignals
	info      models.LiquidityInfo
	meta      models.TokenMetadata
	missing   []string
}

// Analyze never fails. Provider failures become category defaults and a scorer panic becomes
// that category's default; anything worse yields Fallback.
func (a *Analyzer) Analyze(ctx context.Context, address string) (result models.CompositeAnalysis) {
	address = NormalizeAddress(address)
	start := a.now()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("address", address).Msg("analysis failed, returning fallback")
			result = a.Fallback(address)
		}
	}()

	if cached, ok := a.lookup(ctx, address); ok {
		return cached
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	tracker := provider.NewTracker()
	sec := provider.NewMemo(SourceSecurity, a.sources.Security, tracker)
	coins := provider.NewMemo(SourceMarket, a.sources.Coins, tracker)
	activity := provider.NewMemo(SourceActivity, a.sources.Activity, tracker)
	metadata := provider.NewMemo(SourceChain, a.sources.Metadata, tracker)

	var p parts
	var wg sync.WaitGroup
	settle(&wg, a, "contract_behavior", &p.contract, scoring.DefaultContractBehavior, func() models.ContractBehavior {
		return scoring.ContractScorer{Security: sec}.Score(ctx, address)
	})
	settle(&wg, a, "liquidity_health", &p.liquidity, scoring.DefaultLiquidityHealth, func() models.LiquidityHealth {
		return scoring.LiquidityScorer{Security: sec, Activity: activity}.Score(ctx, address)
	})
	settle(&wg, a, "holder_distribution", &p.holders, scoring.DefaultHolderDistribution, func() models.HolderDistribution {
		return scoring.HolderScorer{Security: sec}.Score(ctx, address)
	})
	settle(&wg, a, "community_signals", &p.community, scoring.DefaultCommunitySignals, func() models.CommunitySignals {
		return scoring.CommunityScorer{Coins: coins, Activity: activity}.Score(ctx, address)
	})
	settle(&wg, a, "liquidity_info", &p.info, models.DefaultLiquidityInfo, func() models.LiquidityInfo {
		info, ok := a.liquidityInfo(ctx, address)
		if !ok {
			tracker.Missing(SourceLiquidity)
		}
		return info
	})
	settle(&wg, a, "token_metadata", &p.meta, unknownToken, func() models.TokenMetadata {
		return resolveMetadata(ctx, address, coins, metadata)
	})
	wg.Wait()

	p.missing = tracker.Names()
	result = a.assemble(address, p)

	a.recorder.ObserveAnalysis(string(result.RiskLevel), string(result.Confidence), a.now().Sub(start))
	log.Info().
		Str("address", address).
		Float64("overall_score", result.OverallScore).
		Str("risk_level", string(result.RiskLevel)).
		Str("confidence", string(result.Confidence)).
		Strs("missing_sources", result.MissingSources).
		Dur("elapsed", a.now().Sub(start)).
		Msg("analysis complete")

	if result.Confidence != models.ConfidenceLow {
		a.store(ctx, result)
	}
	return result
}

// settle runs fn in its own goroutine and stores its result in out. A panic stores the fallback
// instead, so one broken task never affects the others.
func settle[T any](wg *sync.WaitGroup, a *Analyzer, task string, out *T, fallback func() T, fn func() T) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Error().Str("task", task).Interface("panic", r).Msg("task panicked, using default")
				a.recorder.CategoryFallback(task)
				*out = fallback()
			}
		}()
		*out = fn()
	}()
}

func (a *Analyzer) liquidityInfo(ctx context.Context, address string) (models.LiquidityInfo, bool) {
	if a.sources.Liquidity == nil {
		return models.DefaultLiquidityInfo(), false
	}
	return a.sources.Liquidity.Fetch(ctx, address)
}

func unknownToken() models.TokenMetadata {
	return models.TokenMetadata{Name: models.UnknownTokenName, Symbol: models.UnknownTokenSymbol}
}

// resolveMetadata prefers CoinGecko names over on-chain metadata.
func resolveMetadata(ctx context.Context, address string, coins provider.Source[market.Coin], metadata provider.Source[chain.CoinMetadata]) models.TokenMetadata {
	var (
		wg   sync.WaitGroup
		coin *market.Coin
		meta *chain.CoinMetadata
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		coin = fetchOrNil(ctx, "coins", coins, address)
	}()
	go func() {
		defer wg.Done()
		meta = fetchOrNil(ctx, "metadata", metadata, address)
	}()
	wg.Wait()

	out := unknownToken()
	switch {
	case coin != nil && coin.Name != "":
		out.Name = coin.Name
	case meta != nil && meta.Name != "":
		out.Name = meta.Name
	}
	switch {
	case coin != nil && coin.Symbol != "":
		out.Symbol = strings.ToUpper(coin.Symbol)
	case meta != nil && meta.Symbol != "":
		out.Symbol = strings.ToUpper(meta.Symbol)
	}
	return out
}

// fetchOrNil returns nil for a missing source, a failed fetch or a panic.
func fetchOrNil[T any](ctx context.Context, name string, src provider.Source[T], address string) (v *T) {
	if src == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("source", name).Str("address", address).Interface("panic", r).Msg("metadata lookup panicked")
			v = nil
		}
	}()
	payload, err := src.Fetch(ctx, address)
	if err != nil {
		return nil
	}
	return payload
}

func confidence(missing []string) models.Confidence {
	switch {
	case len(missing) == 0:
		return models.ConfidenceHigh
	case len(missing) >= len(AllSources):
		return models.ConfidenceLow
	default:
		return models.ConfidencePartial
	}
}

func (a *Analyzer) assemble(address string, p parts) models.CompositeAnalysis {
	overall, risk := a.composite.Score(p.contract, p.liquidity, p.holders, p.community)
	missing := p.missing
	if missing == nil {
		missing = []string{}
	}
	return models.CompositeAnalysis{
		ContractAddress:    address,
		TokenName:          p.meta.Name,
		TokenSymbol:        p.meta.Symbol,
		OverallScore:       overall,
		ContractBehavior:   p.contract,
		LiquidityHealth:    p.liquidity,
		HolderDistribution: p.holders,
		CommunitySignals:   p.community,
		LiquidityInfo:      p.info,
		RiskLevel:          risk,
		Confidence:         confidence(missing),
		MissingSources:     missing,
		Timestamp:          a.now().UTC(),
	}
}

// Fallback is the fully populated low-confidence analysis used when nothing could be computed.
func (a *Analyzer) Fallback(address string) models.CompositeAnalysis {
	return a.assemble(address, parts{
		contract:  scoring.DefaultContractBehavior(),
		liquidity: scoring.DefaultLiquidityHealth(),
		holders:   scoring.DefaultHolderDistribution(),
		community: scoring.DefaultCommunitySignals(),
		info:      models.DefaultLiquidityInfo(),
		meta:      unknownToken(),
		missing:   append([]string(nil), AllSources...),
	})
}

func (a *Analyzer) lookup(ctx context.Context, address string) (models.CompositeAnalysis, bool) {
	if a.cache == nil {
		return models.CompositeAnalysis{}, false
	}
	raw, ok := a.cache.Get(ctx, cache.Key(address))
	if ok {
		var cached models.CompositeAnalysis
		if err := json.Unmarshal(raw, &cached); err == nil {
			a.recorder.CacheLookup(true)
			return cached, true
		}
		log.Warn().Str("address", address).Msg("discarding unreadable cache entry")
	}
	a.recorder.CacheLookup(false)
	return models.CompositeAnalysis{}, false
}

func (a *Analyzer) store(ctx context.Context, result models.CompositeAnalysis) {
	if a.cache == nil || a.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		log.Warn().Err(err).Msg("encode analysis for cache")
		return
	}
	if err := a.cache.Set(ctx, cache.Key(result.ContractAddress), raw, a.ttl); err != nil {
		log.Warn().Err(err).Str("address", result.ContractAddress).Msg("cache write failed")
	}
}
