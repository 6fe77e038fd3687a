// Package market implements clients for DEX and market-data APIs: DexScreener pairs, the Sui DEX
// aggregators and CoinGecko.
package market

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/notlelouch/chaincheck/internal/models"
	"github.com/notlelouch/chaincheck/internal/provider"
	"golang.org/x/sync/singleflight"
)

const dexTimeout = 8 * time.Second

// DexScreenerPair represents a trading pair from DexScreener
type DexScreenerPair struct {
	ChainID     string   `json:"chainId"`
	DexID       string   `json:"dexId"`
	PairAddress string   `json:"pairAddress"`
	PriceUSD    string   `json:"priceUsd"`
	MarketCap   *float64 `json:"marketCap"`
	FDV         *float64 `json:"fdv"`
	Liquidity   struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	Volume struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	PriceChange struct {
		H24 *float64 `json:"h24"`
	} `json:"priceChange"`
	Txns struct {
		H24 struct {
			Buys  int `json:"buys"`
			Sells int `json:"sells"`
		} `json:"h24"`
	} `json:"txns"`
	Info struct {
		Socials []struct {
			Type string `json:"type"`
			URL  string `json:"url"`
		} `json:"socials"`
	} `json:"info"`
	PairCreatedAt int64 `json:"pairCreatedAt"`
}

type DexScreenerResponse struct {
	Pairs []DexScreenerPair `json:"pairs"`
}

// Activity is the on-chain activity summary across every pair of a token
type Activity struct {
	Transactions24h   int
	Volume24h         float64
	HasOfficialSocial bool
	OldestPairAgeDays int
}

// DexScreenerClient backs both the activity source and the liquidity strategy. Concurrent
// lookups of the same token share one pairs request.
type DexScreenerClient struct {
	client   *provider.Client
	inflight singleflight.Group
	now      func() time.Time
}

type DexConfig struct {
	BaseURL         string
	RPS             float64
	BreakerFailures uint32
	BreakerCooldown time.Duration
	Recorder        provider.Recorder
}

func (c DexConfig) options(name string) provider.Options {
	return provider.Options{
		Name:            name,
		BaseURL:         c.BaseURL,
		Timeout:         dexTimeout,
		RPS:             c.RPS,
		BreakerFailures: c.BreakerFailures,
		BreakerCooldown: c.BreakerCooldown,
		Recorder:        c.Recorder,
	}
}

func NewDexScreenerClient(cfg DexConfig) *DexScreenerClient {
	return &DexScreenerClient{
		client: provider.New(cfg.options("dexscreener")),
		now:    time.Now,
	}
}

// pairs returns the token's pairs. The slice may be shared with concurrent callers and must
// not be modified.
func (d *DexScreenerClient) pairs(ctx context.Context, address string) ([]DexScreenerPair, error) {
	v, err, _ := d.inflight.Do(address, func() (any, error) {
		var result DexScreenerResponse
		if err := d.client.GetJSON(ctx, "/"+url.PathEscape(address), nil, &result); err != nil {
			return nil, err
		}
		if len(result.Pairs) == 0 {
			return nil, fmt.Errorf("%w: dexscreener has no pairs for %s", provider.ErrNotFound, address)
		}
		return result.Pairs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]DexScreenerPair), nil
}

// Liquidity builds the liquidity block. Price, change and market cap come from the deepest pair;
// liquidity and volume are summed across pairs.
func (d *DexScreenerClient) Liquidity(ctx context.Context, address string) (*models.LiquidityInfo, error) {
	pairs, err := d.pairs(ctx, address)
	if err != nil {
		return nil, err
	}

	deepest := pairs[0]
	var liquidity, volume float64
	for _, pair := range pairs {
		liquidity += pair.Liquidity.USD
		volume += pair.Volume.H24
		if pair.Liquidity.USD > deepest.Liquidity.USD {
			deepest = pair
		}
	}

	info := &models.LiquidityInfo{
		Price:          parsePrice(deepest.PriceUSD),
		Volume24h:      models.Known(volume),
		Liquidity:      models.Known(liquidity),
		PriceChange24h: models.KnownPtr(deepest.PriceChange.H24),
		MarketCap:      models.KnownPtr(deepest.MarketCap),
		Source:         "dexscreener",
	}
	if !info.MarketCap.Available {
		info.MarketCap = models.KnownPtr(deepest.FDV)
	}
	return info, nil
}

// Activity summarizes trading activity and advertised socials across all pairs.
func (d *DexScreenerClient) Activity(ctx context.Context, address string) (*Activity, error) {
	pairs, err := d.pairs(ctx, address)
	if err != nil {
		return nil, err
	}

	var act Activity
	var oldest int64
	for _, pair := range pairs {
		act.Transactions24h += pair.Txns.H24.Buys + pair.Txns.H24.Sells
		act.Volume24h += pair.Volume.H24
		for _, s := range pair.Info.Socials {
			switch strings.ToLower(s.Type) {
			case "twitter", "telegram", "discord":
				act.HasOfficialSocial = true
			}
		}
		if pair.PairCreatedAt > 0 && (oldest == 0 || pair.PairCreatedAt < oldest) {
			oldest = pair.PairCreatedAt
		}
	}
	if oldest > 0 {
		age := d.now().Sub(time.UnixMilli(oldest))
		if age > 0 {
			act.OldestPairAgeDays = int(age.Hours() / 24)
		}
	}
	return &act, nil
}
