package market

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/notlelouch/chaincheck/internal/models"
	"github.com/notlelouch/chaincheck/internal/provider"
)

// Well-known Sui coin types and their CoinGecko catalog ids, keyed lower-case.
var suiCoinIDs = map[string]string{
	"0x2::sui::sui": "sui",
	"0x06864a6f921804860930db6ddbe2e16acdf8504495ea7481637a1c8b9a8fe54b::cetus::cetus": "cetus-protocol",
	"0x5d4b302506645c37ff133b98c4b50a5ae14841659738d6d733d59d0d217a93bf::coin::coin": "wormhole-token",
	"0xf325ce1300e8dac124071d3152c5c5ee6174914f8bc2161e88329cf579246efc::afsui::afsui": "afsui",
	"0xdba34672e30cb065b1f93e3ab55318768fd6fef66c15942c9f7cb846e2f900e7::usdc::usdc": "usd-coin",
	"0x960b531667636f39e85867775f52f6b1f220a058c4de786905bdf761e06a56bb::usdt::usdt": "tether",
	"0xd0e89b2af5e4910726fbcd8b8dd37bb79b29e5f83f7492ab06dab5d8b1d4a2a8::hasui::hasui": "hasui",
	"0x549e8b69270defbfafd4f94e17ec44cdbdd99820b33bda2278dea3b9a32d3f55::cert::cert": "scallop-sui",
}

// CoinGeckoID returns the catalog id for a well-known coin type.
func CoinGeckoID(address string) (string, bool) {
	id, ok := suiCoinIDs[strings.ToLower(strings.TrimSpace(address))]
	return id, ok
}

type usdValue struct {
	USD *float64 `json:"usd"`
}

// Coin is the subset of a CoinGecko coin detail answer used for scoring
type Coin struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`

	MarketData struct {
		CurrentPrice             usdValue `json:"current_price"`
		MarketCap                usdValue `json:"market_cap"`
		TotalVolume              usdValue `json:"total_volume"`
		PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
	} `json:"market_data"`

	CommunityData struct {
		TwitterFollowers         float64 `json:"twitter_followers"`
		TelegramChannelUserCount float64 `json:"telegram_channel_user_count"`
		RedditSubscribers        float64 `json:"reddit_subscribers"`
		RedditAccountsActive48h  float64 `json:"reddit_accounts_active_48h"`
	} `json:"community_data"`

	Links struct {
		TwitterScreenName string `json:"twitter_screen_name"`
		TelegramChannelID string `json:"telegram_channel_identifier"`
	} `json:"links"`
}

// Followers sums the audience across the social channels CoinGecko tracks.
func (c *Coin) Followers() int {
	cd := c.CommunityData
	return int(cd.TwitterFollowers + cd.TelegramChannelUserCount + cd.RedditSubscribers)
}

// EngagementRate is the share of followers active in the last 48h, in percent.
func (c *Coin) EngagementRate() float64 {
	followers := c.Followers()
	if followers == 0 {
		return 0
	}
	return models.Round2(c.CommunityData.RedditAccountsActive48h / float64(followers) * 100)
}

func (c *Coin) HasOfficialAccount() bool {
	return c.Links.TwitterScreenName != "" || c.Links.TelegramChannelID != ""
}

func (c *Coin) Volume24h() float64 {
	if v := c.MarketData.TotalVolume.USD; v != nil {
		return *v
	}
	return 0
}

// LiquidityInfo maps coin market data onto the liquidity block. CoinGecko reports no pool depth.
func (c *Coin) LiquidityInfo() *models.LiquidityInfo {
	return &models.LiquidityInfo{
		Price:          models.KnownPtr(c.MarketData.CurrentPrice.USD),
		Volume24h:      models.KnownPtr(c.MarketData.TotalVolume.USD),
		PriceChange24h: models.KnownPtr(c.MarketData.PriceChangePercentage24h),
		MarketCap:      models.KnownPtr(c.MarketData.MarketCap.USD),
		Source:         "coingecko",
	}
}

type CoinGeckoClient struct {
	client   *provider.Client
	platform string
}

type CoinGeckoConfig struct {
	BaseURL         string
	APIKey          string
	Platform        string
	RPS             float64
	BreakerFailures uint32
	BreakerCooldown time.Duration
	Recorder        provider.Recorder
}

func NewCoinGeckoClient(cfg CoinGeckoConfig) *CoinGeckoClient {
	headers := map[string]string{}
	if cfg.APIKey != "" {
		headers["x-cg-demo-api-key"] = cfg.APIKey
	}
	return &CoinGeckoClient{
		client: provider.New(provider.Options{
			Name:            "coingecko",
			BaseURL:         cfg.BaseURL,
			Timeout:         15 * time.Second,
			Headers:         headers,
			RPS:             cfg.RPS,
			BreakerFailures: cfg.BreakerFailures,
			BreakerCooldown: cfg.BreakerCooldown,
			Recorder:        cfg.Recorder,
		}),
		platform: cfg.Platform,
	}
}

var coinDetailQuery = url.Values{
	"localization":   {"false"},
	"tickers":        {"false"},
	"market_data":    {"true"},
	"community_data": {"true"},
	"developer_data": {"false"},
	"sparkline":      {"false"},
}

// Coin fetches market and community data. Well-known coins go through the catalog id,
// everything else through the platform contract lookup.
func (g *CoinGeckoClient) Coin(ctx context.Context, address string) (*Coin, error) {
	path := fmt.Sprintf("/coins/%s/contract/%s", url.PathEscape(g.platform), url.PathEscape(address))
	if id, ok := CoinGeckoID(address); ok {
		path = "/coins/" + url.PathEscape(id)
	}

	var coin Coin
	if err := g.client.GetJSON(ctx, path, coinDetailQuery, &coin); err != nil {
		return nil, err
	}
	if coin.ID == "" {
		return nil, fmt.Errorf("%w: coingecko coin without id", provider.ErrMalformed)
	}
	return &coin, nil
}

type simplePrice struct {
	USD          *float64 `json:"usd"`
	USDMarketCap *float64 `json:"usd_market_cap"`
	USD24hVol    *float64 `json:"usd_24h_vol"`
	USD24hChange *float64 `json:"usd_24h_change"`
}

// Liquidity is the last-resort liquidity strategy built on the simple token price endpoint.
func (g *CoinGeckoClient) Liquidity(ctx context.Context, address string) (*models.LiquidityInfo, error) {
	query := url.Values{
		"contract_addresses":  {address},
		"vs_currencies":       {"usd"},
		"include_24hr_vol":    {"true"},
		"include_24hr_change": {"true"},
		"include_market_cap":  {"true"},
	}
	var resp map[string]simplePrice
	path := "/simple/token_price/" + url.PathEscape(g.platform)
	if err := g.client.GetJSON(ctx, path, query, &resp); err != nil {
		return nil, err
	}

	entry, ok := resp[address]
	if !ok {
		entry, ok = resp[strings.ToLower(address)]
	}
	if !ok {
		return nil, fmt.Errorf("%w: coingecko has no price for %s", provider.ErrNotFound, address)
	}
	return &models.LiquidityInfo{
		Price:          models.KnownPtr(entry.USD),
		Volume24h:      models.KnownPtr(entry.USD24hVol),
		PriceChange24h: models.KnownPtr(entry.USD24hChange),
		MarketCap:      models.KnownPtr(entry.USDMarketCap),
		Source:         "coingecko",
	}, nil
}
