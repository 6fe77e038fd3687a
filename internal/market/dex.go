package market

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/notlelouch/chaincheck/internal/models"
	"github.com/notlelouch/chaincheck/internal/provider"
)

// number accepts both JSON numbers and numeric strings, which the Sui DEX APIs mix freely.
type number struct {
	v *float64
}

func (n *number) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		n.v = &f
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		n.v = &f
	}
	return nil
}

func parsePrice(s string) models.Metric {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return models.Metric{}
	}
	return models.Known(f)
}

// CetusClient reads token market data from the Cetus aggregator
type CetusClient struct {
	client *provider.Client
}

func NewCetusClient(cfg DexConfig) *CetusClient {
	return &CetusClient{client: provider.New(cfg.options("cetus"))}
}

type cetusToken struct {
	Price          number `json:"price"`
	Volume24h      number `json:"volume24h"`
	Liquidity      number `json:"liquidity"`
	PriceChange24h number `json:"priceChange24h"`
	MarketCap      number `json:"marketCap"`
}

func (c *CetusClient) Liquidity(ctx context.Context, address string) (*models.LiquidityInfo, error) {
	var t cetusToken
	if err := c.client.GetJSON(ctx, "/v1/market/token/"+url.PathEscape(address), nil, &t); err != nil {
		return nil, err
	}
	return &models.LiquidityInfo{
		Price:          models.KnownPtr(t.Price.v),
		Volume24h:      models.KnownPtr(t.Volume24h.v),
		Liquidity:      models.KnownPtr(t.Liquidity.v),
		PriceChange24h: models.KnownPtr(t.PriceChange24h.v),
		MarketCap:      models.KnownPtr(t.MarketCap.v),
		Source:         "cetus",
	}, nil
}

// TurbosClient reads pool data from Turbos Finance
type TurbosClient struct {
	client *provider.Client
}

func NewTurbosClient(cfg DexConfig) *TurbosClient {
	return &TurbosClient{client: provider.New(cfg.options("turbos"))}
}

type turbosPool struct {
	TokenPrice     number `json:"token_price"`
	Volume24h      number `json:"volume_24h"`
	TVL            number `json:"tvl"`
	PriceChange24h number `json:"price_change_24h"`
}

func (c *TurbosClient) Liquidity(ctx context.Context, address string) (*models.LiquidityInfo, error) {
	var p turbosPool
	if err := c.client.GetJSON(ctx, "/v1/pools/"+url.PathEscape(address), nil, &p); err != nil {
		return nil, err
	}
	return &models.LiquidityInfo{
		Price:          models.KnownPtr(p.TokenPrice.v),
		Volume24h:      models.KnownPtr(p.Volume24h.v),
		Liquidity:      models.KnownPtr(p.TVL.v),
		PriceChange24h: models.KnownPtr(p.PriceChange24h.v),
		Source:         "turbos",
	}, nil
}

// BlueMoveClient reads token data from the BlueMove DEX
type BlueMoveClient struct {
	client *provider.Client
}

func NewBlueMoveClient(cfg DexConfig) *BlueMoveClient {
	return &BlueMoveClient{client: provider.New(cfg.options("bluemove"))}
}

type blueMoveToken struct {
	Price          number `json:"price"`
	Volume24h      number `json:"volume24h"`
	Liquidity      number `json:"liquidity"`
	PriceChange24h number `json:"priceChange24h"`
}

func (c *BlueMoveClient) Liquidity(ctx context.Context, address string) (*models.LiquidityInfo, error) {
	var t blueMoveToken
	if err := c.client.GetJSON(ctx, "/api/v1/token/"+url.PathEscape(address), nil, &t); err != nil {
		return nil, err
	}
	return &models.LiquidityInfo{
		Price:          models.KnownPtr(t.Price.v),
		Volume24h:      models.KnownPtr(t.Volume24h.v),
		Liquidity:      models.KnownPtr(t.Liquidity.v),
		PriceChange24h: models.KnownPtr(t.PriceChange24h.v),
		Source:         "bluemove",
	}, nil
}
