// Package security implements a client for the GoPlus token security API.
package security

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/notlelouch/chaincheck/internal/provider"
)

const defaultTimeout = 10 * time.Second

// Flag is a GoPlus "0"/"1" string flag. A missing or unexpected value is unknown.
type Flag int

const (
	FlagUnknown Flag = iota
	FlagFalse
	FlagTrue
)

func ParseFlag(v string) Flag {
	switch strings.TrimSpace(v) {
	case "0":
		return FlagFalse
	case "1":
		return FlagTrue
	default:
		return FlagUnknown
	}
}

type Holder struct {
	Address    string `json:"address"`
	Tag        string `json:"tag"`
	IsContract int    `json:"is_contract"`
	Balance    string `json:"balance"`
	Percent    string `json:"percent"`
	IsLocked   int    `json:"is_locked"`
}

// Share is the holder's fraction of supply converted to percentage points.
func (h Holder) Share() float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(h.Percent), 64)
	if err != nil {
		return 0
	}
	return f * 100
}

func (h Holder) BalanceValue() float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(h.Balance), 64)
	if err != nil {
		return 0
	}
	return f
}

type DexPool struct {
	Name      string `json:"name"`
	Liquidity string `json:"liquidity"`
	Pair      string `json:"pair"`
}

func (d DexPool) LiquidityValue() float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(d.Liquidity), 64)
	if err != nil {
		return 0
	}
	return f
}

// TokenSecurity is the per-token entry of a token_security answer
type TokenSecurity struct {
	IsVerified           string `json:"is_verified"`
	IsOpenSource         string `json:"is_open_source"`
	IsHoneypot           string `json:"is_honeypot"`
	IsMintable           string `json:"is_mintable"`
	CanTakeBackOwnership string `json:"can_take_back_ownership"`
	CannotBuy            string `json:"cannot_buy"`
	CannotSellAll        string `json:"cannot_sell_all"`
	SlippageModifiable   string `json:"slippage_modifiable"`
	HiddenOwner          string `json:"hidden_owner"`
	IsInDex              string `json:"is_in_dex"`

	CreatorAddress string `json:"creator_address"`
	OwnerAddress   string `json:"owner_address"`
	HolderCount    string `json:"holder_count"`
	TokenName      string `json:"token_name"`
	TokenSymbol    string `json:"token_symbol"`

	Holders   []Holder  `json:"holders"`
	LPHolders []Holder  `json:"lp_holders"`
	Dex       []DexPool `json:"dex"`
}

// TotalHolders prefers the reported holder count and falls back to the sampled holder list.
func (t *TokenSecurity) TotalHolders() int {
	if n, err := strconv.Atoi(strings.TrimSpace(t.HolderCount)); err == nil && n >= 0 {
		return n
	}
	return len(t.Holders)
}

type goPlusResponse struct {
	Code    int                      `json:"code"`
	Message string                   `json:"message"`
	Result  map[string]TokenSecurity `json:"result"`
}

type GoPlusClient struct {
	client  *provider.Client
	chainID string
}

type Config struct {
	BaseURL         string
	ChainID         string
	APIKey          string
	RPS             float64
	BreakerFailures uint32
	BreakerCooldown time.Duration
	Recorder        provider.Recorder
}

func NewGoPlusClient(cfg Config) *GoPlusClient {
	headers := map[string]string{}
	if cfg.APIKey != "" {
		headers["Authorization"] = "Bearer " + cfg.APIKey
	}
	return &GoPlusClient{
		client: provider.New(provider.Options{
			Name:            "goplus",
			BaseURL:         cfg.BaseURL,
			Timeout:         defaultTimeout,
			Headers:         headers,
			RPS:             cfg.RPS,
			BreakerFailures: cfg.BreakerFailures,
			BreakerCooldown: cfg.BreakerCooldown,
			Recorder:        cfg.Recorder,
		}),
		chainID: cfg.ChainID,
	}
}

// Fetch performs security analysis on a token address
func (g *GoPlusClient) Fetch(ctx context.Context, address string) (*TokenSecurity, error) {
	var resp goPlusResponse
	path := fmt.Sprintf("/api/v1/token_security/%s", url.PathEscape(g.chainID))
	if err := g.client.GetJSON(ctx, path, url.Values{"contract_addresses": {address}}, &resp); err != nil {
		return nil, err
	}

	if resp.Code != 1 {
		return nil, fmt.Errorf("%w: goplus code %d: %s", provider.ErrNotFound, resp.Code, resp.Message)
	}

	// Result is keyed by address; some chains lower-case the key.
	if data, ok := resp.Result[address]; ok {
		return &data, nil
	}
	for key, data := range resp.Result {
		if strings.EqualFold(key, address) {
			return &data, nil
		}
	}
	return nil, fmt.Errorf("%w: goplus has no entry for %s", provider.ErrNotFound, address)
}
