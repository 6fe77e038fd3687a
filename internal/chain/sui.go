// Package chain implements a minimal Sui JSON-RPC client for coin metadata.
package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/notlelouch/chaincheck/internal/provider"
)

// CoinMetadata is the result of suix_getCoinMetadata
type CoinMetadata struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    int    `json:"decimals"`
	Description string `json:"description"`
	IconURL     string `json:"iconUrl"`
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type SuiClient struct {
	client *provider.Client
	nextID atomic.Int64
}

type Config struct {
	RPCURL          string
	RPS             float64
	BreakerFailures uint32
	BreakerCooldown time.Duration
	Recorder        provider.Recorder
}

func NewSuiClient(cfg Config) *SuiClient {
	return &SuiClient{
		client: provider.New(provider.Options{
			Name:            "sui-rpc",
			BaseURL:         cfg.RPCURL,
			Timeout:         15 * time.Second,
			RPS:             cfg.RPS,
			BreakerFailures: cfg.BreakerFailures,
			BreakerCooldown: cfg.BreakerCooldown,
			Recorder:        cfg.Recorder,
		}),
	}
}

// CoinMetadata fetches on-chain metadata for a coin type. A null result means the node
// does not know the coin.
func (s *SuiClient) CoinMetadata(ctx context.Context, coinType string) (*CoinMetadata, error) {
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      s.nextID.Add(1),
		Method:  "suix_getCoinMetadata",
		Params:  []any{coinType},
	}
	var resp rpcResponse
	if err := s.client.PostJSON(ctx, "", req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: sui rpc error %d: %s", provider.ErrNotFound, resp.Error.Code, resp.Error.Message)
	}
	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		return nil, fmt.Errorf("%w: no coin metadata for %s", provider.ErrNotFound, coinType)
	}

	var meta CoinMetadata
	if err := json.Unmarshal(resp.Result, &meta); err != nil {
		return nil, fmt.Errorf("%w: sui coin metadata: %v", provider.ErrMalformed, err)
	}
	return &meta, nil
}
