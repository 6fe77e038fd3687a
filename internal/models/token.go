package models

import (
	"encoding/json"
	"math"
	"time"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskVeryHigh RiskLevel = "VERY_HIGH"
)

// Confidence tells consumers how much live data went into an analysis.
type Confidence string

const (
	ConfidenceHigh    Confidence = "HIGH"    // every source answered
	ConfidencePartial Confidence = "PARTIAL" // some sources missing
	ConfidenceLow     Confidence = "LOW"     // every source missing, result is the static fallback
)

const (
	UnknownTokenName   = "Unknown Token"
	UnknownTokenSymbol = "UNK"
	SourceNone         = "none"
	unavailable        = "N/A"
)

// CompositeAnalysis is the full assessment of one token
type CompositeAnalysis struct {
	ContractAddress    string             `json:"contractAddress"`
	TokenName          string             `json:"tokenName"`
	TokenSymbol        string             `json:"tokenSymbol"`
	OverallScore       float64            `json:"overallScore"`
	ContractBehavior   ContractBehavior   `json:"contractBehavior"`
	LiquidityHealth    LiquidityHealth    `json:"liquidityHealth"`
	HolderDistribution HolderDistribution `json:"holderDistribution"`
	CommunitySignals   CommunitySignals   `json:"communitySignals"`
	LiquidityInfo      LiquidityInfo      `json:"liquidityInfo"`
	RiskLevel          RiskLevel          `json:"riskLevel"`
	Confidence         Confidence         `json:"confidence"`
	MissingSources     []string           `json:"missingSources"`
	Timestamp          time.Time          `json:"timestamp"`
}

// TokenMetadata is the resolved display identity of a token
type TokenMetadata struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// Metric is a number that may be missing. Missing metrics serialize as "N/A" so
// that absent data is never confused with a real zero.
type Metric struct {
	Value     float64
	Available bool
}

func Known(v float64) Metric { return Metric{Value: v, Available: true} }

// KnownPtr is Known for optional decoded fields; nil and non-finite values are unavailable.
func KnownPtr(v *float64) Metric {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return Metric{}
	}
	return Known(*v)
}

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Available {
		return json.Marshal(unavailable)
	}
	return json.Marshal(m.Value)
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*m = Known(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*m = Metric{}
	return nil
}

// LiquidityInfo is the market block produced by the liquidity fallback chain
type LiquidityInfo struct {
	Price          Metric `json:"price"`
	Volume24h      Metric `json:"volume24h"`
	Liquidity      Metric `json:"liquidity"`
	PriceChange24h Metric `json:"priceChange24h"`
	MarketCap      Metric `json:"marketCap"`
	Source         string `json:"source"`
}

// DefaultLiquidityInfo is the sentinel returned when no liquidity source answered.
func DefaultLiquidityInfo() LiquidityInfo {
	return LiquidityInfo{Source: SourceNone}
}

// Valid reports whether the payload carries a usable price.
func (l *LiquidityInfo) Valid() bool {
	return l != nil && l.Price.Available && l.Price.Value > 0
}
