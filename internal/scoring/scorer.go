package scoring

import (
	"fmt"
	"math"

	"github.com/notlelouch/chaincheck/internal/models"
)

// Weights of each category total in the overall score, must sum to 1
type Weights struct {
	Contract  float64
	Liquidity float64
	Holders   float64
	Community float64
}

var DefaultWeights = Weights{Contract: 0.30, Liquidity: 0.25, Holders: 0.25, Community: 0.20}

func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"contract":  w.Contract,
		"liquidity": w.Liquidity,
		"holders":   w.Holders,
		"community": w.Community,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("weight %s must be non-negative, got %v", name, v)
		}
	}
	if sum := w.Contract + w.Liquidity + w.Holders + w.Community; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("weights must sum to 1, got %.4f", sum)
	}
	return nil
}

// Risk tier cut points on the overall score
const (
	LowRiskMin    = 0.8
	MediumRiskMin = 0.6
	HighRiskMin   = 0.4
)

// Composite turns the four category totals into the overall score and risk tier
type Composite struct {
	weights Weights
}

func NewComposite(w Weights) (*Composite, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Composite{weights: w}, nil
}

func (c *Composite) Weights() Weights { return c.weights }

// Score is a pure function of the four totals and the fixed weights.
func (c *Composite) Score(
	contract models.ContractBehavior,
	liquidity models.LiquidityHealth,
	holders models.HolderDistribution,
	community models.CommunitySignals,
) (float64, models.RiskLevel) {
	overall := contract.TotalScore*c.weights.Contract +
		liquidity.TotalScore*c.weights.Liquidity +
		holders.TotalScore*c.weights.Holders +
		community.TotalScore*c.weights.Community

	overall = models.Round2(math.Max(0, math.Min(1, overall)))
	return overall, ClassifyRisk(overall)
}

func ClassifyRisk(score float64) models.RiskLevel {
	switch {
	case score >= LowRiskMin:
		return models.RiskLow
	case score >= MediumRiskMin:
		return models.RiskMedium
	case score >= HighRiskMin:
		return models.RiskHigh
	default:
		return models.RiskVeryHigh
	}
}
