package scoring

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/notlelouch/chaincheck/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Defaults is the fallback table for every category
type Defaults struct {
	ContractBehavior   models.ContractBehavior   `yaml:"contractBehavior"`
	LiquidityHealth    models.LiquidityHealth    `yaml:"liquidityHealth"`
	HolderDistribution models.HolderDistribution `yaml:"holderDistribution"`
	CommunitySignals   models.CommunitySignals   `yaml:"communitySignals"`
}

func parseDefaults(raw []byte) (Defaults, error) {
	var d Defaults
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return Defaults{}, fmt.Errorf("parse scoring defaults: %w", err)
	}
	d.ContractBehavior.TotalScore = models.Mean2(d.ContractBehavior.SubScores())
	d.LiquidityHealth.TotalScore = models.Mean2(d.LiquidityHealth.SubScores())
	d.HolderDistribution.TotalScore = models.Mean2(d.HolderDistribution.SubScores())
	d.CommunitySignals.TotalScore = models.Mean2(d.CommunitySignals.SubScores())
	return d, nil
}

// The table is embedded, so a parse failure is a build defect.
var defaults = sync.OnceValue(func() Defaults {
	d, err := parseDefaults(defaultsYAML)
	if err != nil {
		panic(err)
	}
	return d
})

// Category scores hold no reference types, so returning copies keeps the table immutable.

func DefaultContractBehavior() models.ContractBehavior {
	return defaults().ContractBehavior
}

func DefaultLiquidityHealth() models.LiquidityHealth {
	return defaults().LiquidityHealth
}

func DefaultHolderDistribution() models.HolderDistribution {
	return defaults().HolderDistribution
}

func DefaultCommunitySignals() models.CommunitySignals {
	return defaults().CommunitySignals
}
