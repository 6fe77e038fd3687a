package models

import "math"

// All sub-scores are on the 0-1 scale.

type ContractBehavior struct {
	ContractVerificationScore float64                 `json:"contractVerificationScore" yaml:"contractVerificationScore"`
	HoneypotScore             float64                 `json:"honeypotScore" yaml:"honeypotScore"`
	MintAuthorityScore        float64                 `json:"mintAuthorityScore" yaml:"mintAuthorityScore"`
	OwnerPrivilegesScore      float64                 `json:"ownerPrivilegesScore" yaml:"ownerPrivilegesScore"`
	HiddenFunctionsScore      float64                 `json:"hiddenFunctionsScore" yaml:"hiddenFunctionsScore"`
	TotalScore                float64                 `json:"totalScore" yaml:"-"`
	Details                   ContractBehaviorDetails `json:"details" yaml:"details"`
}

type ContractBehaviorDetails struct {
	IsVerified         bool `json:"isVerified" yaml:"isVerified"`
	IsHoneypot         bool `json:"isHoneypot" yaml:"isHoneypot"`
	CanMint            bool `json:"canMint" yaml:"canMint"`
	HasOwnerPrivileges bool `json:"hasOwnerPrivileges" yaml:"hasOwnerPrivileges"`
	HasHiddenFunctions bool `json:"hasHiddenFunctions" yaml:"hasHiddenFunctions"`
}

func (c ContractBehavior) SubScores() []float64 {
	return []float64{
		c.ContractVerificationScore,
		c.HoneypotScore,
		c.MintAuthorityScore,
		c.OwnerPrivilegesScore,
		c.HiddenFunctionsScore,
	}
}

type LiquidityHealth struct {
	PoolLockedScore      float64                `json:"poolLockedScore" yaml:"poolLockedScore"`
	LiquidityDepthScore  float64                `json:"liquidityDepthScore" yaml:"liquidityDepthScore"`
	DeployerControlScore float64                `json:"deployerControlScore" yaml:"deployerControlScore"`
	PoolAgeScore         float64                `json:"poolAgeScore" yaml:"poolAgeScore"`
	TotalScore           float64                `json:"totalScore" yaml:"-"`
	Details              LiquidityHealthDetails `json:"details" yaml:"details"`
}

type LiquidityHealthDetails struct {
	IsPoolLocked       bool    `json:"isPoolLocked" yaml:"isPoolLocked"`
	LiquidityUSD       float64 `json:"liquidityUSD" yaml:"liquidityUSD"`
	DeployerHasControl bool    `json:"deployerHasControl" yaml:"deployerHasControl"`
	PoolAgeDays        int     `json:"poolAgeDays" yaml:"poolAgeDays"`
}

func (l LiquidityHealth) SubScores() []float64 {
	return []float64{l.PoolLockedScore, l.LiquidityDepthScore, l.DeployerControlScore, l.PoolAgeScore}
}

type HolderDistribution struct {
	TopHolderScore        float64                   `json:"topHolderScore" yaml:"topHolderScore"`
	WhaleDetectionScore   float64                   `json:"whaleDetectionScore" yaml:"whaleDetectionScore"`
	DeployerActivityScore float64                   `json:"deployerActivityScore" yaml:"deployerActivityScore"`
	DiversityScore        float64                   `json:"diversityScore" yaml:"diversityScore"`
	TotalScore            float64                   `json:"totalScore" yaml:"-"`
	Details               HolderDistributionDetails `json:"details" yaml:"details"`
}

type HolderDistributionDetails struct {
	Top5HoldersPercentage   float64 `json:"top5HoldersPercentage" yaml:"top5HoldersPercentage"`
	LargestHolderPercentage float64 `json:"largestHolderPercentage" yaml:"largestHolderPercentage"`
	TotalHolders            int     `json:"totalHolders" yaml:"totalHolders"`
	DeployerTxCount         int     `json:"deployerTxCount" yaml:"deployerTxCount"`
}

func (h HolderDistribution) SubScores() []float64 {
	return []float64{h.TopHolderScore, h.WhaleDetectionScore, h.DeployerActivityScore, h.DiversityScore}
}

type CommunitySignals struct {
	SocialPresenceScore float64                 `json:"socialPresenceScore" yaml:"socialPresenceScore"`
	EngagementScore     float64                 `json:"engagementScore" yaml:"engagementScore"`
	ChainActivityScore  float64                 `json:"chainActivityScore" yaml:"chainActivityScore"`
	MarketMentionScore  float64                 `json:"marketMentionScore" yaml:"marketMentionScore"`
	TotalScore          float64                 `json:"totalScore" yaml:"-"`
	Details             CommunitySignalsDetails `json:"details" yaml:"details"`
}

type CommunitySignalsDetails struct {
	SocialFollowers     int     `json:"socialFollowers" yaml:"socialFollowers"`
	EngagementRate      float64 `json:"engagementRate" yaml:"engagementRate"`
	TxLast24h           int     `json:"txLast24h" yaml:"txLast24h"`
	IsListedOnCoinGecko bool    `json:"isListedOnCoinGecko" yaml:"isListedOnCoinGecko"`
}

func (c CommunitySignals) SubScores() []float64 {
	return []float64{c.SocialPresenceScore, c.EngagementScore, c.ChainActivityScore, c.MarketMentionScore}
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Mean2 is the arithmetic mean of scores rounded to two decimals. An empty list is 0.
func Mean2(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return Round2(sum / float64(len(scores)))
}
