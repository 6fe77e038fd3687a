package scoring

import (
	"sort"
	"strings"

	"github.com/notlelouch/chaincheck/internal/market"
	"github.com/notlelouch/chaincheck/internal/models"
	"github.com/notlelouch/chaincheck/internal/security"
)

// Thresholds for the category rules
const (
	MinLiquidityUSD        = 10_000.0 // pool depth needed for a passing depth score
	MaxDeployerLPShare     = 50.0     // % of LP supply held by the deployer
	NeutralPoolAgeScore    = 0.5      // pool age is reported, not scored
	MaxTop5Concentration   = 50.0     // % of supply held by the five largest holders
	MaxSingleHolderPercent = 20.0     // whale threshold
	MaxDeployerHolders     = 5        // deployer-tagged holder entries
	MinFollowers           = 1000
	MinEngagementRate      = 2.0 // %
	MinTransactions24h     = 50
	MinMarketVolume24h     = 10_000.0
)

func pass(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}

// ScoreContractBehavior applies the contract rules. Unknown flags score as failing.
func ScoreContractBehavior(data *security.TokenSecurity) models.ContractBehavior {
	if data == nil {
		return DefaultContractBehavior()
	}

	verified := security.ParseFlag(data.IsVerified)
	if verified == security.FlagUnknown {
		verified = security.ParseFlag(data.IsOpenSource)
	}
	isVerified := verified == security.FlagTrue
	notHoneypot := security.ParseFlag(data.IsHoneypot) == security.FlagFalse
	mintRevoked := security.ParseFlag(data.IsMintable) == security.FlagFalse &&
		security.ParseFlag(data.CanTakeBackOwnership) != security.FlagTrue
	noOwnerPrivileges := security.ParseFlag(data.CannotBuy) == security.FlagFalse &&
		security.ParseFlag(data.CannotSellAll) == security.FlagFalse
	noHiddenFunctions := security.ParseFlag(data.SlippageModifiable) == security.FlagFalse &&
		security.ParseFlag(data.HiddenOwner) != security.FlagTrue

	c := models.ContractBehavior{
		ContractVerificationScore: pass(isVerified),
		HoneypotScore:             pass(notHoneypot),
		MintAuthorityScore:        pass(mintRevoked),
		OwnerPrivilegesScore:      pass(noOwnerPrivileges),
		HiddenFunctionsScore:      pass(noHiddenFunctions),
		Details: models.ContractBehaviorDetails{
			IsVerified:         isVerified,
			IsHoneypot:         !notHoneypot,
			CanMint:            !mintRevoked,
			HasOwnerPrivileges: !noOwnerPrivileges,
			HasHiddenFunctions: !noHiddenFunctions,
		},
	}
	c.TotalScore = models.Mean2(c.SubScores())
	return c
}

func isDeployer(h security.Holder, creator string) bool {
	if strings.Contains(strings.ToLower(h.Tag), "deployer") || strings.Contains(strings.ToLower(h.Tag), "creator") {
		return true
	}
	return creator != "" && strings.EqualFold(h.Address, creator)
}

// ScoreLiquidityHealth applies the liquidity rules to LP holder and DEX pool data.
func ScoreLiquidityHealth(data *security.TokenSecurity) models.LiquidityHealth {
	if data == nil || (len(data.LPHolders) == 0 && len(data.Dex) == 0) {
		return DefaultLiquidityHealth()
	}

	var locked bool
	var lpBalance, deployerShare float64
	for _, h := range data.LPHolders {
		if h.IsLocked == 1 {
			locked = true
		}
		lpBalance += h.BalanceValue()
		if isDeployer(h, data.CreatorAddress) {
			deployerShare += h.Share()
		}
	}

	var depth float64
	for _, d := range data.Dex {
		depth += d.LiquidityValue()
	}
	if depth == 0 {
		depth = lpBalance
	}

	// Without LP holder data deployer control cannot be ruled out.
	deployerControl := len(data.LPHolders) == 0 || deployerShare >= MaxDeployerLPShare

	l := models.LiquidityHealth{
		PoolLockedScore:      pass(locked),
		LiquidityDepthScore:  pass(depth > MinLiquidityUSD),
		DeployerControlScore: pass(!deployerControl),
		PoolAgeScore:         NeutralPoolAgeScore,
		Details: models.LiquidityHealthDetails{
			IsPoolLocked:       locked,
			LiquidityUSD:       models.Round2(depth),
			DeployerHasControl: deployerControl,
		},
	}
	l.TotalScore = models.Mean2(l.SubScores())
	return l
}

// DiversityScore bands the total holder count
func DiversityScore(totalHolders int) float64 {
	switch {
	case totalHolders >= 1000:
		return 1.0
	case totalHolders >= 500:
		return 0.8
	case totalHolders >= 200:
		return 0.6
	case totalHolders >= 100:
		return 0.4
	case totalHolders >= 50:
		return 0.2
	default:
		return 0
	}
}

// ScoreHolderDistribution applies the concentration rules to the sampled top holders.
func ScoreHolderDistribution(data *security.TokenSecurity) models.HolderDistribution {
	if data == nil || len(data.Holders) == 0 {
		return DefaultHolderDistribution()
	}

	shares := make([]float64, 0, len(data.Holders))
	deployers := 0
	for _, h := range data.Holders {
		shares = append(shares, h.Share())
		if isDeployer(h, data.CreatorAddress) {
			deployers++
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(shares)))

	var top5 float64
	for i := 0; i < len(shares) && i < 5; i++ {
		top5 += shares[i]
	}
	largest := shares[0]
	total := data.TotalHolders()

	h := models.HolderDistribution{
		TopHolderScore:        pass(top5 < MaxTop5Concentration),
		WhaleDetectionScore:   pass(largest <= MaxSingleHolderPercent),
		DeployerActivityScore: pass(deployers < MaxDeployerHolders),
		DiversityScore:        DiversityScore(total),
		Details: models.HolderDistributionDetails{
			Top5HoldersPercentage:   models.Round2(top5),
			LargestHolderPercentage: models.Round2(largest),
			TotalHolders:            total,
			DeployerTxCount:         deployers,
		},
	}
	h.TotalScore = models.Mean2(h.SubScores())
	return h
}

// ScoreCommunitySignals combines CoinGecko community data with DexScreener activity.
// Either input may be nil; its signals then score zero.
func ScoreCommunitySignals(coin *market.Coin, act *market.Activity) models.CommunitySignals {
	if coin == nil && act == nil {
		return DefaultCommunitySignals()
	}

	var followers, txs int
	var engagement, volume float64
	var official bool
	if coin != nil {
		followers = coin.Followers()
		engagement = coin.EngagementRate()
		official = coin.HasOfficialAccount()
		volume = coin.Volume24h()
	}
	if act != nil {
		txs = act.Transactions24h
		official = official || act.HasOfficialSocial
		if volume == 0 {
			volume = act.Volume24h
		}
	}
	listed := coin != nil

	c := models.CommunitySignals{
		SocialPresenceScore: (pass(followers > MinFollowers) + pass(official)) / 2,
		EngagementScore:     pass(engagement > MinEngagementRate),
		ChainActivityScore:  pass(txs > MinTransactions24h),
		MarketMentionScore:  0.5*pass(listed) + 0.5*pass(volume > MinMarketVolume24h),
		Details: models.CommunitySignalsDetails{
			SocialFollowers:     followers,
			EngagementRate:      engagement,
			TxLast24h:           txs,
			IsListedOnCoinGecko: listed,
		},
	}
	c.TotalScore = models.Mean2(c.SubScores())
	return c
}
