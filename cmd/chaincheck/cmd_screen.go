package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/notlelouch/chaincheck/internal/analysis"
	"github.com/notlelouch/chaincheck/internal/metrics"
	"github.com/notlelouch/chaincheck/internal/models"
	"github.com/spf13/cobra"
)

type BasicTokenInfo struct {
	Address string `json:"contract_address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

var (
	screenFile      string
	screenThreshold float64
	screenDelay     time.Duration
)

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Screen a list of tokens and print a pass/reject summary",
	Long: `Analyze every token in a JSON file of {"contract_address","name","symbol"}
objects. A token passes when its overall score reaches the threshold.`,
	Example: `  chaincheck screen --file tokens.json
  chaincheck screen --file tokens.json --threshold 0.8 --delay 0s`,
	RunE: runScreen,
}

func init() {
	rootCmd.AddCommand(screenCmd)
	screenCmd.Flags().StringVar(&screenFile, "file", "tokens.json", "Token list to screen")
	screenCmd.Flags().Float64Var(&screenThreshold, "threshold", 0.6, "Minimum overall score to pass")
	screenCmd.Flags().DurationVar(&screenDelay, "delay", 2*time.Second, "Pause between tokens")
}

func runScreen(cmd *cobra.Command, args []string) error {
	tokenInfos, err := readTokens(screenFile)
	if err != nil {
		return err
	}

	eng, err := buildEngine(cfg, metrics.NewRegistry(), nil)
	if err != nil {
		return err
	}

	ctx := context.Background()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Token Screening Pipeline\n")
	fmt.Fprintf(out, "Total: %d tokens\n\n", len(tokenInfos))

	passed := 0
	for i, tokenInfo := range tokenInfos {
		address := analysis.NormalizeAddress(tokenInfo.Address)
		fmt.Fprintf(out, "[%d/%d] %s (%s)\n", i+1, len(tokenInfos), tokenInfo.Symbol, address)

		if err := analysis.ValidateAddress(address); err != nil {
			fmt.Fprintf(out, "  ERROR: %v\n\n", err)
			continue
		}

		result := eng.analyzer.Analyze(ctx, address)

		fmt.Fprintf(out, "  Liq: %s | Vol: %s | Source: %s\n",
			usd(result.LiquidityInfo.Liquidity), usd(result.LiquidityInfo.Volume24h), result.LiquidityInfo.Source)
		fmt.Fprintf(out, "  Score: %.2f (C:%.2f L:%.2f H:%.2f S:%.2f) | Risk: %s | Confidence: %s\n",
			result.OverallScore,
			result.ContractBehavior.TotalScore,
			result.LiquidityHealth.TotalScore,
			result.HolderDistribution.TotalScore,
			result.CommunitySignals.TotalScore,
			result.RiskLevel,
			result.Confidence,
		)

		if result.OverallScore >= screenThreshold && result.Confidence != models.ConfidenceLow {
			passed++
			fmt.Fprintf(out, "  Result: PASS\n\n")
		} else {
			fmt.Fprintf(out, "  Result: REJECTED - %s\n\n", rejectReason(result))
		}

		if i < len(tokenInfos)-1 && screenDelay > 0 {
			time.Sleep(screenDelay)
		}
	}

	if len(tokenInfos) > 0 {
		fmt.Fprintf(out, "Summary: %d/%d passed (%.1f%%)\n",
			passed, len(tokenInfos), float64(passed)/float64(len(tokenInfos))*100)
	}
	return nil
}

func usd(m models.Metric) string {
	if !m.Available {
		return "N/A"
	}
	return fmt.Sprintf("$%.0f", m.Value)
}

func rejectReason(result models.CompositeAnalysis) string {
	if result.Confidence == models.ConfidenceLow {
		return "no provider data"
	}
	if result.ContractBehavior.Details.IsHoneypot {
		return "honeypot risk"
	}
	return fmt.Sprintf("score %.2f below %.2f", result.OverallScore, screenThreshold)
}

func readTokens(fileName string) ([]BasicTokenInfo, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("read token list: %w", err)
	}

	var tokens []BasicTokenInfo
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("parse token list %s: %w", fileName, err)
	}
	return tokens, nil
}
