package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/notlelouch/chaincheck/internal/analysis"
	"github.com/notlelouch/chaincheck/internal/metrics"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <address>",
	Short: "Analyze one token and print the result as JSON",
	Example: `  chaincheck analyze 0x2::sui::SUI
  chaincheck analyze 0x5d4b302506645c37ff133b98c4b50a5ae14841659738d6d733d59d0d217a93bf::coin::COIN`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	address := analysis.NormalizeAddress(args[0])
	if err := analysis.ValidateAddress(address); err != nil {
		return fmt.Errorf("%w: %q", err, args[0])
	}

	eng, err := buildEngine(cfg, metrics.NewRegistry(), nil)
	if err != nil {
		return err
	}

	result := eng.analyzer.Analyze(context.Background(), address)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
