package main

import (
	"fmt"
	"os"

	"github.com/notlelouch/chaincheck/internal/config"
	"github.com/notlelouch/chaincheck/internal/logger"
	"github.com/spf13/cobra"
)

var cfg *config.Config

// rootCmd is the base command for the ChainCheck CLI
var rootCmd = &cobra.Command{
	Use:   "chaincheck",
	Short: "ChainCheck token trust and risk analysis",
	Long: `ChainCheck aggregates security, market, liquidity and on-chain data for a token
and reduces it to four category scores, an overall trust score and a risk level.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger.Init(cfg.LogLevel, cfg.LogFormat)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
