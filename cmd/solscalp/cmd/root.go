package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "solscalp",
	Short: "A risk-managed micro-scalping bot for Solana DEX pairs",
	Long: `Solscalp polls a swap-aggregator price feed, looks for short-window
mean-reversion entries, and executes swaps through Jupiter with a layered
risk gate in front of every trade.

It provides:
  - Mean-reversion and dynamic-threshold signal engines
  - A scoring risk gate with daily loss, drawdown, and cooldown limits
  - A circuit breaker around swap execution
  - Paper trading against a simulated account
  - CSV and SQLite trade journals, Prometheus metrics, Telegram alerts`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
