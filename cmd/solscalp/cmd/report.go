package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"solscalp/config"
	"solscalp/journal"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show recent trades from the journal",
	Long: `Read the journal referenced by the config file and print the most
recent trades. Only the SQLite journal supports querying.`,
	RunE: runReport,
}

var (
	reportConfigPath string
	reportLimit      int
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportConfigPath, "config", "f", "", "path to YAML config file (required)")
	reportCmd.Flags().IntVarP(&reportLimit, "limit", "n", 20, "number of trades to show")
	reportCmd.MarkFlagRequired("config")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(reportConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Journal.Type != "sqlite" {
		return fmt.Errorf("report requires journal.type sqlite, got %q", cfg.Journal.Type)
	}

	j, err := journal.NewSQLite(cfg.Journal.DBPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	trades, err := j.RecentTrades(cmd.Context(), reportLimit)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	if len(trades) == 0 {
		fmt.Println("no trades recorded")
		return nil
	}

	fmt.Printf("%-28s %-10s %-5s %10s %12s %9s %8s  %s\n",
		"TIME", "PAIR", "SIDE", "AMOUNT", "PRICE", "PROFIT%", "HELD(s)", "REASON")
	for _, t := range trades {
		fmt.Printf("%-28s %-10s %-5s %10.2f %12.4f %9.2f %8.0f  %s\n",
			t.Time.Format("2006-01-02 15:04:05 MST"),
			t.Pair, t.Side, t.AmountUSD, t.Price, t.ProfitPct, t.HeldSeconds, t.Reason)
	}
	return nil
}
