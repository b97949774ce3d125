package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"solscalp/bot"
	"solscalp/config"
	"solscalp/dex"
	"solscalp/feed"
	"solscalp/journal"
	"solscalp/metrics"
	"solscalp/notify"
	"solscalp/paper"
	"solscalp/pkg/logx"
	"solscalp/risk"
	"solscalp/strategies"
	"solscalp/wallet"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the trading loop from a config file",
	Long: `Start the bot using settings from a YAML configuration file.

In paper mode trades fill against a simulated account; in live mode they
are submitted through Jupiter using the wallet key from the environment.

Example:
  solscalp run --config config.yaml`,
	RunE: runRun,
}

var (
	runConfigPath string
	runMode       string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to YAML config file (required)")
	runCmd.Flags().StringVar(&runMode, "mode", "", "override app.mode (paper or live)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if runMode != "" {
		cfg.App.Mode = runMode
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}

	log := logx.New(cfg.App.LogLevel, cfg.App.PrettyLog)

	strat, err := strategies.ByName(cfg.Strategy.Name, cfg.Strategy.MeanRev, cfg.Strategy.Threshold, log)
	if err != nil {
		return err
	}
	amount, slippage := tradeSizing(cfg)

	rm := risk.NewManager(cfg.Risk, log)
	br := risk.NewBreaker(cfg.Breaker.FailureThreshold, cfg.Breaker.Timeout, log)
	priceFeed := feed.NewJupiter(cfg.Feed.PriceAPI, cfg.Feed.Timeout, log)

	jrn, err := buildJournal(cfg)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer jrn.Close()

	executor, balance, err := buildExecutor(cfg, log)
	if err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		srv := metrics.Serve(cfg.Metrics.Addr)
		defer srv.Close()
		log.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics listening")
	}

	controller, err := bot.New(bot.Options{
		Pair:           cfg.Pair.Name,
		Mint:           cfg.Pair.BaseMint,
		Mode:           cfg.App.Mode,
		PollInterval:   cfg.App.PollInterval,
		MinConfidence:  cfg.App.MinConfidence,
		TradeAmountUSD: amount,
		MaxSlippageBps: slippage,
		MinBalanceSOL:  cfg.Wallet.MinBalanceSOL,
		PortfolioUSD:   cfg.App.PortfolioUSD,
	}, bot.Deps{
		Strategy: strat,
		Risk:     rm,
		Breaker:  br,
		Feed:     priceFeed,
		Executor: executor,
		Balance:  balance,
		Journal:  jrn,
		Notifier: buildNotifier(cfg, log),
		Log:      log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	controller.Run(ctx)
	return nil
}

// tradeSizing pulls the order size and slippage cap from whichever strategy
// section is active.
func tradeSizing(cfg *config.Config) (amountUSD float64, slippageBps int) {
	if cfg.Strategy.Name == "threshold" {
		return cfg.Strategy.Threshold.TradeAmountUSD, cfg.Strategy.Threshold.MaxSlippageBps
	}
	return cfg.Strategy.MeanRev.TradeAmountUSD, cfg.Strategy.MeanRev.MaxSlippageBps
}

func buildJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	default:
		return journal.Nop{}, nil
	}
}

func buildNotifier(cfg *config.Config, log zerolog.Logger) notify.Notifier {
	sinks := notify.Multi{notify.NewLog(log)}
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		sinks = append(sinks, notify.NewTelegram(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID, log))
	}
	return sinks
}

// buildExecutor wires either the paper simulator or the live Jupiter
// executor with its wallet.
func buildExecutor(cfg *config.Config, log zerolog.Logger) (bot.SwapExecutor, bot.BalanceProvider, error) {
	_, slippage := tradeSizing(cfg)

	if cfg.App.Mode == "paper" {
		return paper.NewExecutor(cfg.App.PortfolioUSD, slippage, log), nil, nil
	}

	key, err := wallet.LoadPrivateKey()
	if err != nil {
		return nil, nil, fmt.Errorf("load wallet key: %w", err)
	}

	pair := dex.Pair{
		BaseMint:      cfg.Pair.BaseMint,
		BaseDecimals:  cfg.Pair.BaseDecimals,
		QuoteMint:     cfg.Pair.QuoteMint,
		QuoteDecimals: cfg.Pair.QuoteDecimals,
	}
	executor := dex.NewExecutor(cfg.Wallet.SwapAPI, cfg.Wallet.RPCURL, key, pair, cfg.Wallet.Commitment, log)

	owner := key.PublicKey()
	w := wallet.New(cfg.Wallet.RPCURL, owner)
	log.Info().Stringer("wallet", owner).Msg("live trading wallet loaded")

	return executor, w, nil
}
