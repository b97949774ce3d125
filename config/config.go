// Package config loads and validates the bot configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"solscalp/risk"
	"solscalp/strategies"
)

// Config is the complete bot configuration.
type Config struct {
	App      AppConfig       `yaml:"app"`
	Pair     PairConfig      `yaml:"pair"`
	Feed     FeedConfig      `yaml:"feed"`
	Strategy StrategyConfig  `yaml:"strategy"`
	Risk     risk.Parameters `yaml:"risk"`
	Breaker  BreakerConfig   `yaml:"breaker"`
	Journal  JournalConfig   `yaml:"journal"`
	Notify   NotifyConfig    `yaml:"notify"`
	Wallet   WalletConfig    `yaml:"wallet"`
	Metrics  MetricsConfig   `yaml:"metrics"`
}

type AppConfig struct {
	Mode          string        `yaml:"mode"` // "paper" or "live"
	LogLevel      string        `yaml:"log_level"`
	PrettyLog     bool          `yaml:"pretty_log"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	MinConfidence float64       `yaml:"min_confidence"`
	PortfolioUSD  float64       `yaml:"portfolio_usd"`
}

type PairConfig struct {
	Name          string `yaml:"name"`
	BaseMint      string `yaml:"base_mint"`
	BaseDecimals  int    `yaml:"base_decimals"`
	QuoteMint     string `yaml:"quote_mint"`
	QuoteDecimals int    `yaml:"quote_decimals"`
}

type FeedConfig struct {
	PriceAPI string        `yaml:"price_api"`
	Timeout  time.Duration `yaml:"timeout"`
}

type StrategyConfig struct {
	Name      string                     `yaml:"name"`
	MeanRev   strategies.MeanRevConfig   `yaml:"meanrev"`
	Threshold strategies.ThresholdConfig `yaml:"threshold"`
}

type BreakerConfig struct {
	FailureThreshold int           `yaml:"failure_threshold"`
	Timeout          time.Duration `yaml:"timeout"`
}

type JournalConfig struct {
	Type       string `yaml:"type"` // "csv", "sqlite", or "none"
	TradesFile string `yaml:"trades_file,omitempty"`
	EquityFile string `yaml:"equity_file,omitempty"`
	DBPath     string `yaml:"db_path,omitempty"`
}

type NotifyConfig struct {
	TelegramToken  string `yaml:"telegram_token,omitempty"`
	TelegramChatID string `yaml:"telegram_chat_id,omitempty"`
}

type WalletConfig struct {
	RPCURL        string  `yaml:"rpc_url"`
	SwapAPI       string  `yaml:"swap_api"`
	Commitment    string  `yaml:"commitment"`
	MinBalanceSOL float64 `yaml:"min_balance_sol"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Load reads, defaults, and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration is runnable.
func (c *Config) Validate() error {
	if c.App.Mode != "paper" && c.App.Mode != "live" {
		return fmt.Errorf("app.mode must be 'paper' or 'live'")
	}
	if c.App.PollInterval <= 0 {
		return fmt.Errorf("app.poll_interval must be positive")
	}
	if c.App.MinConfidence < 0 || c.App.MinConfidence > 100 {
		return fmt.Errorf("app.min_confidence must be in [0, 100]")
	}
	if c.App.PortfolioUSD <= 0 {
		return fmt.Errorf("app.portfolio_usd must be positive")
	}
	if c.Pair.BaseMint == "" || c.Pair.QuoteMint == "" {
		return fmt.Errorf("pair mints are required")
	}
	if c.Pair.BaseDecimals < 0 || c.Pair.QuoteDecimals < 0 {
		return fmt.Errorf("pair decimals must not be negative")
	}

	switch c.Strategy.Name {
	case "", "meanrev", "mean-reversion":
		if err := c.Strategy.MeanRev.Validate(); err != nil {
			return fmt.Errorf("strategy.meanrev: %w", err)
		}
	case "threshold":
		if err := c.Strategy.Threshold.Validate(); err != nil {
			return fmt.Errorf("strategy.threshold: %w", err)
		}
	default:
		return fmt.Errorf("unknown strategy %q", c.Strategy.Name)
	}

	if err := c.Risk.Validate(); err != nil {
		return fmt.Errorf("risk: %w", err)
	}

	switch c.Journal.Type {
	case "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for csv")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for sqlite")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite', or 'none'")
	}

	if c.App.Mode == "live" && c.Wallet.RPCURL == "" {
		return fmt.Errorf("wallet.rpc_url is required in live mode")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr required when metrics are enabled")
	}
	return nil
}

// Default returns a paper-mode configuration for SOL/USDC.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Mode:          "paper",
			LogLevel:      "info",
			PollInterval:  60 * time.Second,
			MinConfidence: 70,
			PortfolioUSD:  1000,
		},
		Pair: PairConfig{
			Name:          "SOL/USDC",
			BaseMint:      "So11111111111111111111111111111111111111112",
			BaseDecimals:  9,
			QuoteMint:     "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			QuoteDecimals: 6,
		},
		Feed: FeedConfig{
			Timeout: 10 * time.Second,
		},
		Strategy: StrategyConfig{
			Name:      "meanrev",
			MeanRev:   strategies.MeanRevDefaults(),
			Threshold: strategies.ThresholdDefaults(),
		},
		Risk: risk.DefaultParameters(),
		Breaker: BreakerConfig{
			FailureThreshold: 5,
			Timeout:          time.Minute,
		},
		Journal: JournalConfig{
			Type:       "csv",
			TradesFile: "./trades.csv",
			EquityFile: "./equity.csv",
		},
		Wallet: WalletConfig{
			Commitment:    "confirmed",
			MinBalanceSOL: 0.05,
		},
		Metrics: MetricsConfig{
			Addr: ":9464",
		},
	}
}
