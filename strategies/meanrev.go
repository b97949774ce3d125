package strategies

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"solscalp/market"
)

// MeanRevConfig tunes the micro mean-reversion engine. Thresholds are
// fractions of a percent: the strategy targets high-frequency micro-moves.
type MeanRevConfig struct {
	DropThresholdPct   float64       `yaml:"drop_threshold_pct"`
	BounceThresholdPct float64       `yaml:"bounce_threshold_pct"`
	MonitorWindow      time.Duration `yaml:"monitor_window"`
	MaxPositionTime    time.Duration `yaml:"max_position_time"`
	TradeAmountUSD     float64       `yaml:"trade_amount_usd"`
	MaxSlippageBps     int           `yaml:"max_slippage_bps"`
	StopLossPct        float64       `yaml:"stop_loss_pct"`
	TakeProfitPct      float64       `yaml:"take_profit_pct"`
}

// MeanRevDefaults returns the stock configuration.
func MeanRevDefaults() MeanRevConfig {
	return MeanRevConfig{
		DropThresholdPct:   0.15,
		BounceThresholdPct: 0.15,
		MonitorWindow:      2 * time.Minute,
		MaxPositionTime:    5 * time.Minute,
		TradeAmountUSD:     10,
		MaxSlippageBps:     50,
		StopLossPct:        1.0,
		TakeProfitPct:      0.5,
	}
}

// Validate rejects configs that would never trade or never exit.
func (c MeanRevConfig) Validate() error {
	if c.DropThresholdPct <= 0 {
		return fmt.Errorf("drop_threshold_pct must be positive")
	}
	if c.MonitorWindow <= 0 {
		return fmt.Errorf("monitor_window must be positive")
	}
	if c.MaxPositionTime <= 0 {
		return fmt.Errorf("max_position_time must be positive")
	}
	if c.StopLossPct <= 0 || c.TakeProfitPct <= 0 {
		return fmt.Errorf("stop_loss_pct and take_profit_pct must be positive")
	}
	if c.TradeAmountUSD <= 0 {
		return fmt.Errorf("trade_amount_usd must be positive")
	}
	return nil
}

// MeanReversion buys short-window price drops and exits on stop-loss,
// take-profit, or a hold-time limit. State machine over {Flat, Long}.
type MeanReversion struct {
	cfg MeanRevConfig
	log zerolog.Logger

	hist       *market.History
	position   Position
	entryPrice float64
	entryTime  time.Time
}

func NewMeanReversion(cfg MeanRevConfig, log zerolog.Logger) *MeanReversion {
	return &MeanReversion{
		cfg:      cfg,
		log:      log,
		hist:     market.NewHistory(cfg.MonitorWindow),
		position: Flat,
	}
}

// Analyze records the sample and emits at most one signal. Exit checks run
// first and in priority order: stop-loss, take-profit, max hold time.
func (s *MeanReversion) Analyze(price float64, now time.Time) Signal {
	s.hist.Record(price, now)

	if s.position == Long {
		return s.analyzeExit(price, now)
	}
	return s.analyzeEntry(price, now)
}

func (s *MeanReversion) analyzeExit(price float64, now time.Time) Signal {
	pnl := (price - s.entryPrice) / s.entryPrice * 100
	held := now.Sub(s.entryTime)

	switch {
	case pnl <= -s.cfg.StopLossPct:
		return Signal{
			Action:     Sell,
			Reason:     fmt.Sprintf("stop loss triggered: %.2f%% loss", pnl),
			Confidence: 90,
			ChangePct:  pnl,
			Window:     held,
			Price:      price,
			EntryPrice: s.entryPrice,
		}
	case pnl >= s.cfg.TakeProfitPct:
		return Signal{
			Action:     Sell,
			Reason:     fmt.Sprintf("take profit triggered: %+.2f%% gain", pnl),
			Confidence: 85,
			ChangePct:  pnl,
			Window:     held,
			Price:      price,
			EntryPrice: s.entryPrice,
		}
	case held > s.cfg.MaxPositionTime:
		return Signal{
			Action:     Sell,
			Reason:     fmt.Sprintf("max position time exceeded: %.1f minutes", held.Minutes()),
			Confidence: 75,
			ChangePct:  pnl,
			Window:     held,
			Price:      price,
			EntryPrice: s.entryPrice,
		}
	}

	return Signal{
		Action:     None,
		Reason:     fmt.Sprintf("holding position: %+.2f%% from entry $%.2f", pnl, s.entryPrice),
		Confidence: 50,
		ChangePct:  pnl,
		Window:     held,
		Price:      price,
		EntryPrice: s.entryPrice,
	}
}

func (s *MeanReversion) analyzeEntry(price float64, now time.Time) Signal {
	chg, ok := s.hist.ChangeOver(s.cfg.MonitorWindow, now)
	if !ok {
		return Signal{
			Action:     None,
			Reason:     "insufficient price history for analysis",
			Confidence: 0,
			Price:      price,
		}
	}

	if chg.Percent <= -s.cfg.DropThresholdPct {
		confidence := 50 + abs(chg.Percent)*10
		if confidence > 95 {
			confidence = 95
		}
		return Signal{
			Action: Buy,
			Reason: fmt.Sprintf("price drop detected: %.2f%% in %.0fs",
				chg.Percent, chg.Duration.Seconds()),
			Confidence: confidence,
			ChangePct:  chg.Percent,
			Window:     chg.Duration,
			Price:      price,
		}
	}

	return Signal{
		Action: None,
		Reason: fmt.Sprintf("price change %+.2f%% in %.0fs (threshold -%.2f%%)",
			chg.Percent, chg.Duration.Seconds(), s.cfg.DropThresholdPct),
		Confidence: 30,
		ChangePct:  chg.Percent,
		Window:     chg.Duration,
		Price:      price,
	}
}

// ExecuteBuy marks the position long. Calling while already long is a
// caller bug; it is logged and ignored rather than corrupting entry state.
func (s *MeanReversion) ExecuteBuy(price float64, now time.Time) {
	if s.position == Long {
		s.log.Warn().Float64("price", price).Msg("ExecuteBuy while already long; ignored")
		return
	}
	s.position = Long
	s.entryPrice = price
	s.entryTime = now
	s.log.Info().Float64("entry", price).Msg("entered long")
}

// ExecuteSell closes the position and returns realized P&L percent and hold
// duration. A sell with no open position is a no-op returning zeros.
func (s *MeanReversion) ExecuteSell(price float64, reason string, now time.Time) (float64, time.Duration) {
	if s.position != Long {
		return 0, 0
	}

	profit := (price - s.entryPrice) / s.entryPrice * 100
	held := now.Sub(s.entryTime)

	s.log.Info().
		Float64("exit", price).
		Float64("profit_pct", profit).
		Dur("held", held).
		Str("reason", reason).
		Msg("exited long")

	s.position = Flat
	s.entryPrice = 0
	s.entryTime = time.Time{}

	return profit, held
}

// Position reports the current exposure state.
func (s *MeanReversion) Position() Position { return s.position }

// EntryPrice returns the open entry price, zero when flat.
func (s *MeanReversion) EntryPrice() float64 { return s.entryPrice }

// HistoryLen reports buffered sample count, for status reporting.
func (s *MeanReversion) HistoryLen() int { return s.hist.Len() }

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
