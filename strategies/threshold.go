package strategies

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"solscalp/market"
)

// ThresholdConfig tunes the fixed-threshold engine. The spread around the
// reference price widens with volatility and is clamped to [MinSpreadUSD,
// MaxSpreadUSD].
type ThresholdConfig struct {
	BaseSpreadUSD        float64       `yaml:"base_spread_usd"`
	VolatilityMultiplier float64       `yaml:"volatility_multiplier"`
	MinSpreadUSD         float64       `yaml:"min_spread_usd"`
	MaxSpreadUSD         float64       `yaml:"max_spread_usd"`
	RefreshInterval      time.Duration `yaml:"refresh_interval"`
	RefreshDriftPct      float64       `yaml:"refresh_drift_pct"`
	MonitorWindow        time.Duration `yaml:"monitor_window"`
	TradeAmountUSD       float64       `yaml:"trade_amount_usd"`
	MaxSlippageBps       int           `yaml:"max_slippage_bps"`
}

// ThresholdDefaults returns the stock configuration.
func ThresholdDefaults() ThresholdConfig {
	return ThresholdConfig{
		BaseSpreadUSD:        0.50,
		VolatilityMultiplier: 2.0,
		MinSpreadUSD:         0.30,
		MaxSpreadUSD:         2.00,
		RefreshInterval:      15 * time.Minute,
		RefreshDriftPct:      5.0,
		MonitorWindow:        2 * time.Minute,
		TradeAmountUSD:       10,
		MaxSlippageBps:       50,
	}
}

// Validate rejects degenerate spread settings.
func (c ThresholdConfig) Validate() error {
	if c.BaseSpreadUSD <= 0 {
		return fmt.Errorf("base_spread_usd must be positive")
	}
	if c.MinSpreadUSD <= 0 || c.MaxSpreadUSD < c.MinSpreadUSD {
		return fmt.Errorf("spread clamp must satisfy 0 < min <= max")
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be positive")
	}
	if c.TradeAmountUSD <= 0 {
		return fmt.Errorf("trade_amount_usd must be positive")
	}
	return nil
}

type thresholds struct {
	buy       float64
	sell      float64
	reference float64
	updated   time.Time
}

// Threshold buys below and sells above a band around a fixed reference
// price. The reference is deliberately sticky: it moves only on a timer or
// after a large drift, never on every tick, so the band cannot chase the
// price it is supposed to fence.
type Threshold struct {
	cfg ThresholdConfig
	log zerolog.Logger

	hist    *market.History
	current *thresholds

	position   Position
	entryPrice float64
	entryTime  time.Time
}

func NewThreshold(cfg ThresholdConfig, log zerolog.Logger) *Threshold {
	return &Threshold{
		cfg:      cfg,
		log:      log,
		hist:     market.NewHistory(cfg.MonitorWindow),
		position: Flat,
	}
}

func (s *Threshold) band(price float64, cond Conditions, now time.Time) thresholds {
	if s.current != nil {
		sinceUpdate := now.Sub(s.current.updated)
		driftPct := abs(price-s.current.reference) / s.current.reference * 100
		if sinceUpdate <= s.cfg.RefreshInterval && driftPct <= s.cfg.RefreshDriftPct {
			return *s.current
		}
		s.log.Debug().
			Float64("old_ref", s.current.reference).
			Float64("new_ref", price).
			Float64("drift_pct", driftPct).
			Msg("refreshing thresholds")
	}

	spread := s.cfg.BaseSpreadUSD * (1 + cond.VolatilityPct/100*s.cfg.VolatilityMultiplier)
	if spread < s.cfg.MinSpreadUSD {
		spread = s.cfg.MinSpreadUSD
	}
	if spread > s.cfg.MaxSpreadUSD {
		spread = s.cfg.MaxSpreadUSD
	}
	// Calm sideways markets get a tighter band for more frequent trades.
	if cond.Trend == TrendSideways && cond.VolatilityPct < 2 {
		spread *= 0.7
	}

	s.current = &thresholds{
		buy:       price - spread/2,
		sell:      price + spread/2,
		reference: price,
		updated:   now,
	}
	return *s.current
}

// Analyze compares the sample to the sticky band. Entries only while flat,
// exits only while long; trend filters block buying into a falling market
// and selling into a rising one.
func (s *Threshold) Analyze(price float64, now time.Time) Signal {
	s.hist.Record(price, now)
	cond := AnalyzeConditions(s.hist.Prices())
	band := s.band(price, cond, now)

	switch {
	case s.position == Flat && price <= band.buy && cond.Trend != TrendDown:
		return Signal{
			Action: Buy,
			Reason: fmt.Sprintf("price $%.2f below buy threshold $%.2f (ref $%.2f)",
				price, band.buy, band.reference),
			Confidence: cond.Confidence,
			ChangePct:  (price - band.reference) / band.reference * 100,
			Price:      price,
		}
	case s.position == Long && price >= band.sell && cond.Trend != TrendUp:
		return Signal{
			Action: Sell,
			Reason: fmt.Sprintf("price $%.2f above sell threshold $%.2f (ref $%.2f)",
				price, band.sell, band.reference),
			Confidence: cond.Confidence,
			ChangePct:  (price - s.entryPrice) / s.entryPrice * 100,
			Price:      price,
			EntryPrice: s.entryPrice,
		}
	}

	return Signal{
		Action: None,
		Reason: fmt.Sprintf("price $%.2f inside band [$%.2f, $%.2f], trend %s",
			price, band.buy, band.sell, cond.Trend),
		Confidence: 30,
		Price:      price,
	}
}

func (s *Threshold) ExecuteBuy(price float64, now time.Time) {
	if s.position == Long {
		s.log.Warn().Float64("price", price).Msg("ExecuteBuy while already long; ignored")
		return
	}
	s.position = Long
	s.entryPrice = price
	s.entryTime = now
}

func (s *Threshold) ExecuteSell(price float64, reason string, now time.Time) (float64, time.Duration) {
	if s.position != Long {
		return 0, 0
	}
	profit := (price - s.entryPrice) / s.entryPrice * 100
	held := now.Sub(s.entryTime)
	s.position = Flat
	s.entryPrice = 0
	s.entryTime = time.Time{}
	return profit, held
}

func (s *Threshold) Position() Position { return s.position }
