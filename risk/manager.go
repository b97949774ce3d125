// Package risk gates every prospective trade behind configured limits and
// tracks the rolling trade ledger, daily statistics, and drawdown.
package risk

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
)

// Parameters are the hard limits a trade is scored against. Immutable
// during a run unless explicitly replaced via UpdateParameters.
type Parameters struct {
	MaxPositionSizePct   float64       `yaml:"max_position_size_pct"`
	MaxDailyLossUSD      float64       `yaml:"max_daily_loss_usd"`
	MaxSlippageBps       int           `yaml:"max_slippage_bps"`
	Cooldown             time.Duration `yaml:"cooldown"`
	EmergencyStopLossPct float64       `yaml:"emergency_stop_loss_pct"`
	MaxDrawdownPct       float64       `yaml:"max_drawdown_pct"`
	MaxTradesPerDay      int           `yaml:"max_trades_per_day"`
	MinLiquidityUSD      float64       `yaml:"min_liquidity_usd"`
}

// DefaultParameters mirrors the conservative mainnet profile.
func DefaultParameters() Parameters {
	return Parameters{
		MaxPositionSizePct:   15,
		MaxDailyLossUSD:      50,
		MaxSlippageBps:       50,
		Cooldown:             15 * time.Second,
		EmergencyStopLossPct: 5,
		MaxDrawdownPct:       8,
		MaxTradesPerDay:      200,
		MinLiquidityUSD:      1000,
	}
}

// Validate rejects limits that would make the gate meaningless.
func (p Parameters) Validate() error {
	if p.MaxPositionSizePct <= 0 || p.MaxPositionSizePct > 100 {
		return fmt.Errorf("max_position_size_pct must be in (0, 100]")
	}
	if p.MaxDailyLossUSD <= 0 {
		return fmt.Errorf("max_daily_loss_usd must be positive")
	}
	if p.MaxSlippageBps <= 0 {
		return fmt.Errorf("max_slippage_bps must be positive")
	}
	if p.MaxTradesPerDay <= 0 {
		return fmt.Errorf("max_trades_per_day must be positive")
	}
	if p.EmergencyStopLossPct <= 0 || p.MaxDrawdownPct <= 0 {
		return fmt.Errorf("stop loss and drawdown limits must be positive")
	}
	return nil
}

// Side is the direction of a recorded trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Trade is one executed swap as the risk ledger sees it.
type Trade struct {
	Time              time.Time
	Side              Side
	Amount            float64
	Price             float64
	SlippageBps       int
	PnLPct            float64
	PortfolioValueUSD float64
	FeeEstimate       float64
}

// Assessment is the outcome of scoring one prospective trade. Rejection is
// a policy decision, not an error; Reasons are shown to the operator
// verbatim.
type Assessment struct {
	Score    int
	Reasons  []string
	Approved bool
}

// DailyStats aggregates the current day's activity. Reset lazily when a
// recorded trade carries a new date key.
type DailyStats struct {
	Date           string
	TotalTrades    int
	TotalPnL       float64
	MaxLoss        float64
	CurrentDrawPct float64
}

// Trades scoring above this are rejected.
const rejectScore = 70

// Penalty weights per violated check.
const (
	penaltyPositionSize = 30
	penaltySlippage     = 25
	penaltyTradeCount   = 40
	penaltyDailyLoss    = 50
	penaltyCooldown     = 20
	penaltyDrawdown     = 45
	penaltyVolatility   = 15
)

// maxLedger caps the retained trade history; eviction is strictly FIFO.
const maxLedger = 1000

// Manager owns the trade ledger and daily stats and scores prospective
// trades against Parameters. It is driven from the single trading loop;
// concurrent readers must use snapshot accessors (Report).
type Manager struct {
	params Parameters
	log    zerolog.Logger
	now    func() time.Time

	ledger []Trade
	daily  DailyStats
}

func NewManager(params Parameters, log zerolog.Logger) *Manager {
	m := &Manager{
		params: params,
		log:    log,
		now:    time.Now,
	}
	m.daily = m.freshDaily(m.now())
	return m
}

// SetClock overrides wall-clock reads; tests only.
func (m *Manager) SetClock(now func() time.Time) { m.now = now }

func (m *Manager) freshDaily(t time.Time) DailyStats {
	return DailyStats{Date: dateKey(t)}
}

func dateKey(t time.Time) string { return t.Format("2006-01-02") }

// AssessTradeRisk scores one prospective trade. Penalties are additive and
// the score is capped at 100; a trade is approved iff score < 70. Pure in
// the sense that identical inputs against an identical ledger produce an
// identical assessment.
func (m *Manager) AssessTradeRisk(amountUSD, currentPrice, targetPrice, portfolioUSD float64, slippageBps int) Assessment {
	var (
		score   int
		reasons []string
	)

	positionPct := amountUSD / portfolioUSD * 100
	if positionPct > m.params.MaxPositionSizePct {
		reasons = append(reasons, fmt.Sprintf("position size (%.2f%%) exceeds maximum (%.0f%%)",
			positionPct, m.params.MaxPositionSizePct))
		score += penaltyPositionSize
	}

	if slippageBps > m.params.MaxSlippageBps {
		reasons = append(reasons, fmt.Sprintf("slippage (%dbps) exceeds maximum (%dbps)",
			slippageBps, m.params.MaxSlippageBps))
		score += penaltySlippage
	}

	if m.daily.TotalTrades >= m.params.MaxTradesPerDay {
		reasons = append(reasons, fmt.Sprintf("daily trade limit (%d) reached", m.params.MaxTradesPerDay))
		score += penaltyTradeCount
	}

	if math.Abs(m.daily.TotalPnL) >= m.params.MaxDailyLossUSD {
		reasons = append(reasons, fmt.Sprintf("daily loss limit ($%.0f) exceeded", m.params.MaxDailyLossUSD))
		score += penaltyDailyLoss
	}

	if n := len(m.ledger); n > 0 {
		since := m.now().Sub(m.ledger[n-1].Time)
		if since < m.params.Cooldown {
			reasons = append(reasons, fmt.Sprintf("cooldown not met (%.0fs < %.0fs)",
				since.Seconds(), m.params.Cooldown.Seconds()))
			score += penaltyCooldown
		}
	}

	if m.daily.CurrentDrawPct >= m.params.MaxDrawdownPct {
		reasons = append(reasons, fmt.Sprintf("portfolio drawdown (%.2f%%) exceeds maximum (%.0f%%)",
			m.daily.CurrentDrawPct, m.params.MaxDrawdownPct))
		score += penaltyDrawdown
	}

	if move := math.Abs(targetPrice-currentPrice) / currentPrice; move > 0.05 {
		reasons = append(reasons, fmt.Sprintf("high price volatility detected (%.2f%%)", move*100))
		score += penaltyVolatility
	}

	if score > 100 {
		score = 100
	}

	return Assessment{
		Score:    score,
		Reasons:  reasons,
		Approved: score < rejectScore,
	}
}

// RecordTrade appends to the FIFO-capped ledger, rolls the daily stats on a
// date change, and recomputes drawdown across the retained ledger.
//
// The drawdown pass is O(n) per insert. At the 1000-entry cap that is a
// deliberate simplicity-over-performance choice, not an oversight.
func (m *Manager) RecordTrade(t Trade) {
	m.ledger = append(m.ledger, t)
	if len(m.ledger) > maxLedger {
		m.ledger = append(m.ledger[:0], m.ledger[len(m.ledger)-maxLedger:]...)
	}

	if key := dateKey(t.Time); key != m.daily.Date {
		m.daily = m.freshDaily(t.Time)
	}

	m.daily.TotalTrades++
	m.daily.TotalPnL += t.PnLPct
	if t.PnLPct < 0 && t.PnLPct < m.daily.MaxLoss {
		m.daily.MaxLoss = t.PnLPct
	}

	m.daily.CurrentDrawPct = m.maxDrawdown()
}

// maxDrawdown scans the ledger chronologically tracking the running peak
// portfolio value and the worst percentage drop from it.
func (m *Manager) maxDrawdown() float64 {
	if len(m.ledger) < 2 {
		return 0
	}

	peak := m.ledger[0].PortfolioValueUSD
	worst := 0.0
	for _, t := range m.ledger {
		if t.PortfolioValueUSD > peak {
			peak = t.PortfolioValueUSD
		}
		if peak > 0 {
			if dd := (peak - t.PortfolioValueUSD) / peak * 100; dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

// ShouldEmergencyStop reports whether trading must halt outright: drawdown
// past the emergency threshold or the daily loss limit blown. Callers skip
// the trade cycle entirely when true; the loop itself keeps running.
func (m *Manager) ShouldEmergencyStop() bool {
	var reasons []string

	if m.daily.CurrentDrawPct >= m.params.EmergencyStopLossPct {
		reasons = append(reasons, fmt.Sprintf("emergency stop loss triggered (%.2f%%)", m.daily.CurrentDrawPct))
	}
	if math.Abs(m.daily.TotalPnL) >= m.params.MaxDailyLossUSD {
		reasons = append(reasons, "daily loss limit exceeded")
	}

	if len(reasons) > 0 {
		m.log.Error().Strs("reasons", reasons).Msg("emergency stop")
		return true
	}
	return false
}

// Daily returns a copy of the current daily stats.
func (m *Manager) Daily() DailyStats { return m.daily }

// Parameters returns the configured limits.
func (m *Manager) Parameters() Parameters { return m.params }

// UpdateParameters replaces the limits at runtime.
func (m *Manager) UpdateParameters(p Parameters) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.params = p
	m.log.Info().Interface("params", p).Msg("risk parameters updated")
	return nil
}
