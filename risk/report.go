package risk

import "math"

// Health labels the portfolio condition derived from recent performance.
type Health string

const (
	Healthy  Health = "healthy"
	Warning  Health = "warning"
	Critical Health = "critical"
)

// PortfolioHealth is the derived assessment included in every report.
type PortfolioHealth struct {
	Status      Health
	WinRate     float64
	AvgReturn   float64
	SharpeRatio float64
	Issues      []string
}

// Report is a snapshot for operators: current daily stats, the limits in
// force, the last few trades, and a health assessment. All fields are
// copies; holding a Report never aliases Manager state.
type Report struct {
	Daily        DailyStats
	Parameters   Parameters
	RecentTrades []Trade
	Health       PortfolioHealth
}

const recentTradeCount = 10

// Report builds the operator snapshot.
func (m *Manager) Report() Report {
	start := len(m.ledger) - recentTradeCount
	if start < 0 {
		start = 0
	}
	recent := make([]Trade, len(m.ledger)-start)
	copy(recent, m.ledger[start:])

	return Report{
		Daily:        m.daily,
		Parameters:   m.params,
		RecentTrades: recent,
		Health:       m.health(),
	}
}

func (m *Manager) health() PortfolioHealth {
	winRate := m.winRate()

	status := Healthy
	var issues []string

	if m.daily.CurrentDrawPct > m.params.MaxDrawdownPct*0.8 {
		status = Warning
		issues = append(issues, "high drawdown detected")
	}
	if winRate < 0.4 {
		status = Warning
		issues = append(issues, "low win rate")
	}
	if m.daily.CurrentDrawPct >= m.params.EmergencyStopLossPct {
		status = Critical
		issues = append(issues, "emergency stop loss threshold reached")
	}

	return PortfolioHealth{
		Status:      status,
		WinRate:     winRate,
		AvgReturn:   m.avgReturn(),
		SharpeRatio: m.sharpeRatio(),
		Issues:      issues,
	}
}

func (m *Manager) winRate() float64 {
	if len(m.ledger) == 0 {
		return 0
	}
	wins := 0
	for _, t := range m.ledger {
		if t.PnLPct > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(m.ledger))
}

func (m *Manager) avgReturn() float64 {
	if len(m.ledger) == 0 {
		return 0
	}
	var total float64
	for _, t := range m.ledger {
		total += t.PnLPct
	}
	return total / float64(len(m.ledger))
}

// sharpeRatio is the mean return over its standard deviation; a dispersion
// measure, not an annualized Sharpe.
func (m *Manager) sharpeRatio() float64 {
	if len(m.ledger) < 2 {
		return 0
	}

	avg := m.avgReturn()
	var variance float64
	for _, t := range m.ledger {
		variance += (t.PnLPct - avg) * (t.PnLPct - avg)
	}
	variance /= float64(len(m.ledger))

	if stddev := math.Sqrt(variance); stddev > 0 {
		return avg / stddev
	}
	return 0
}
