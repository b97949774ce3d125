// Package strategies contains the signal engines that decide when the bot
// should enter or exit a position. Strategies own their position
// bookkeeping; the trading loop owns execution.
package strategies

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Action is what a signal asks the trading loop to do.
type Action string

const (
	Buy  Action = "buy"
	Sell Action = "sell"
	None Action = "none"
)

// Position is the strategy's view of its open exposure. At most one
// position per strategy instance; no pyramiding.
type Position string

const (
	Flat Position = "none"
	Long Position = "long"
)

// Signal is produced fresh on every Analyze call and never persisted.
type Signal struct {
	Action     Action
	Reason     string
	Confidence float64 // 0..100
	ChangePct  float64
	Window     time.Duration
	Price      float64
	EntryPrice float64 // zero when no open position
}

// Actionable reports whether the signal asks for a trade at all.
func (s Signal) Actionable() bool { return s.Action != None }

// Strategy is the contract the trading loop drives. Analyze consumes a new
// price sample and reports what the strategy wants; ExecuteBuy/ExecuteSell
// are called only after the corresponding swap actually confirmed, so the
// strategy's position always reflects on-chain reality.
type Strategy interface {
	Analyze(price float64, now time.Time) Signal
	ExecuteBuy(price float64, now time.Time)
	ExecuteSell(price float64, reason string, now time.Time) (profitPct float64, held time.Duration)
	Position() Position
}

// ByName builds a strategy from its config-file name.
func ByName(name string, mr MeanRevConfig, th ThresholdConfig, log zerolog.Logger) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "meanrev", "mean-reversion":
		return NewMeanReversion(mr, log), nil
	case "threshold":
		return NewThreshold(th, log), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: meanrev, threshold)", name)
	}
}
