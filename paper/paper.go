// Package paper simulates swap execution against a virtual account so the
// full trading loop can run without touching the chain.
package paper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"solscalp/dex"
	"solscalp/pkg/id"
)

const epsilon = 1e-9

// Snapshot is a read-only view of the simulated account.
type Snapshot struct {
	CashUSD     float64
	TokenQty    float64
	AvgCost     float64
	RealizedPnL float64
}

// Executor fills orders instantly at the order price shifted by the
// configured slippage. It satisfies the same contract as dex.Executor.
type Executor struct {
	mu          sync.Mutex
	cash        float64
	tokenQty    float64
	avgCost     float64
	realizedPnL float64
	slippageBps int
	log         zerolog.Logger
	now         func() time.Time
}

func NewExecutor(startingCashUSD float64, slippageBps int, log zerolog.Logger) *Executor {
	return &Executor{
		cash:        startingCashUSD,
		slippageBps: slippageBps,
		log:         log,
		now:         time.Now,
	}
}

// SetClock overrides receipt timestamps; tests only.
func (e *Executor) SetClock(now func() time.Time) { e.now = now }

// Swap fills the order against the virtual account. Buys fill above the
// order price and sells below it, by the configured slippage.
func (e *Executor) Swap(_ context.Context, order dex.Order) (dex.Receipt, error) {
	if order.AmountUSD <= 0 {
		return dex.Receipt{}, errors.New("order amount must be positive")
	}
	if order.Price <= 0 {
		return dex.Receipt{}, errors.New("order price must be positive")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	slip := float64(e.slippageBps) / 10_000

	switch order.Side {
	case dex.Buy:
		if order.AmountUSD > e.cash+epsilon {
			return dex.Receipt{}, fmt.Errorf("insufficient cash: have $%.2f, need $%.2f", e.cash, order.AmountUSD)
		}
		fill := order.Price * (1 + slip)
		qty := order.AmountUSD / fill
		newQty := e.tokenQty + qty
		e.avgCost = (e.avgCost*e.tokenQty + order.AmountUSD) / newQty
		e.tokenQty = newQty
		e.cash -= order.AmountUSD
		return e.receipt(order, qty, fill), nil

	case dex.Sell:
		qty := order.AmountUSD / order.Price
		if qty > e.tokenQty+epsilon {
			return dex.Receipt{}, fmt.Errorf("insufficient position: have %.6f, need %.6f", e.tokenQty, qty)
		}
		fill := order.Price * (1 - slip)
		proceeds := qty * fill
		e.realizedPnL += (fill - e.avgCost) * qty
		e.tokenQty -= qty
		if e.tokenQty <= epsilon {
			e.tokenQty = 0
			e.avgCost = 0
		}
		e.cash += proceeds
		return e.receipt(order, qty, fill), nil

	default:
		return dex.Receipt{}, fmt.Errorf("unknown side %q", order.Side)
	}
}

func (e *Executor) receipt(order dex.Order, qty, fill float64) dex.Receipt {
	sig := "paper-" + id.New()
	e.log.Info().
		Str("side", string(order.Side)).
		Str("signature", sig).
		Float64("qty", qty).
		Float64("fill_price", fill).
		Msg("paper fill")

	return dex.Receipt{
		Signature:      sig,
		InAmount:       fmt.Sprintf("%.6f", order.AmountUSD),
		OutAmount:      fmt.Sprintf("%.6f", qty),
		PriceImpactPct: float64(e.slippageBps) / 100,
		Time:           e.now(),
	}
}

// Snapshot returns a copy of the account state.
func (e *Executor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		CashUSD:     e.cash,
		TokenQty:    e.tokenQty,
		AvgCost:     e.avgCost,
		RealizedPnL: e.realizedPnL,
	}
}

// Equity marks the account to market at the given price.
func (e *Executor) Equity(price float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cash + e.tokenQty*price
}
