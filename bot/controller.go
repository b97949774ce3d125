// Package bot runs the trading loop: poll price, analyze, gate through
// risk, execute, record.
package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"solscalp/dex"
	"solscalp/feed"
	"solscalp/journal"
	"solscalp/market"
	"solscalp/metrics"
	"solscalp/notify"
	"solscalp/pkg/id"
	"solscalp/risk"
	"solscalp/strategies"
)

// SwapExecutor submits one swap. All-or-nothing from the loop's point of
// view; partial fills are not modeled.
type SwapExecutor interface {
	Swap(ctx context.Context, order dex.Order) (dex.Receipt, error)
}

// BalanceProvider reads the wallet's native balance for minimum-balance
// gating.
type BalanceProvider interface {
	SOLBalance(ctx context.Context) (float64, error)
}

// Options configure one controller instance.
type Options struct {
	Pair           string
	Mint           string
	Mode           string
	PollInterval   time.Duration
	Backoff        time.Duration
	MinConfidence  float64
	TradeAmountUSD float64
	MaxSlippageBps int
	MinBalanceSOL  float64
	PortfolioUSD   float64
}

// Deps are the controller's collaborators. Journal and Notifier are
// optional; Balance may be nil when no wallet gating is wanted.
type Deps struct {
	Strategy strategies.Strategy
	Risk     *risk.Manager
	Breaker  *risk.Breaker
	Feed     feed.PriceFeed
	Executor SwapExecutor
	Balance  BalanceProvider
	Journal  journal.Journal
	Notifier notify.Notifier
	Log      zerolog.Logger
}

// Status is a snapshot of the loop for operators. All fields are copies.
type Status struct {
	Running    bool
	Mode       string
	Pair       string
	Position   strategies.Position
	LastPrice  float64
	LastSignal strategies.Signal
	Daily      risk.DailyStats
	Breaker    risk.BreakerStatus
}

// Controller drives one bot: a single goroutine owns the whole
// poll-analyze-execute cycle, so strategy, risk, and breaker state need no
// locking. After each iteration the loop publishes copies of that state
// under the snapshot mutex, and Status reads only the copies.
type Controller struct {
	opts Options
	deps Deps
	log  zerolog.Logger
	hist *market.History

	sleep func(ctx context.Context, d time.Duration) bool

	mu         sync.Mutex
	running    bool
	lastPrice  float64
	lastSignal strategies.Signal
	position   strategies.Position
	daily      risk.DailyStats
	breaker    risk.BreakerStatus
	portfolio  float64
}

func New(opts Options, deps Deps) (*Controller, error) {
	if deps.Strategy == nil || deps.Risk == nil || deps.Breaker == nil {
		return nil, errors.New("strategy, risk manager, and breaker are required")
	}
	if deps.Feed == nil || deps.Executor == nil {
		return nil, errors.New("price feed and swap executor are required")
	}
	if opts.PollInterval <= 0 {
		return nil, errors.New("poll interval must be positive")
	}
	if opts.Backoff <= 0 {
		opts.Backoff = opts.PollInterval / 4
		if opts.Backoff <= 0 {
			opts.Backoff = time.Second
		}
	}
	if opts.TradeAmountUSD <= 0 {
		return nil, errors.New("trade amount must be positive")
	}
	if deps.Journal == nil {
		deps.Journal = journal.Nop{}
	}

	log := deps.Log.With().Str("pair", opts.Pair).Str("mode", opts.Mode).Logger()

	c := &Controller{
		opts:      opts,
		deps:      deps,
		log:       log,
		hist:      market.NewHistory(sizingWindow),
		sleep:     sleepCtx,
		portfolio: opts.PortfolioUSD,
	}
	c.publishStatus()
	return c, nil
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// SetSleep replaces the inter-iteration wait; tests only.
func (c *Controller) SetSleep(fn func(ctx context.Context, d time.Duration) bool) {
	c.sleep = fn
}

// Run polls until ctx is cancelled. An in-flight iteration always completes
// before the loop observes cancellation.
func (c *Controller) Run(ctx context.Context) {
	c.setRunning(true)
	defer c.setRunning(false)

	c.log.Info().
		Dur("poll_interval", c.opts.PollInterval).
		Float64("min_confidence", c.opts.MinConfidence).
		Msg("trading loop started")

	for {
		if ctx.Err() != nil {
			c.log.Info().Msg("trading loop stopped")
			return
		}

		wait := c.opts.PollInterval
		if err := c.step(ctx); err != nil {
			wait = c.opts.Backoff
		}
		c.publishStatus()

		if !c.sleep(ctx, wait) {
			c.log.Info().Msg("trading loop stopped")
			return
		}
	}
}

// step runs one iteration. A non-nil return means the next wait should be
// the short backoff instead of the full poll interval.
func (c *Controller) step(ctx context.Context) error {
	sample, err := c.deps.Feed.Price(ctx, c.opts.Mint)
	if err != nil {
		metrics.PricePollsTotal.WithLabelValues("error").Inc()
		c.log.Warn().Err(err).Msg("price fetch failed")
		return err
	}
	metrics.PricePollsTotal.WithLabelValues("ok").Inc()
	metrics.CurrentPrice.Set(sample.Price)
	c.setLastPrice(sample.Price)
	c.hist.Record(sample.Price, sample.Time)
	c.log.Debug().
		Float64("price", sample.Price).
		Float64("feed_confidence", sample.Confidence).
		Msg("price sample")

	sig := c.deps.Strategy.Analyze(sample.Price, sample.Time)
	c.setLastSignal(sig)
	metrics.SignalsTotal.WithLabelValues(string(sig.Action)).Inc()

	if c.deps.Risk.ShouldEmergencyStop() {
		// Execution is suspended but the loop keeps running so status
		// stays observable and the stop can be lifted externally.
		c.log.Warn().Msg("emergency stop active, skipping execution")
		return nil
	}

	if !sig.Actionable() {
		return nil
	}
	if sig.Confidence < c.opts.MinConfidence {
		c.log.Debug().
			Float64("confidence", sig.Confidence).
			Float64("min", c.opts.MinConfidence).
			Msg("signal below confidence gate")
		return nil
	}

	if !c.walletFunded(ctx) {
		return nil
	}

	cond := strategies.AnalyzeConditions(c.hist.Prices())
	amount := sizeTrade(c.opts.TradeAmountUSD, c.portfolioValue(), cond,
		c.deps.Risk.Parameters().MaxPositionSizePct)

	target := expectedFill(sig, sample.Price, c.opts.MaxSlippageBps)
	assessment := c.deps.Risk.AssessTradeRisk(
		amount, sample.Price, target, c.portfolioValue(), c.opts.MaxSlippageBps)
	if !assessment.Approved {
		metrics.RiskRejectionsTotal.Inc()
		c.log.Warn().
			Int("score", assessment.Score).
			Strs("reasons", assessment.Reasons).
			Msg("trade rejected by risk gate")
		c.push(ctx, fmt.Sprintf("trade blocked (score %d): %v", assessment.Score, assessment.Reasons))
		return nil
	}

	return c.execute(ctx, sig, sample, amount)
}

// High-volatility sizing cutoff and reduction factor.
const (
	highVolatilityPct = 3.0
	volSizeFactor     = 0.5
)

// sizingWindow is how much price history feeds the conditions analyzer.
const sizingWindow = 2 * time.Minute

// sizeTrade reduces the base amount in volatile markets and clamps it to
// the position-size limit so sizing never argues with the risk gate.
func sizeTrade(base, portfolioUSD float64, cond strategies.Conditions, maxPositionPct float64) float64 {
	amount := base
	if cond.VolatilityPct > highVolatilityPct {
		amount *= volSizeFactor
	}
	if maxPositionPct > 0 && portfolioUSD > 0 {
		if limit := portfolioUSD * maxPositionPct / 100; amount > limit {
			amount = limit
		}
	}
	return amount
}

// execute submits the swap through the breaker and, only on success, rolls
// the confirmed trade into strategy and risk state.
func (c *Controller) execute(ctx context.Context, sig strategies.Signal, sample feed.Sample, amountUSD float64) error {
	order := dex.Order{
		Side:        dex.Side(sig.Action),
		AmountUSD:   amountUSD,
		Price:       sample.Price,
		SlippageBps: c.opts.MaxSlippageBps,
	}

	receipt, err := risk.Call(c.deps.Breaker, func() (dex.Receipt, error) {
		return c.deps.Executor.Swap(ctx, order)
	})
	c.updateBreakerGauge()
	if err != nil {
		if errors.Is(err, risk.ErrBreakerOpen) {
			c.log.Warn().Msg("execution suspended by circuit breaker")
			return err
		}
		metrics.SwapsTotal.WithLabelValues(string(order.Side), "error").Inc()
		c.log.Error().Err(err).Str("side", string(order.Side)).Msg("swap failed")
		return nil
	}
	metrics.SwapsTotal.WithLabelValues(string(order.Side), "ok").Inc()

	trade := risk.Trade{
		Time:        sample.Time,
		Side:        risk.Side(order.Side),
		Amount:      order.AmountUSD,
		Price:       sample.Price,
		SlippageBps: order.SlippageBps,
	}
	entry := journal.Entry{
		TradeID:   id.New(),
		Pair:      c.opts.Pair,
		Side:      string(order.Side),
		AmountUSD: order.AmountUSD,
		Price:     sample.Price,
		Signature: receipt.Signature,
		Reason:    sig.Reason,
		Mode:      c.opts.Mode,
		Time:      sample.Time,
	}

	switch order.Side {
	case dex.Buy:
		c.deps.Strategy.ExecuteBuy(sample.Price, sample.Time)
		c.push(ctx, fmt.Sprintf("bought $%.2f %s at %.4f (%s)",
			order.AmountUSD, c.opts.Pair, sample.Price, sig.Reason))
	case dex.Sell:
		profit, held := c.deps.Strategy.ExecuteSell(sample.Price, sig.Reason, sample.Time)
		trade.PnLPct = profit
		entry.ProfitPct = profit
		entry.HeldSeconds = held.Seconds()
		c.applyProfit(order.AmountUSD, profit)
		c.push(ctx, fmt.Sprintf("sold $%.2f %s at %.4f, %.2f%% after %s (%s)",
			order.AmountUSD, c.opts.Pair, sample.Price, profit, held, sig.Reason))
	}

	trade.PortfolioValueUSD = c.portfolioValue()
	c.deps.Risk.RecordTrade(trade)
	metrics.DailyPnL.Set(c.deps.Risk.Daily().TotalPnL)

	if err := c.deps.Journal.RecordTrade(entry); err != nil {
		c.log.Warn().Err(err).Msg("journal write failed")
	}
	if err := c.deps.Journal.RecordEquity(journal.EquitySnapshot{
		Time:   sample.Time,
		Equity: c.portfolioValue(),
	}); err != nil {
		c.log.Warn().Err(err).Msg("equity write failed")
	}
	return nil
}

// walletFunded gates execution on the minimum native balance. A read
// failure blocks this iteration only.
func (c *Controller) walletFunded(ctx context.Context) bool {
	if c.deps.Balance == nil || c.opts.MinBalanceSOL <= 0 {
		return true
	}
	bal, err := c.deps.Balance.SOLBalance(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("balance check failed")
		return false
	}
	if bal < c.opts.MinBalanceSOL {
		c.log.Warn().
			Float64("balance_sol", bal).
			Float64("min_sol", c.opts.MinBalanceSOL).
			Msg("wallet below minimum balance")
		return false
	}
	return true
}

// expectedFill estimates the execution price the order would clear at.
func expectedFill(sig strategies.Signal, price float64, slippageBps int) float64 {
	slip := float64(slippageBps) / 10_000
	if sig.Action == strategies.Buy {
		return price * (1 + slip)
	}
	return price * (1 - slip)
}

// push sends a notification; delivery failures never interrupt trading.
func (c *Controller) push(ctx context.Context, msg string) {
	if c.deps.Notifier == nil {
		return
	}
	if err := c.deps.Notifier.Notify(ctx, msg); err != nil {
		c.log.Warn().Err(err).Msg("notification failed")
	}
}

func (c *Controller) updateBreakerGauge() {
	if c.deps.Breaker.Status().Open {
		metrics.BreakerOpen.Set(1)
	} else {
		metrics.BreakerOpen.Set(0)
	}
}

func (c *Controller) applyProfit(amountUSD, profitPct float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.portfolio += amountUSD * profitPct / 100
}

func (c *Controller) portfolioValue() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.portfolio
}

func (c *Controller) setRunning(v bool) {
	c.mu.Lock()
	c.running = v
	c.mu.Unlock()
}

func (c *Controller) setLastPrice(p float64) {
	c.mu.Lock()
	c.lastPrice = p
	c.mu.Unlock()
}

func (c *Controller) setLastSignal(s strategies.Signal) {
	c.mu.Lock()
	c.lastSignal = s
	c.mu.Unlock()
}

// publishStatus copies strategy, risk, and breaker state into the
// snapshot fields. Called only from the goroutine that owns those
// collaborators; Status never touches them directly.
func (c *Controller) publishStatus() {
	position := c.deps.Strategy.Position()
	daily := c.deps.Risk.Daily()
	breaker := c.deps.Breaker.Status()

	c.mu.Lock()
	c.position = position
	c.daily = daily
	c.breaker = breaker
	c.mu.Unlock()
}

// Status returns a snapshot of the loop state as of the last completed
// iteration. Safe to call from any goroutine while the loop runs.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Status{
		Running:    c.running,
		Mode:       c.opts.Mode,
		Pair:       c.opts.Pair,
		Position:   c.position,
		LastPrice:  c.lastPrice,
		LastSignal: c.lastSignal,
		Daily:      c.daily,
		Breaker:    c.breaker,
	}
}
