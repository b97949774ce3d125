// Package metrics exposes Prometheus counters and gauges for the trading
// loop.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PricePollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "solscalp_price_polls_total", Help: "Price feed polls by outcome"},
		[]string{"outcome"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "solscalp_signals_total", Help: "Strategy signals by action"},
		[]string{"action"},
	)
	SwapsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "solscalp_swaps_total", Help: "Swaps submitted by side and outcome"},
		[]string{"side", "outcome"},
	)
	RiskRejectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "solscalp_risk_rejections_total", Help: "Trades rejected by the risk gate"},
	)
	BreakerOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "solscalp_breaker_open", Help: "1 while the execution circuit breaker is open"},
	)
	CurrentPrice = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "solscalp_current_price", Help: "Last observed token price in USD"},
	)
	DailyPnL = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "solscalp_daily_pnl", Help: "Running daily profit and loss"},
	)
)

func init() {
	prometheus.MustRegister(
		PricePollsTotal, SignalsTotal, SwapsTotal,
		RiskRejectionsTotal, BreakerOpen, CurrentPrice, DailyPnL,
	)
}

// Serve exposes /metrics on addr in the background. The caller owns
// shutdown.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
