// Package journal persists executed trades and equity snapshots so runs
// can be audited after the fact.
package journal

import "time"

// Entry is one completed swap as written to the journal.
type Entry struct {
	TradeID     string
	Pair        string
	Side        string
	AmountUSD   float64
	Price       float64
	ProfitPct   float64
	HeldSeconds float64
	Signature   string
	Reason      string
	Mode        string
	Time        time.Time
}

// EquitySnapshot is a periodic mark of the account value.
type EquitySnapshot struct {
	Time     time.Time
	Equity   float64
	CashUSD  float64
	TokenQty float64
}

type Journal interface {
	RecordTrade(Entry) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Nop discards everything. Used when journaling is disabled.
type Nop struct{}

func (Nop) RecordTrade(Entry) error           { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) Close() error                      { return nil }
