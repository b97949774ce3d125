package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSV struct {
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

func NewCSV(tradesPath, equityPath string) (*CSV, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	ew := csv.NewWriter(ef)

	if err := tw.Write([]string{"trade_id", "pair", "side", "amount_usd", "price", "profit_pct", "held_seconds", "signature", "reason", "mode", "time"}); err != nil {
		return nil, err
	}
	if err := ew.Write([]string{"time", "equity", "cash_usd", "token_qty"}); err != nil {
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSV{tw, ew, tf, ef}, nil
}

func (j *CSV) RecordTrade(e Entry) error {
	if err := j.trades.Write([]string{
		e.TradeID,
		e.Pair,
		e.Side,
		f(e.AmountUSD),
		f(e.Price),
		f(e.ProfitPct),
		f(e.HeldSeconds),
		e.Signature,
		e.Reason,
		e.Mode,
		e.Time.Format(time.RFC3339),
	}); err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSV) RecordEquity(s EquitySnapshot) error {
	if err := j.equity.Write([]string{
		s.Time.Format(time.RFC3339),
		f(s.Equity),
		f(s.CashUSD),
		f(s.TokenQty),
	}); err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSV) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}
	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.ef.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
