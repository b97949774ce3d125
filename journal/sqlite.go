package journal

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(e Entry) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, pair, side, amount_usd, price, profit_pct, held_seconds, signature, reason, mode, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.TradeID, e.Pair, e.Side, e.AmountUSD, e.Price,
		e.ProfitPct, e.HeldSeconds, e.Signature, e.Reason, e.Mode, e.Time,
	)
	return err
}

func (j *SQLite) RecordEquity(s EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity (time, equity, cash_usd, token_qty)
		VALUES (?, ?, ?, ?)`,
		s.Time, s.Equity, s.CashUSD, s.TokenQty,
	)
	return err
}

// RecentTrades returns up to limit entries, newest first.
func (j *SQLite) RecentTrades(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT trade_id, pair, side, amount_usd, price, profit_pct, held_seconds, signature, reason, mode, time
		FROM trades ORDER BY time DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.TradeID, &e.Pair, &e.Side, &e.AmountUSD, &e.Price,
			&e.ProfitPct, &e.HeldSeconds, &e.Signature, &e.Reason, &e.Mode, &e.Time); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
