package journal

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	pair TEXT NOT NULL,
	side TEXT NOT NULL,
	amount_usd REAL NOT NULL,
	price REAL NOT NULL,
	profit_pct REAL NOT NULL,
	held_seconds REAL NOT NULL,
	signature TEXT NOT NULL,
	reason TEXT NOT NULL,
	mode TEXT NOT NULL,
	time DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	time DATETIME NOT NULL,
	equity REAL NOT NULL,
	cash_usd REAL NOT NULL,
	token_qty REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_time ON trades(time);
CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);
`
