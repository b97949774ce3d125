package journal

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntry() Entry {
	return Entry{
		TradeID:     "01JX000000000000000000TEST",
		Pair:        "SOL/USDC",
		Side:        "sell",
		AmountUSD:   10,
		Price:       151.25,
		ProfitPct:   0.42,
		HeldSeconds: 95,
		Signature:   "paper-sig",
		Reason:      "take profit",
		Mode:        "paper",
		Time:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tradesPath, equityPath)
	require.NoError(t, err)

	e := sampleEntry()
	require.NoError(t, j.RecordTrade(e))
	require.NoError(t, j.RecordEquity(EquitySnapshot{
		Time: e.Time, Equity: 1010, CashUSD: 1000, TokenQty: 0.066,
	}))
	require.NoError(t, j.Close())

	tf, err := os.Open(tradesPath)
	require.NoError(t, err)
	defer tf.Close()

	rows, err := csv.NewReader(tf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "trade_id", rows[0][0])
	assert.Equal(t, e.TradeID, rows[1][0])
	assert.Equal(t, "SOL/USDC", rows[1][1])
	assert.Equal(t, "take profit", rows[1][8])
}

func TestSQLite_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	defer j.Close()

	e := sampleEntry()
	require.NoError(t, j.RecordTrade(e))
	require.NoError(t, j.RecordEquity(EquitySnapshot{Time: e.Time, Equity: 1010}))

	got, err := j.RecentTrades(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, e.TradeID, got[0].TradeID)
	assert.InDelta(t, e.ProfitPct, got[0].ProfitPct, 1e-9)
	assert.Equal(t, e.Reason, got[0].Reason)
}

func TestNop(t *testing.T) {
	t.Parallel()

	var j Journal = Nop{}
	assert.NoError(t, j.RecordTrade(Entry{}))
	assert.NoError(t, j.RecordEquity(EquitySnapshot{}))
	assert.NoError(t, j.Close())
}
