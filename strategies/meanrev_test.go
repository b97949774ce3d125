package strategies

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newMeanRev(t *testing.T) *MeanReversion {
	t.Helper()
	cfg := MeanRevDefaults()
	require.NoError(t, cfg.Validate())
	return NewMeanReversion(cfg, zerolog.Nop())
}

func TestAnalyze_InsufficientHistory(t *testing.T) {
	t.Parallel()

	s := newMeanRev(t)
	sig := s.Analyze(100, t0)

	assert.Equal(t, None, sig.Action)
	assert.Zero(t, sig.Confidence)
	assert.Contains(t, sig.Reason, "insufficient")
}

func TestAnalyze_BuyOnDrop(t *testing.T) {
	t.Parallel()

	s := newMeanRev(t)
	s.Analyze(100, t0)
	sig := s.Analyze(98.8, t0.Add(time.Minute)) // -1.2% in 60s

	require.Equal(t, Buy, sig.Action)
	assert.InDelta(t, -1.2, sig.ChangePct, 1e-9)
	assert.Equal(t, time.Minute, sig.Window)
	// confidence = min(95, 50 + 1.2*10) = 62
	assert.InDelta(t, 62, sig.Confidence, 1e-9)
	assert.Contains(t, sig.Reason, "price drop detected")
}

func TestAnalyze_ConfidenceCap(t *testing.T) {
	t.Parallel()

	s := newMeanRev(t)
	s.Analyze(100, t0)
	sig := s.Analyze(80, t0.Add(time.Minute)) // -20%, uncapped would be 250

	require.Equal(t, Buy, sig.Action)
	assert.InDelta(t, 95, sig.Confidence, 1e-9)
}

func TestAnalyze_NoSignalBelowThreshold(t *testing.T) {
	t.Parallel()

	s := newMeanRev(t)
	s.Analyze(100, t0)
	sig := s.Analyze(99.95, t0.Add(time.Minute)) // -0.05%, threshold is 0.15

	assert.Equal(t, None, sig.Action)
	assert.InDelta(t, 30, sig.Confidence, 1e-9)
	assert.Contains(t, sig.Reason, "threshold")
}

func TestAnalyze_StopLoss(t *testing.T) {
	t.Parallel()

	s := newMeanRev(t)
	s.ExecuteBuy(100, t0)

	sig := s.Analyze(99, t0.Add(30*time.Second)) // -1% with stopLoss=1.0

	require.Equal(t, Sell, sig.Action)
	assert.InDelta(t, 90, sig.Confidence, 1e-9)
	assert.Contains(t, sig.Reason, "stop loss")
	assert.Equal(t, 100.0, sig.EntryPrice)
}

func TestAnalyze_TakeProfit(t *testing.T) {
	t.Parallel()

	s := newMeanRev(t)
	s.ExecuteBuy(100, t0)

	sig := s.Analyze(100.6, t0.Add(30*time.Second)) // +0.6% with takeProfit=0.5

	require.Equal(t, Sell, sig.Action)
	assert.InDelta(t, 85, sig.Confidence, 1e-9)
	assert.Contains(t, sig.Reason, "take profit")
}

func TestAnalyze_MaxHoldTime(t *testing.T) {
	t.Parallel()

	s := newMeanRev(t)
	s.ExecuteBuy(100, t0)

	// Flat price, but held past the 5 minute limit.
	sig := s.Analyze(100.1, t0.Add(6*time.Minute))

	require.Equal(t, Sell, sig.Action)
	assert.InDelta(t, 75, sig.Confidence, 1e-9)
	assert.Contains(t, sig.Reason, "max position time")
}

func TestAnalyze_ExitPriority_StopLossBeforeMaxHold(t *testing.T) {
	t.Parallel()

	s := newMeanRev(t)
	s.ExecuteBuy(100, t0)

	// Both stop-loss and max-hold are breached; stop-loss wins.
	sig := s.Analyze(98, t0.Add(10*time.Minute))

	require.Equal(t, Sell, sig.Action)
	assert.Contains(t, sig.Reason, "stop loss")
}

func TestAnalyze_HoldingPosition(t *testing.T) {
	t.Parallel()

	s := newMeanRev(t)
	s.ExecuteBuy(100, t0)

	sig := s.Analyze(100.2, t0.Add(time.Minute))

	assert.Equal(t, None, sig.Action)
	assert.InDelta(t, 50, sig.Confidence, 1e-9)
	assert.Contains(t, sig.Reason, "holding position")
}

func TestAnalyze_NoBuyWhileLong(t *testing.T) {
	t.Parallel()

	s := newMeanRev(t)
	s.Analyze(100, t0)
	s.ExecuteBuy(100, t0)

	// A drop that would trigger a buy while flat must not re-enter.
	sig := s.Analyze(99.7, t0.Add(time.Minute))
	assert.NotEqual(t, Buy, sig.Action)
}

func TestExecuteSell_NoPosition(t *testing.T) {
	t.Parallel()

	s := newMeanRev(t)
	profit, held := s.ExecuteSell(123, "whatever", t0)

	assert.Zero(t, profit)
	assert.Zero(t, held)
	assert.Equal(t, Flat, s.Position())
}

func TestExecuteBuySellRoundTrip(t *testing.T) {
	t.Parallel()

	s := newMeanRev(t)
	s.ExecuteBuy(100, t0)
	assert.Equal(t, Long, s.Position())
	assert.Equal(t, 100.0, s.EntryPrice())

	profit, held := s.ExecuteSell(101, "take profit", t0.Add(90*time.Second))
	assert.InDelta(t, 1.0, profit, 1e-9)
	assert.Equal(t, 90*time.Second, held)
	assert.Equal(t, Flat, s.Position())
	assert.Zero(t, s.EntryPrice())
}

func TestExecuteBuy_WhileLongIgnored(t *testing.T) {
	t.Parallel()

	s := newMeanRev(t)
	s.ExecuteBuy(100, t0)
	s.ExecuteBuy(50, t0.Add(time.Second)) // precondition violation; ignored

	assert.Equal(t, 100.0, s.EntryPrice())
}

func TestByName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"meanrev", "Mean-Reversion", ""} {
		s, err := ByName(name, MeanRevDefaults(), ThresholdDefaults(), zerolog.Nop())
		require.NoError(t, err)
		assert.IsType(t, &MeanReversion{}, s)
	}

	s, err := ByName("threshold", MeanRevDefaults(), ThresholdDefaults(), zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &Threshold{}, s)

	_, err = ByName("martingale", MeanRevDefaults(), ThresholdDefaults(), zerolog.Nop())
	assert.Error(t, err)
}
