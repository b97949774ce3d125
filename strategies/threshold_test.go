package strategies

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newThreshold(t *testing.T) *Threshold {
	t.Helper()
	cfg := ThresholdDefaults()
	require.NoError(t, cfg.Validate())
	return NewThreshold(cfg, zerolog.Nop())
}

func TestThreshold_BuyBelowBand(t *testing.T) {
	t.Parallel()

	s := newThreshold(t)

	// First sample fixes the reference at 100. Calm market defaults give
	// spread base 0.5 * (1+0.015*2) = 0.515, tightened 30% sideways => ~0.36,
	// but clamp floor applies before tightening only via min; band is around
	// [100-s/2, 100+s/2].
	sig := s.Analyze(100, t0)
	assert.Equal(t, None, sig.Action)

	sig = s.Analyze(99.5, t0.Add(10*time.Second))
	require.Equal(t, Buy, sig.Action)
	assert.Contains(t, sig.Reason, "below buy threshold")
}

func TestThreshold_SellAboveBandOnlyWhileLong(t *testing.T) {
	t.Parallel()

	s := newThreshold(t)
	s.Analyze(100, t0)

	// Not long: a price above the band must not produce a sell.
	sig := s.Analyze(100.5, t0.Add(10*time.Second))
	assert.NotEqual(t, Sell, sig.Action)

	s.ExecuteBuy(99.5, t0.Add(20*time.Second))
	sig = s.Analyze(100.5, t0.Add(30*time.Second))
	require.Equal(t, Sell, sig.Action)
	assert.Contains(t, sig.Reason, "above sell threshold")
}

func TestThreshold_ReferenceSticky(t *testing.T) {
	t.Parallel()

	s := newThreshold(t)
	s.Analyze(100, t0)
	ref := s.current.reference

	// Small moves inside the refresh window leave the reference alone.
	s.Analyze(100.3, t0.Add(time.Minute))
	assert.Equal(t, ref, s.current.reference)

	// Past the refresh interval the reference re-anchors.
	s.Analyze(100.3, t0.Add(16*time.Minute))
	assert.Equal(t, 100.3, s.current.reference)
}

func TestThreshold_ReferenceRefreshOnDrift(t *testing.T) {
	t.Parallel()

	s := newThreshold(t)
	s.Analyze(100, t0)

	// A >5% move forces a refresh even inside the refresh window.
	s.Analyze(106, t0.Add(time.Minute))
	assert.Equal(t, 106.0, s.current.reference)
}

func TestThreshold_SellNoPositionNoop(t *testing.T) {
	t.Parallel()

	s := newThreshold(t)
	profit, held := s.ExecuteSell(100, "x", t0)
	assert.Zero(t, profit)
	assert.Zero(t, held)
}

func TestAnalyzeConditions_Defaults(t *testing.T) {
	t.Parallel()

	c := AnalyzeConditions([]float64{1, 2, 3})
	assert.Equal(t, TrendSideways, c.Trend)
	assert.InDelta(t, 1.5, c.VolatilityPct, 1e-9)
	assert.InDelta(t, 50, c.Confidence, 1e-9)
}

func TestAnalyzeConditions_Trend(t *testing.T) {
	t.Parallel()

	up := make([]float64, 12)
	down := make([]float64, 12)
	for i := range up {
		up[i] = 100 + float64(i)
		down[i] = 100 - float64(i)
	}

	assert.Equal(t, TrendUp, AnalyzeConditions(up).Trend)
	assert.Equal(t, TrendDown, AnalyzeConditions(down).Trend)

	flat := []float64{100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100}
	got := AnalyzeConditions(flat)
	assert.Equal(t, TrendSideways, got.Trend)
	assert.Zero(t, got.VolatilityPct)
}
