package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestChangeOver_TwoSamples(t *testing.T) {
	t.Parallel()

	h := NewHistory(2 * time.Minute)
	h.Record(100, t0)
	h.Record(98.8, t0.Add(time.Minute))

	chg, ok := h.ChangeOver(2*time.Minute, t0.Add(time.Minute))
	require.True(t, ok)
	assert.InDelta(t, -1.2, chg.Percent, 1e-9)
	assert.Equal(t, time.Minute, chg.Duration)
}

func TestChangeOver_InsufficientHistory(t *testing.T) {
	t.Parallel()

	h := NewHistory(2 * time.Minute)

	_, ok := h.ChangeOver(2*time.Minute, t0)
	assert.False(t, ok)

	h.Record(100, t0)
	_, ok = h.ChangeOver(2*time.Minute, t0)
	assert.False(t, ok)
}

func TestChangeOver_IgnoresSamplesOutsideWindow(t *testing.T) {
	t.Parallel()

	h := NewHistory(10 * time.Minute)
	h.Record(50, t0) // should not be used as the baseline
	h.Record(100, t0.Add(5*time.Minute))
	h.Record(101, t0.Add(6*time.Minute))

	now := t0.Add(6 * time.Minute)
	chg, ok := h.ChangeOver(2*time.Minute, now)
	require.True(t, ok)
	assert.InDelta(t, 1.0, chg.Percent, 1e-9)
	assert.Equal(t, time.Minute, chg.Duration)
}

func TestRecord_PrunesOldSamples(t *testing.T) {
	t.Parallel()

	h := NewHistory(time.Minute)
	h.Record(1, t0)
	h.Record(2, t0.Add(30*time.Second))
	h.Record(3, t0.Add(2*time.Minute)) // evicts both earlier points

	assert.Equal(t, 1, h.Len())
	latest, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, 3.0, latest.Price)
}

func TestRecord_HardCap(t *testing.T) {
	t.Parallel()

	h := NewHistory(24 * time.Hour)
	for i := 0; i < DefaultMaxPoints*3; i++ {
		h.Record(float64(i), t0.Add(time.Duration(i)*time.Second))
	}

	assert.Equal(t, DefaultMaxPoints, h.Len())

	// Most recent points survive.
	latest, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, float64(DefaultMaxPoints*3-1), latest.Price)
	prices := h.Prices()
	assert.Equal(t, float64(DefaultMaxPoints*2), prices[0])
}
