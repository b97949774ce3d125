// Package market holds price sample types and the rolling history buffer
// strategies read from.
package market

import "time"

// PricePoint is a single observed price for the traded pair.
// Immutable once recorded.
type PricePoint struct {
	Price float64
	Time  time.Time
}

// Change describes the move between the earliest and latest sample inside a
// lookback window.
type Change struct {
	Percent  float64
	Duration time.Duration
}

// DefaultMaxPoints bounds buffer memory regardless of sampling rate.
const DefaultMaxPoints = 100

// History is a short rolling buffer of price samples. It never holds points
// older than the window relative to the newest point, and never more than
// maxPoints entries. Timestamps come from the caller, so behavior is
// deterministic under test.
type History struct {
	window    time.Duration
	maxPoints int
	points    []PricePoint
}

// NewHistory creates a buffer pruning samples older than window.
func NewHistory(window time.Duration) *History {
	return &History{
		window:    window,
		maxPoints: DefaultMaxPoints,
	}
}

// Record appends a sample, drops everything older than window relative to
// the new sample, then clamps to the hard cap keeping the most recent.
func (h *History) Record(price float64, t time.Time) {
	h.points = append(h.points, PricePoint{Price: price, Time: t})

	cutoff := t.Add(-h.window)
	firstKept := 0
	for firstKept < len(h.points) && h.points[firstKept].Time.Before(cutoff) {
		firstKept++
	}
	if firstKept > 0 {
		h.points = append(h.points[:0], h.points[firstKept:]...)
	}

	if n := len(h.points); n > h.maxPoints {
		h.points = append(h.points[:0], h.points[n-h.maxPoints:]...)
	}
}

// ChangeOver reports the percentage move between the earliest sample within
// now-window and the latest sample. ok is false when fewer than two samples
// fall inside the window.
func (h *History) ChangeOver(window time.Duration, now time.Time) (Change, bool) {
	if len(h.points) < 2 {
		return Change{}, false
	}

	cutoff := now.Add(-window)
	latest := h.points[len(h.points)-1]

	var earliest *PricePoint
	for i := range h.points {
		p := &h.points[i]
		if p.Time.Before(cutoff) {
			continue
		}
		if earliest == nil || p.Time.Before(earliest.Time) {
			earliest = p
		}
	}
	if earliest == nil || earliest.Time.Equal(latest.Time) {
		return Change{}, false
	}

	return Change{
		Percent:  (latest.Price - earliest.Price) / earliest.Price * 100,
		Duration: latest.Time.Sub(earliest.Time),
	}, true
}

// Len reports how many samples are currently retained.
func (h *History) Len() int { return len(h.points) }

// Latest returns the newest sample, if any.
func (h *History) Latest() (PricePoint, bool) {
	if len(h.points) == 0 {
		return PricePoint{}, false
	}
	return h.points[len(h.points)-1], true
}

// Prices returns the retained prices oldest first. The slice is a copy.
func (h *History) Prices() []float64 {
	out := make([]float64, len(h.points))
	for i, p := range h.points {
		out[i] = p.Price
	}
	return out
}
