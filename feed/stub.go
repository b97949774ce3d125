package feed

import (
	"context"
	"sync"
	"time"
)

// Stub replays a scripted price sequence. Once the script is exhausted the
// last price repeats. Used by paper trading and tests.
type Stub struct {
	mu     sync.Mutex
	prices []float64
	errs   []error
	idx    int
	now    func() time.Time
}

func NewStub(prices ...float64) *Stub {
	return &Stub{prices: prices, now: time.Now}
}

// SetClock overrides sample timestamps; tests only.
func (s *Stub) SetClock(now func() time.Time) { s.now = now }

// Fail injects an error at the current script position.
func (s *Stub) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *Stub) Price(_ context.Context, _ string) (Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return Sample{}, err
	}
	if len(s.prices) == 0 {
		return Sample{}, ErrNoPrice
	}

	price := s.prices[s.idx]
	if s.idx < len(s.prices)-1 {
		s.idx++
	}
	return Sample{Price: price, Confidence: 100, Time: s.now()}, nil
}
