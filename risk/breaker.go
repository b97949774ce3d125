package risk

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// ErrBreakerOpen is returned without invoking the wrapped operation while
// the breaker is open. Callers should back off rather than busy-retry.
var ErrBreakerOpen = errors.New("circuit breaker open: operations suspended")

const (
	// DefaultFailureThreshold opens the breaker after this many
	// consecutive failures.
	DefaultFailureThreshold = 5
	// DefaultBreakerTimeout is how long the breaker rejects before
	// allowing a half-open trial call.
	DefaultBreakerTimeout = time.Minute
)

// BreakerStatus is a snapshot of breaker state.
type BreakerStatus struct {
	Open                bool
	ConsecutiveFailures int
	LastFailure         time.Time
}

// Breaker wraps a fallible operation. Closed it passes calls through; after
// the failure threshold it opens and rejects immediately; once the timeout
// elapses it lets a single trial call through. A successful trial closes
// it, a failed trial re-opens it with the timer restarted.
//
// Not safe for concurrent use; it is owned by the single trading loop.
type Breaker struct {
	threshold int
	timeout   time.Duration
	log       zerolog.Logger
	now       func() time.Time

	open        bool
	halfOpen    bool
	failures    int
	lastFailure time.Time
}

func NewBreaker(threshold int, timeout time.Duration, log zerolog.Logger) *Breaker {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	if timeout <= 0 {
		timeout = DefaultBreakerTimeout
	}
	return &Breaker{
		threshold: threshold,
		timeout:   timeout,
		log:       log,
		now:       time.Now,
	}
}

// SetClock overrides wall-clock reads; tests only.
func (b *Breaker) SetClock(now func() time.Time) { b.now = now }

// Do runs op under breaker protection. The operation's own error is
// returned unchanged after bookkeeping, so callers always see the real
// cause; ErrBreakerOpen is returned only when op was never invoked.
func (b *Breaker) Do(op func() error) error {
	if b.open {
		if b.now().Sub(b.lastFailure) <= b.timeout {
			return ErrBreakerOpen
		}
		// Timeout elapsed: let one trial call through.
		b.open = false
		b.halfOpen = true
		b.failures = 0
	}

	if err := op(); err != nil {
		b.onFailure()
		return err
	}

	b.failures = 0
	b.halfOpen = false
	return nil
}

func (b *Breaker) onFailure() {
	if b.halfOpen {
		// Failed trial: straight back to open, timer restarted.
		b.failures = b.threshold
	} else {
		b.failures++
	}
	b.halfOpen = false
	b.lastFailure = b.now()

	if b.failures >= b.threshold && !b.open {
		b.open = true
		b.log.Error().Int("failures", b.failures).Msg("circuit breaker opened")
	}
}

// Call runs an operation returning a value under breaker protection.
func Call[T any](b *Breaker, op func() (T, error)) (T, error) {
	var out T
	err := b.Do(func() error {
		var opErr error
		out, opErr = op()
		return opErr
	})
	return out, err
}

// Status returns a snapshot of the breaker state.
func (b *Breaker) Status() BreakerStatus {
	return BreakerStatus{
		Open:                b.open,
		ConsecutiveFailures: b.failures,
		LastFailure:         b.lastFailure,
	}
}

// Reset force-closes the breaker and clears its counters.
func (b *Breaker) Reset() {
	b.open = false
	b.halfOpen = false
	b.failures = 0
	b.lastFailure = time.Time{}
}
