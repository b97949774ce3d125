package risk

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSwap = errors.New("swap failed")

func newBreaker(t *testing.T, clock *time.Time) *Breaker {
	t.Helper()
	b := NewBreaker(3, 100*time.Millisecond, zerolog.Nop())
	b.SetClock(func() time.Time { return *clock })
	return b
}

func TestBreaker_OpensAtThreshold(t *testing.T) {
	t.Parallel()

	now := t0
	b := newBreaker(t, &now)

	for i := 0; i < 3; i++ {
		err := b.Do(func() error { return errSwap })
		// The operation's own error comes back unchanged.
		require.ErrorIs(t, err, errSwap)
	}
	assert.True(t, b.Status().Open)
	assert.Equal(t, 3, b.Status().ConsecutiveFailures)
}

func TestBreaker_RejectsWhileOpen(t *testing.T) {
	t.Parallel()

	now := t0
	b := newBreaker(t, &now)
	for i := 0; i < 3; i++ {
		b.Do(func() error { return errSwap })
	}

	now = now.Add(time.Millisecond)
	invoked := false
	err := b.Do(func() error { invoked = true; return nil })
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.False(t, invoked, "operation must not run while open")
}

func TestBreaker_TrialAfterTimeout(t *testing.T) {
	t.Parallel()

	now := t0
	b := newBreaker(t, &now)
	for i := 0; i < 3; i++ {
		b.Do(func() error { return errSwap })
	}

	now = now.Add(101 * time.Millisecond)
	invoked := false
	err := b.Do(func() error { invoked = true; return nil })
	assert.NoError(t, err)
	assert.True(t, invoked)
	assert.False(t, b.Status().Open)
	assert.Zero(t, b.Status().ConsecutiveFailures)
}

func TestBreaker_FailedTrialReopens(t *testing.T) {
	t.Parallel()

	now := t0
	b := newBreaker(t, &now)
	for i := 0; i < 3; i++ {
		b.Do(func() error { return errSwap })
	}

	// Trial fails: straight back to open with the timer restarted.
	now = now.Add(101 * time.Millisecond)
	err := b.Do(func() error { return errSwap })
	require.ErrorIs(t, err, errSwap)
	assert.True(t, b.Status().Open)

	now = now.Add(50 * time.Millisecond)
	assert.ErrorIs(t, b.Do(func() error { return nil }), ErrBreakerOpen)
}

func TestBreaker_SuccessResetsCount(t *testing.T) {
	t.Parallel()

	now := t0
	b := newBreaker(t, &now)

	b.Do(func() error { return errSwap })
	b.Do(func() error { return errSwap })
	require.NoError(t, b.Do(func() error { return nil }))
	assert.Zero(t, b.Status().ConsecutiveFailures)

	// Two more failures do not reach the threshold of three.
	b.Do(func() error { return errSwap })
	b.Do(func() error { return errSwap })
	assert.False(t, b.Status().Open)
}

func TestBreaker_Call(t *testing.T) {
	t.Parallel()

	now := t0
	b := newBreaker(t, &now)

	got, err := Call(b, func() (string, error) { return "sig", nil })
	require.NoError(t, err)
	assert.Equal(t, "sig", got)

	_, err = Call(b, func() (string, error) { return "", errSwap })
	assert.ErrorIs(t, err, errSwap)
}

func TestBreaker_Reset(t *testing.T) {
	t.Parallel()

	now := t0
	b := newBreaker(t, &now)
	for i := 0; i < 3; i++ {
		b.Do(func() error { return errSwap })
	}
	require.True(t, b.Status().Open)

	b.Reset()
	assert.False(t, b.Status().Open)
	assert.NoError(t, b.Do(func() error { return nil }))
}
