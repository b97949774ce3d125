package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Ordered(t *testing.T) {
	t.Parallel()

	prev := New()
	for i := 0; i < 100; i++ {
		next := New()
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestTimestamp(t *testing.T) {
	t.Parallel()

	before := time.Now().Add(-time.Second)
	ts, err := Timestamp(New())
	require.NoError(t, err)
	assert.True(t, ts.After(before))

	_, err = Timestamp("not-a-ulid")
	assert.Error(t, err)
}
