package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const solMint = "So11111111111111111111111111111111111111112"

func TestJupiter_Price(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, solMint, r.URL.Query().Get("ids"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"data":{"%s":{"id":"%s","price":"151.25","extraInfo":{"confidenceLevel":"high"}}}}`, solMint, solMint)
	}))
	defer srv.Close()

	j := NewJupiter(srv.URL, time.Second, zerolog.Nop())
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	j.SetClock(func() time.Time { return ts })

	got, err := j.Price(context.Background(), solMint)
	require.NoError(t, err)
	assert.InDelta(t, 151.25, got.Price, 1e-9)
	assert.Equal(t, 90.0, got.Confidence)
	assert.Equal(t, ts, got.Time)
}

func TestConfidenceScore(t *testing.T) {
	t.Parallel()

	cases := []struct {
		level string
		want  float64
	}{
		{"high", 90},
		{"medium", 60},
		{"low", 30},
		{"", 100},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, confidenceScore(tc.level), "level %q", tc.level)
	}
}

func TestJupiter_MissingMint(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{}}`)
	}))
	defer srv.Close()

	j := NewJupiter(srv.URL, time.Second, zerolog.Nop())
	_, err := j.Price(context.Background(), solMint)
	assert.ErrorIs(t, err, ErrNoPrice)
}

func TestJupiter_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	j := NewJupiter(srv.URL, time.Second, zerolog.Nop())
	_, err := j.Price(context.Background(), solMint)
	assert.Error(t, err)
}

func TestStub_ScriptAndRepeat(t *testing.T) {
	t.Parallel()

	s := NewStub(100, 99, 98)
	ctx := context.Background()

	for _, want := range []float64{100, 99, 98, 98} {
		got, err := s.Price(ctx, solMint)
		require.NoError(t, err)
		assert.Equal(t, want, got.Price)
	}
}

func TestStub_InjectedFailure(t *testing.T) {
	t.Parallel()

	s := NewStub(100)
	boom := errors.New("rpc down")
	s.Fail(boom)

	_, err := s.Price(context.Background(), solMint)
	assert.ErrorIs(t, err, boom)

	got, err := s.Price(context.Background(), solMint)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Price)
}
