package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Valid(t *testing.T) {
	t.Parallel()

	require.NoError(t, Default().Validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  mode: paper
  poll_interval: 5s
  min_confidence: 80
strategy:
  name: meanrev
  meanrev:
    drop_threshold_pct: 0.25
risk:
  max_daily_loss_usd: 25
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.App.PollInterval)
	assert.Equal(t, 80.0, cfg.App.MinConfidence)
	assert.Equal(t, 0.25, cfg.Strategy.MeanRev.DropThresholdPct)
	assert.Equal(t, 25.0, cfg.Risk.MaxDailyLossUSD)
	// Untouched sections keep their defaults.
	assert.Equal(t, "SOL/USDC", cfg.Pair.Name)
	assert.Equal(t, "csv", cfg.Journal.Type)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		yaml string
	}{
		{"bad mode", "app:\n  mode: shadow\n"},
		{"zero poll", "app:\n  mode: paper\n  poll_interval: 0s\n"},
		{"bad strategy", "strategy:\n  name: momentum\n"},
		{"bad journal", "journal:\n  type: parquet\n"},
		{"sqlite without path", "journal:\n  type: sqlite\n  db_path: \"\"\n"},
		{"live without rpc", "app:\n  mode: live\n"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.yaml), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.App.MinConfidence = 65

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 65.0, got.App.MinConfidence)
}
