package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 2.0, cfg.ZScoreThreshold)
	assert.NotEmpty(t, cfg.HistoryDir)
	assert.NotEmpty(t, cfg.DBPath)

	d, err := cfg.ParseTargetDate()
	require.NoError(t, err)
	assert.False(t, d.IsZero())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engpulse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
history_dir: /var/lib/engpulse/history
z_score_threshold: 2.5
target_date: "2027-06-30"
api:
  addr: ":9090"
  rate_limit_enabled: false
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/engpulse/history", cfg.HistoryDir)
	assert.Equal(t, 2.5, cfg.ZScoreThreshold)
	assert.Equal(t, ":9090", cfg.API.Addr)
	assert.False(t, cfg.API.RateLimitEnabled)
	// Untouched fields keep their defaults
	assert.Equal(t, "data/metrics.db", cfg.DBPath)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("history_dir: [nope"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)

	badDate := filepath.Join(t.TempDir(), "date.yaml")
	require.NoError(t, os.WriteFile(badDate, []byte(`target_date: "soon"`), 0644))
	_, err = Load(badDate)
	assert.Error(t, err)
}

func TestRateLimitWindowDuration(t *testing.T) {
	api := APIConfig{RateLimitWindow: "30s"}
	assert.Equal(t, 30*time.Second, api.RateLimitWindowDuration())

	api.RateLimitWindow = "bogus"
	assert.Equal(t, time.Minute, api.RateLimitWindowDuration())
}
