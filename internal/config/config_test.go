package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsUsable(t *testing.T) {
	cfg := Default()

	assert.NotEmpty(t, cfg.Filter.ChainDenylist)
	assert.NotEmpty(t, cfg.Filter.CoffeeTerms)
	assert.Positive(t, cfg.Discovery.MaxAPICalls)
	assert.Positive(t, cfg.Discovery.ResultCap)
	assert.True(t, cfg.Region.Bounds.Contains(cfg.Grid.TestCenterLat, cfg.Grid.TestCenterLng),
		"test center must sit inside the service region")

	fc, err := cfg.FilterConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg.Region.Bounds, fc.Region.Bounds)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brewscout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
discovery:
  max_api_calls: 42
  rate_limit_ms: 250
grid:
  rows: 3
  cols: 3
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 42, cfg.Discovery.MaxAPICalls)
	assert.Equal(t, 250*time.Millisecond, cfg.DiscoveryConfig().RateLimit)
	assert.Equal(t, 3, cfg.Grid.Rows)
	// Untouched sections keep their defaults.
	assert.Equal(t, "coffee", cfg.Discovery.Keyword)
	assert.NotEmpty(t, cfg.Filter.DeniedTypes)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
