package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/marquee/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 300*time.Millisecond, cfg.Dashboard.Debounce)
	assert.Equal(t, time.Duration(0), cfg.Dashboard.FetchTimeout)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDB.BaseURL)
	assert.Equal(t, "https://www.themoviedb.org", cfg.Browser.WebURL)
	assert.False(t, cfg.IsConfigured())
	assert.ErrorIs(t, cfg.Validate(), ErrMissingCredentials)

	windows := cfg.TrendingWindows()
	assert.Equal(t, domain.TimeWindowDay, windows[domain.CategoryTrendingDay])
	assert.Equal(t, domain.TimeWindowWeek, windows[domain.CategoryTrendingWeek])
}

func TestLoadConfigFrom_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
tmdb:
  api_key: abc123
  language: de-DE
dashboard:
  debounce: 150ms
  trending_week_window: Month
cache:
  dir: ""
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "abc123", cfg.TMDB.APIKey)
	assert.Equal(t, "de-DE", cfg.TMDB.Language)
	assert.Equal(t, 150*time.Millisecond, cfg.Dashboard.Debounce)
	assert.Equal(t, "", cfg.Cache.Dir)
	// untouched keys keep defaults
	assert.Equal(t, 10*time.Second, cfg.TMDB.Timeout)
	assert.NoError(t, cfg.Validate())

	// bad windows are carried through verbatim (lower-cased) for per-category reporting
	assert.Equal(t, domain.TimeWindow("month"), cfg.TrendingWindows()[domain.CategoryTrendingWeek])
}

func TestLoadConfigFrom_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tmdb:\n  api_key: from-file\n"), 0o644))
	t.Setenv("MARQUEE_TMDB_API_KEY", "from-env")
	t.Setenv("MARQUEE_LOGGING_LEVEL", "debug")

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.TMDB.APIKey)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfigFrom_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfigFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSaveConfigTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.TMDB.AccessToken = "token"
	cfg.Dashboard.Debounce = 500 * time.Millisecond
	cfg.Metrics.Listen = ":9090"

	require.NoError(t, SaveConfigTo(path, cfg))

	loaded, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "token", loaded.TMDB.AccessToken)
	assert.Equal(t, 500*time.Millisecond, loaded.Dashboard.Debounce)
	assert.Equal(t, ":9090", loaded.Metrics.Listen)
	assert.True(t, loaded.IsConfigured())
}
