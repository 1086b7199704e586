package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mmcdole/marquee/internal/domain"
)

// ErrMissingCredentials indicates neither an API key nor an access token is configured
var ErrMissingCredentials = errors.New("tmdb api_key or access_token must be set")

// Config holds all application configuration
type Config struct {
	TMDB      TMDBConfig      `mapstructure:"tmdb"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Browser   BrowserConfig   `mapstructure:"browser"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// TMDBConfig holds movie API configuration
type TMDBConfig struct {
	APIKey            string        `mapstructure:"api_key"`      // v3 API key (query param)
	AccessToken       string        `mapstructure:"access_token"` // v4 read token (bearer), preferred when set
	BaseURL           string        `mapstructure:"base_url"`
	ImageBaseURL      string        `mapstructure:"image_base_url"`
	Language          string        `mapstructure:"language"`
	Region            string        `mapstructure:"region"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// DashboardConfig holds dashboard and search behavior
type DashboardConfig struct {
	Debounce           time.Duration `mapstructure:"debounce"`
	FetchTimeout       time.Duration `mapstructure:"fetch_timeout"` // 0 = wait for the API indefinitely
	TrendingDayWindow  string        `mapstructure:"trending_day_window"`
	TrendingWeekWindow string        `mapstructure:"trending_week_window"`
	RefreshOnStart     bool          `mapstructure:"refresh_on_start"`
}

// CacheConfig holds local and remote cache configuration
type CacheConfig struct {
	Dir      string        `mapstructure:"dir"`       // empty = memory only
	RedisURL string        `mapstructure:"redis_url"` // optional shared response cache
	TTL      time.Duration `mapstructure:"ttl"`
}

// MetricsConfig holds the optional prometheus endpoint
type MetricsConfig struct {
	Listen string `mapstructure:"listen"`
}

// BrowserConfig controls how movie pages are opened
type BrowserConfig struct {
	Command string   `mapstructure:"command"` // empty = system default
	Args    []string `mapstructure:"args"`
	WebURL  string   `mapstructure:"web_url"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{
			BaseURL:           "https://api.themoviedb.org/3",
			ImageBaseURL:      "https://image.tmdb.org/t/p/w500",
			Language:          "en-US",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 40,
			Burst:             10,
		},
		Dashboard: DashboardConfig{
			Debounce:           300 * time.Millisecond,
			TrendingDayWindow:  string(domain.TimeWindowDay),
			TrendingWeekWindow: string(domain.TimeWindowWeek),
			RefreshOnStart:     true,
		},
		Cache: CacheConfig{
			Dir: defaultCachePath(),
			TTL: 30 * time.Minute,
		},
		Browser: BrowserConfig{
			WebURL: "https://www.themoviedb.org",
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// TrendingWindows returns the configured time window per trending category
func (c *Config) TrendingWindows() map[domain.Category]domain.TimeWindow {
	return map[domain.Category]domain.TimeWindow{
		domain.CategoryTrendingDay:  domain.TimeWindow(strings.ToLower(strings.TrimSpace(c.Dashboard.TrendingDayWindow))),
		domain.CategoryTrendingWeek: domain.TimeWindow(strings.ToLower(strings.TrimSpace(c.Dashboard.TrendingWeekWindow))),
	}
}

// IsConfigured returns true if credentials for the movie API are set
func (c *Config) IsConfigured() bool {
	return c.TMDB.APIKey != "" || c.TMDB.AccessToken != ""
}

// Validate reports configuration that prevents the app from starting.
// Bad trending windows are not reported here; they surface per category on the dashboard.
func (c *Config) Validate() error {
	if !c.IsConfigured() {
		return ErrMissingCredentials
	}
	if c.Dashboard.Debounce < 0 {
		return fmt.Errorf("dashboard.debounce must not be negative, got %s", c.Dashboard.Debounce)
	}
	if c.TMDB.RequestsPerSecond < 0 {
		return fmt.Errorf("tmdb.requests_per_second must not be negative, got %v", c.TMDB.RequestsPerSecond)
	}
	return nil
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "marquee", "marquee.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "marquee", "marquee.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "marquee")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "marquee")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "marquee", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "marquee", "cache")
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Environment variable overrides, e.g. MARQUEE_TMDB_API_KEY
	v.SetEnvPrefix("MARQUEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper knows about
	bindDefaults(v, DefaultConfig())
	return v
}

func bindDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("tmdb.api_key", cfg.TMDB.APIKey)
	v.SetDefault("tmdb.access_token", cfg.TMDB.AccessToken)
	v.SetDefault("tmdb.base_url", cfg.TMDB.BaseURL)
	v.SetDefault("tmdb.image_base_url", cfg.TMDB.ImageBaseURL)
	v.SetDefault("tmdb.language", cfg.TMDB.Language)
	v.SetDefault("tmdb.region", cfg.TMDB.Region)
	v.SetDefault("tmdb.timeout", cfg.TMDB.Timeout)
	v.SetDefault("tmdb.requests_per_second", cfg.TMDB.RequestsPerSecond)
	v.SetDefault("tmdb.burst", cfg.TMDB.Burst)

	v.SetDefault("dashboard.debounce", cfg.Dashboard.Debounce)
	v.SetDefault("dashboard.fetch_timeout", cfg.Dashboard.FetchTimeout)
	v.SetDefault("dashboard.trending_day_window", cfg.Dashboard.TrendingDayWindow)
	v.SetDefault("dashboard.trending_week_window", cfg.Dashboard.TrendingWeekWindow)
	v.SetDefault("dashboard.refresh_on_start", cfg.Dashboard.RefreshOnStart)

	v.SetDefault("cache.dir", cfg.Cache.Dir)
	v.SetDefault("cache.redis_url", cfg.Cache.RedisURL)
	v.SetDefault("cache.ttl", cfg.Cache.TTL)

	v.SetDefault("metrics.listen", cfg.Metrics.Listen)

	v.SetDefault("browser.command", cfg.Browser.Command)
	v.SetDefault("browser.args", cfg.Browser.Args)
	v.SetDefault("browser.web_url", cfg.Browser.WebURL)

	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// LoadConfig loads configuration from the default locations and environment
func LoadConfig() (*Config, error) {
	return LoadConfigFrom("")
}

// LoadConfigFrom loads configuration from an explicit file, or from the default
// locations when path is empty. A missing default file is not an error.
func LoadConfigFrom(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	cfg.Logging.File = expandHome(cfg.Logging.File)

	return cfg, nil
}

// SaveConfig writes cfg to config.yaml in the default config directory
func SaveConfig(cfg *Config) error {
	return SaveConfigTo(filepath.Join(defaultConfigPath(), "config.yaml"), cfg)
}

// SaveConfigTo writes cfg to the given file, creating parent directories
func SaveConfigTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")

	// Set fields individually to ensure correct key names (snake_case)
	v.Set("tmdb.api_key", cfg.TMDB.APIKey)
	v.Set("tmdb.access_token", cfg.TMDB.AccessToken)
	v.Set("tmdb.base_url", cfg.TMDB.BaseURL)
	v.Set("tmdb.image_base_url", cfg.TMDB.ImageBaseURL)
	v.Set("tmdb.language", cfg.TMDB.Language)
	v.Set("tmdb.region", cfg.TMDB.Region)
	v.Set("tmdb.timeout", cfg.TMDB.Timeout.String())
	v.Set("tmdb.requests_per_second", cfg.TMDB.RequestsPerSecond)
	v.Set("tmdb.burst", cfg.TMDB.Burst)

	v.Set("dashboard.debounce", cfg.Dashboard.Debounce.String())
	v.Set("dashboard.fetch_timeout", cfg.Dashboard.FetchTimeout.String())
	v.Set("dashboard.trending_day_window", cfg.Dashboard.TrendingDayWindow)
	v.Set("dashboard.trending_week_window", cfg.Dashboard.TrendingWeekWindow)
	v.Set("dashboard.refresh_on_start", cfg.Dashboard.RefreshOnStart)

	v.Set("cache.dir", cfg.Cache.Dir)
	v.Set("cache.redis_url", cfg.Cache.RedisURL)
	v.Set("cache.ttl", cfg.Cache.TTL.String())

	v.Set("metrics.listen", cfg.Metrics.Listen)

	v.Set("browser.command", cfg.Browser.Command)
	v.Set("browser.args", cfg.Browser.Args)
	v.Set("browser.web_url", cfg.Browser.WebURL)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ClearCache removes all cached data in dir
func ClearCache(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
