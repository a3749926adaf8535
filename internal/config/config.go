// Package config loads gpsmetrics settings from a TOML file, a .env file and
// GPSMETRICS_* environment variables, in that order of precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pable/go-gps-metrics/internal/charts"
	"github.com/pable/go-gps-metrics/internal/dashboard"
	"github.com/pable/go-gps-metrics/internal/model"
)

// EnvPrefix is the prefix of every environment override, e.g. GPSMETRICS_SERVER_ADDR.
const EnvPrefix = "gpsmetrics"

// Config represents the application configuration.
type Config struct {
	// DBPath is the SQLite store; empty means ~/.gpsmetrics/metrics.db.
	DBPath string `toml:"db_path" split_words:"true"`

	Dashboard dashboard.Options `toml:"dashboard"`
	Charts    charts.Config     `toml:"charts"`
	Server    ServerConfig      `toml:"server"`
	Log       LogConfig         `toml:"log"`
	Analyze   AnalyzeConfig     `toml:"analyze"`
}

// ServerConfig contains HTTP API settings.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	RateLimit      float64  `toml:"rate_limit" split_words:"true"` // requests per second per client, 0 = unlimited
	Burst          int      `toml:"burst"`
	CacheTTL       string   `toml:"cache_ttl" split_words:"true"`
	AllowedOrigins []string `toml:"allowed_origins" split_words:"true"`
	ReloadDebounce string   `toml:"reload_debounce" split_words:"true"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

// AnalyzeConfig contains settings for the AI analysis command.
type AnalyzeConfig struct {
	Model string `toml:"model"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Dashboard: dashboard.DefaultOptions(),
		Charts:    charts.DefaultConfig(),
		Server: ServerConfig{
			Addr:           "127.0.0.1:8080",
			RateLimit:      20,
			Burst:          40,
			CacheTTL:       "5m",
			AllowedOrigins: []string{"*"},
			ReloadDebounce: "500ms",
		},
		Log: LogConfig{
			Level: "info",
		},
		Analyze: AnalyzeConfig{
			Model: "claude-haiku-4-5-20251001",
		},
	}
}

// DefaultDir is ~/.gpsmetrics, falling back to the working directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".gpsmetrics")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.toml")
}

// Load reads the TOML file at path (DefaultPath when empty) over the defaults,
// then applies .env and environment overrides and validates the result.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Debug().Str("path", path).Msg("no config file, using defaults")
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to load .env file")
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(DefaultDir(), "metrics.db")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	d := c.Dashboard
	if len(d.PizzaMetrics) == 0 {
		return fmt.Errorf("dashboard.pizza_metrics cannot be empty")
	}
	if d.TrendGames < 0 {
		return fmt.Errorf("dashboard.trend_games cannot be negative: %d", d.TrendGames)
	}
	if d.ScatterX == "" || d.ScatterY == "" {
		return fmt.Errorf("dashboard.scatter_x and scatter_y are required")
	}
	for _, m := range append(append([]string{}, d.PizzaMetrics...), d.ScatterX, d.ScatterY) {
		if model.CanonicalMetric(m) != m {
			return fmt.Errorf("metric %q should be written %q", m, model.CanonicalMetric(m))
		}
	}

	if _, err := time.ParseDuration(c.Server.CacheTTL); err != nil {
		return fmt.Errorf("invalid cache TTL %q: %w", c.Server.CacheTTL, err)
	}
	if _, err := time.ParseDuration(c.Server.ReloadDebounce); err != nil {
		return fmt.Errorf("invalid reload debounce %q: %w", c.Server.ReloadDebounce, err)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative: %v", c.Server.RateLimit)
	}
	if c.Server.RateLimit > 0 && c.Server.Burst < 1 {
		return fmt.Errorf("burst must be at least 1 when rate limiting: %d", c.Server.Burst)
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return nil
}

// CacheTTL returns the view cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	d, _ := time.ParseDuration(c.Server.CacheTTL)
	return d
}

// ReloadDebounce returns the file-watch debounce as a duration.
func (c *Config) ReloadDebounce() time.Duration {
	d, _ := time.ParseDuration(c.Server.ReloadDebounce)
	return d
}
