package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "COVID"

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultCountries is the allow-list used when COVID_COUNTRIES is unset.
var DefaultCountries = []string{
	"United States", "India", "Brazil", "United Kingdom", "Kenya", "South Africa",
}

// Config holds all application-level configuration
type Config struct {
	// Input
	DataPath string `envconfig:"DATA_PATH" default:"owid-covid-data.csv"`

	// Analysis
	Countries         []string `envconfig:"COUNTRIES" default:"United States,India,Brazil,United Kingdom,Kenya,South Africa"`
	RollingWindow     int      `envconfig:"ROLLING_WINDOW" default:"7"`
	RollingMinPeriods int      `envconfig:"ROLLING_MIN_PERIODS"` // samples required before a rolling value is defined; 0 means the full window

	// Output
	OutputDir         string  `envconfig:"OUTPUT_DIR" default:"output"`
	SnapshotCSVPath   string  `envconfig:"SNAPSHOT_CSV" default:"output/latest_snapshot.csv"`
	ChartWidthInches  float64 `envconfig:"CHART_WIDTH" default:"12"`
	ChartHeightInches float64 `envconfig:"CHART_HEIGHT" default:"6"`
	MaxConcurrency    int     `envconfig:"MAX_CONCURRENCY" default:"1"`

	// Headless browser snapshot of the choropleth map
	SnapshotMap   bool          `envconfig:"SNAPSHOT_MAP" default:"false"`
	ChromeTimeout time.Duration `envconfig:"CHROME_TIMEOUT" default:"60s"`
	MaxRetries    int           `envconfig:"MAX_RETRIES" default:"3"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads configuration from environment variables or falls back to
// defaults, then resolves and validates it.
func Load() (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv reads configuration from environment variables without resolving
// or validating it, so callers can layer overrides on top first.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	return &cfg, nil
}

// Resolve fills settings that derive from others. An unset min periods
// follows the rolling window.
func (c *Config) Resolve() {
	if c.RollingMinPeriods == 0 {
		c.RollingMinPeriods = c.RollingWindow
	}
}

// Default returns the built-in defaults without consulting the environment.
func Default() *Config {
	countries := make([]string, len(DefaultCountries))
	copy(countries, DefaultCountries)
	return &Config{
		DataPath:          "owid-covid-data.csv",
		Countries:         countries,
		RollingWindow:     7,
		RollingMinPeriods: 7,
		OutputDir:         "output",
		SnapshotCSVPath:   "output/latest_snapshot.csv",
		ChartWidthInches:  12,
		ChartHeightInches: 6,
		MaxConcurrency:    1,
		ChromeTimeout:     60 * time.Second,
		MaxRetries:        3,
		LogLevel:          "info",
	}
}

// Validate checks field ranges and relationships.
func (c *Config) Validate() error {
	switch {
	case c.DataPath == "":
		return fmt.Errorf("%w: data path is empty", ErrInvalidConfig)
	case len(c.Countries) == 0:
		return fmt.Errorf("%w: no countries selected", ErrInvalidConfig)
	case c.RollingWindow < 1:
		return fmt.Errorf("%w: rolling window must be at least 1, got %d", ErrInvalidConfig, c.RollingWindow)
	case c.RollingMinPeriods < 1 || c.RollingMinPeriods > c.RollingWindow:
		return fmt.Errorf("%w: rolling min periods must be in [1, %d], got %d",
			ErrInvalidConfig, c.RollingWindow, c.RollingMinPeriods)
	case c.MaxConcurrency < 1:
		return fmt.Errorf("%w: max concurrency must be at least 1, got %d", ErrInvalidConfig, c.MaxConcurrency)
	case c.ChartWidthInches <= 0 || c.ChartHeightInches <= 0:
		return fmt.Errorf("%w: chart size must be positive", ErrInvalidConfig)
	case c.MaxRetries < 1:
		return fmt.Errorf("%w: max retries must be at least 1, got %d", ErrInvalidConfig, c.MaxRetries)
	}
	return nil
}
