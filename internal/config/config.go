package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Supported destination drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// Config holds all application configuration
type Config struct {
	// football-data.org API
	APIKey         string        `envconfig:"API_KEY"`
	APIBaseURL     string        `envconfig:"API_BASE_URL" default:"https://api.football-data.org/v4/competitions"`
	APITimeout     time.Duration `envconfig:"API_TIMEOUT" default:"30s"`
	RateLimitDelay time.Duration `envconfig:"RATE_LIMIT_DELAY" default:"60s"`
	MaxBackoff     time.Duration `envconfig:"MAX_BACKOFF" default:"10m"`
	MaxRetries     int           `envconfig:"MAX_RETRIES" default:"5"`
	StrictFetch    bool          `envconfig:"STRICT_FETCH" default:"false"`

	// Local paths
	DataDir    string `envconfig:"DATA_DIR" default:"data/raw"`
	ReportPath string `envconfig:"REPORT_PATH" default:"output/summary.csv"`

	// Destination database
	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite3"`
	DBPath      string `envconfig:"DB_PATH" default:"db/football_data.sqlite"`
	DatabaseURL string `envconfig:"DATABASE_URL" default:""`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogDir   string `envconfig:"LOG_DIR" default:"logs"`

	// Scheduler
	Schedule   string `envconfig:"SCHEDULE" default:""`
	RunOnStart bool   `envconfig:"RUN_ON_START" default:"true"`

	// Monitoring
	MetricsTextfile string `envconfig:"METRICS_TEXTFILE" default:""`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if present
func Load() (*Config, error) {
	return load((*Config).Validate)
}

// LoadStorage loads configuration for commands that only read the database
// and write the report. The API settings are not validated.
func LoadStorage() (*Config, error) {
	return load((*Config).ValidateStorage)
}

func load(validate func(*Config) error) (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the full configuration
func (c *Config) Validate() error {
	if err := c.ValidateAPI(); err != nil {
		return err
	}
	return c.ValidateStorage()
}

// ValidateAPI validates the football-data client settings
func (c *Config) ValidateAPI() error {
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY is required")
	}

	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL must not be empty")
	}

	if c.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES must not be negative, got %d", c.MaxRetries)
	}

	if c.RateLimitDelay <= 0 {
		return fmt.Errorf("RATE_LIMIT_DELAY must be positive, got %s", c.RateLimitDelay)
	}

	return nil
}

// ValidateStorage validates the database and local path settings
func (c *Config) ValidateStorage() error {
	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for driver %s", c.DBDriver)
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for driver %s", c.DBDriver)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if c.DataDir == "" || c.ReportPath == "" {
		return fmt.Errorf("DATA_DIR and REPORT_PATH must not be empty")
	}

	return nil
}

// DatabaseDSN returns the data source name for the configured driver
func (c *Config) DatabaseDSN() string {
	if c.DBDriver == DriverPostgres {
		return c.DatabaseURL
	}
	return c.DBPath
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Scheduled reports whether the pipeline should run on a cron schedule instead of once
func (c *Config) Scheduled() bool {
	return c.Schedule != ""
}

// MustLoad loads configuration or exits on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	return mustLoad(Load)
}

// MustLoadStorage is LoadStorage that exits on error
func MustLoadStorage() *Config {
	return mustLoad(LoadStorage)
}

func mustLoad(loadFn func() (*Config, error)) *Config {
	cfg, err := loadFn()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
