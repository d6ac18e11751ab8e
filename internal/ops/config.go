// Package ops resolves runtime configuration from the process environment
// into validated settings. Commands load a .env file first, then apply flag
// overrides on top of what this package returns.
package ops

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yanun0323/errors"

	"marketsnap/pkg/conn"
	"marketsnap/pkg/exception"
)

const (
	defaultTickerFile  = "tickers.txt"
	defaultResultsDir  = "results"
	defaultWorkers     = 4
	defaultBatchSize   = 10
	defaultWindowHours = 24
	defaultDelayMs     = 100
)

// Config is the resolved runtime configuration.
type Config struct {
	Store    StoreConfig
	Ingest   IngestConfig
	Profiler ProfilerConfig
}

// StoreConfig carries the PostgreSQL connection settings. ConnString
// (DATABASE_URL) wins over the discrete fields when both are set. There is
// exactly one credential set; a store that rejects it runs in fallback mode
// rather than retrying variations.
type StoreConfig struct {
	ConnString string
	Host       string
	Port       int
	User       string
	Password   string
	Database   string
	SSLMode    string
}

// Option converts the settings into a connection option.
func (c StoreConfig) Option() conn.Option {
	return conn.Option{
		ConnString: c.ConnString,
		Host:       c.Host,
		Port:       c.Port,
		User:       c.User,
		Password:   c.Password,
		Database:   c.Database,
		SSLMode:    c.SSLMode,
	}
}

// Configured reports whether any connection detail was provided.
func (c StoreConfig) Configured() bool {
	return c.ConnString != "" || c.Host != "" || c.Database != ""
}

// IngestConfig carries the run shape. Flags override these per run.
type IngestConfig struct {
	TickerFile  string
	ResultsDir  string
	Workers     int
	BatchSize   int
	WindowHours int
	DelayMs     int
	ProxyURL    string
}

// Window returns the freshness window as a duration.
func (c IngestConfig) Window() time.Duration {
	return time.Duration(c.WindowHours) * time.Hour
}

// Delay returns the inter-call pacing delay as a duration.
func (c IngestConfig) Delay() time.Duration {
	return time.Duration(c.DelayMs) * time.Millisecond
}

// ProfilerConfig enables continuous profiling when a server address is set.
type ProfilerConfig struct {
	ServerAddress   string
	ApplicationName string
}

// Enabled reports whether profiling should start.
func (c ProfilerConfig) Enabled() bool {
	return c.ServerAddress != ""
}

// FromEnv resolves configuration from the environment.
func FromEnv() Config {
	return Config{
		Store: StoreConfig{
			ConnString: envString("DATABASE_URL", ""),
			Host:       envString("DB_HOST", ""),
			Port:       envInt("DB_PORT", 5432),
			User:       envString("DB_USER", ""),
			Password:   envString("DB_PASSWORD", ""),
			Database:   envString("DB_NAME", ""),
			SSLMode:    envString("DB_SSLMODE", ""),
		},
		Ingest: IngestConfig{
			TickerFile:  envString("TICKER_FILE", defaultTickerFile),
			ResultsDir:  envString("RESULTS_DIR", defaultResultsDir),
			Workers:     envInt("WORKERS", defaultWorkers),
			BatchSize:   envInt("BATCH_SIZE", defaultBatchSize),
			WindowHours: envInt("WINDOW_HOURS", defaultWindowHours),
			DelayMs:     envInt("FETCH_DELAY_MS", defaultDelayMs),
			ProxyURL:    envString("PROXY_URL", ""),
		},
		Profiler: ProfilerConfig{
			ServerAddress:   envString("PYROSCOPE_SERVER_ADDRESS", ""),
			ApplicationName: envString("PYROSCOPE_APPLICATION_NAME", "marketsnap.ingest"),
		},
	}
}

// Validate checks if the configuration is usable.
func (c Config) Validate() error {
	if c.Ingest.Workers <= 0 {
		return errors.Wrapf(exception.ErrInvalidConfig, "workers: %d", c.Ingest.Workers)
	}
	if c.Ingest.BatchSize <= 0 {
		return errors.Wrapf(exception.ErrInvalidConfig, "batch size: %d", c.Ingest.BatchSize)
	}
	if c.Ingest.WindowHours <= 0 {
		return errors.Wrapf(exception.ErrInvalidConfig, "window hours: %d", c.Ingest.WindowHours)
	}
	if c.Ingest.DelayMs < 0 {
		return errors.Wrapf(exception.ErrInvalidConfig, "fetch delay ms: %d", c.Ingest.DelayMs)
	}
	if c.Ingest.ProxyURL != "" {
		if _, err := url.Parse(c.Ingest.ProxyURL); err != nil {
			return errors.Wrapf(exception.ErrInvalidConfig, "proxy url: %s", c.Ingest.ProxyURL)
		}
	}
	return nil
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return n
}
