// Package config loads the service configuration from a TOML file,
// falling back to documented defaults for anything unset.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full service configuration.
type Config struct {
	API      APIConfig      `toml:"api"`
	DB       DBConfig       `toml:"db"`
	Location LocationConfig `toml:"location"`
	Log      LogConfig      `toml:"log"`
}

// APIConfig configures the HTTP server.
type APIConfig struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	EnableMetrics  bool   `toml:"enable_metrics"`
	RequestTimeout string `toml:"request_timeout"`
}

// DBConfig configures the SQLite store.
type DBConfig struct {
	Dir string `toml:"dir"`
}

// LocationConfig configures position queries.
type LocationConfig struct {
	HighAccuracy bool   `toml:"high_accuracy"`
	Timeout      string `toml:"timeout"`
	MaxCachedAge string `toml:"max_cached_age"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level       string `toml:"level"`
	Environment string `toml:"environment"` // dev or prod
}

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:           "127.0.0.1",
			Port:           8420,
			EnableMetrics:  true,
			RequestTimeout: "60s",
		},
		DB: DBConfig{
			Dir: defaultDataDir(),
		},
		Location: LocationConfig{
			HighAccuracy: true,
			Timeout:      "15s",
			MaxCachedAge: "60s",
		},
		Log: LogConfig{
			Level:       "info",
			Environment: "prod",
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home + "/.timetracker"
}

// Load reads path over the defaults. A missing file is not an error —
// the defaults stand.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}
	for _, d := range []struct {
		name, val string
	}{
		{"api.request_timeout", c.API.RequestTimeout},
		{"location.timeout", c.Location.Timeout},
		{"location.max_cached_age", c.Location.MaxCachedAge},
	} {
		if _, err := time.ParseDuration(d.val); err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
	}
	return nil
}

// LocationTimeout returns the parsed location query timeout.
func (c Config) LocationTimeout() time.Duration {
	return parseDuration(c.Location.Timeout, 15*time.Second)
}

// LocationMaxCachedAge returns the parsed cache age bound.
func (c Config) LocationMaxCachedAge() time.Duration {
	return parseDuration(c.Location.MaxCachedAge, 60*time.Second)
}

// APIRequestTimeout returns the parsed per-request timeout.
func (c Config) APIRequestTimeout() time.Duration {
	return parseDuration(c.API.RequestTimeout, 60*time.Second)
}

// Addr returns the host:port listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
