package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 8420 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 8420)
	}
	if !cfg.API.EnableMetrics {
		t.Error("API.EnableMetrics should default to true")
	}
	if !cfg.Location.HighAccuracy {
		t.Error("Location.HighAccuracy should default to true")
	}
	if cfg.LocationTimeout() != 15*time.Second {
		t.Errorf("LocationTimeout = %v, want 15s", cfg.LocationTimeout())
	}
	if cfg.LocationMaxCachedAge() != 60*time.Second {
		t.Errorf("LocationMaxCachedAge = %v, want 60s", cfg.LocationMaxCachedAge())
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.API.Port != 8420 {
		t.Errorf("API.Port = %d, want default", cfg.API.Port)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[api]
host = "0.0.0.0"
port = 9000

[location]
timeout = "5s"
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr() != "0.0.0.0:9000" {
		t.Errorf("Addr = %q, want 0.0.0.0:9000", cfg.Addr())
	}
	if cfg.LocationTimeout() != 5*time.Second {
		t.Errorf("LocationTimeout = %v, want 5s", cfg.LocationTimeout())
	}
	// Untouched sections keep their defaults.
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want default info", cfg.Log.Level)
	}
}

func TestLoad_InvalidDurationRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte("[location]\ntimeout = \"soon\"\n"), 0o600)

	if _, err := Load(path); err == nil {
		t.Fatal("invalid duration should be rejected")
	}
}

func TestLoad_PortOutOfRangeRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte("[api]\nport = 70000\n"), 0o600)

	if _, err := Load(path); err == nil {
		t.Fatal("out-of-range port should be rejected")
	}
}
