package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadLayered_CLIOverridesEverything(t *testing.T) {
	embedded := []byte("feed:\n  addr: \"127.0.0.1:9000\"\nlogging:\n  level: \"warn\"")
	t.Setenv("ISLAND_FEED_ADDR", "127.0.0.1:9100")
	cli := CLIOverrides{FeedAddr: "127.0.0.1:9200", LogLevel: "debug", Interval: 500 * time.Millisecond}

	cfg, err := LoadLayered(cli, embedded, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Feed.Addr != "127.0.0.1:9200" {
		t.Errorf("Feed.Addr = %q, want CLI override", cfg.Feed.Addr)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want CLI override", cfg.Logging.Level)
	}
	if cfg.Sampler.Interval.Duration != 500*time.Millisecond {
		t.Errorf("Interval = %v, want CLI override", cfg.Sampler.Interval.Duration)
	}
}

func TestLoadLayered_EnvOverridesEmbed(t *testing.T) {
	embedded := []byte("feed:\n  addr: \"127.0.0.1:9000\"\nsampler:\n  disk_path: \"/data\"")
	t.Setenv("ISLAND_FEED_ADDR", "127.0.0.1:9100")

	cfg, err := LoadLayered(CLIOverrides{}, embedded, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Feed.Addr != "127.0.0.1:9100" {
		t.Errorf("Feed.Addr = %q, want env override", cfg.Feed.Addr)
	}
	if cfg.Sampler.DiskPath != "/data" {
		t.Errorf("DiskPath = %q, want embedded value", cfg.Sampler.DiskPath)
	}
}

func TestLoadLayered_FileOverridesEmbed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("sampler:\n  interval: 2s\n  gpu_refresh: 4s\n"), 0644); err != nil {
		t.Fatal(err)
	}
	embedded := []byte("sampler:\n  interval: 3s")

	cfg, err := LoadLayered(CLIOverrides{}, embedded, path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sampler.Interval.Duration != 2*time.Second {
		t.Errorf("Interval = %v, want 2s from file", cfg.Sampler.Interval.Duration)
	}
	if cfg.Sampler.GPURefresh.Duration != 4*time.Second {
		t.Errorf("GPURefresh = %v, want 4s from file", cfg.Sampler.GPURefresh.Duration)
	}
}

func TestLoadLayered_DotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ISLAND_DISK_PATH=/Volumes/Data\n"), 0644); err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("ISLAND_DISK_PATH", "")
	os.Unsetenv("ISLAND_DISK_PATH")

	cfg, err := LoadLayered(CLIOverrides{}, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sampler.DiskPath != "/Volumes/Data" {
		t.Errorf("DiskPath = %q, want .env value", cfg.Sampler.DiskPath)
	}
}

func TestLoadLayered_InvalidEnvInterval(t *testing.T) {
	t.Setenv("ISLAND_INTERVAL", "soon")
	if _, err := LoadLayered(CLIOverrides{}, nil, ""); err == nil {
		t.Error("expected error for invalid ISLAND_INTERVAL")
	}
}

func TestLoadLayered_DefaultsWhenEmpty(t *testing.T) {
	cfg, err := LoadLayered(CLIOverrides{}, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sampler.Interval.Duration != time.Second {
		t.Errorf("Interval = %v, want 1s default", cfg.Sampler.Interval.Duration)
	}
	if cfg.Sampler.GPURefresh.Duration != 2*time.Second {
		t.Errorf("GPURefresh = %v, want 2s default", cfg.Sampler.GPURefresh.Duration)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero interval", func(c *Config) { c.Sampler.Interval = Duration{} }},
		{"zero gpu refresh", func(c *Config) { c.Sampler.GPURefresh = Duration{} }},
		{"empty disk path", func(c *Config) { c.Sampler.DiskPath = "" }},
		{"negative auto hide", func(c *Config) { c.Island.AutoHideDelay = Duration{-time.Second} }},
		{"feed without addr", func(c *Config) { c.Feed.Addr = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadLayered_AutoHideDelayFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("island:\n  auto_hide_delay: 5s\n"), 0644); err != nil {
		t.Fatal(err)
	}
	embedded := []byte("island:\n  auto_hide_delay: 1s\n")

	loaded, err := LoadLayered(CLIOverrides{}, embedded, path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Island.AutoHideDelay.Duration != 5*time.Second {
		t.Errorf("AutoHideDelay = %v, want 5s", loaded.Island.AutoHideDelay.Duration)
	}
}
