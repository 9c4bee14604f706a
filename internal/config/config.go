// Package config handles configuration loading from YAML files, .env files
// and environment variables.
// Precedence: CLI flags > environment > .env > config file > embedded > defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "1s", "2s", "1m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// Config holds all island configuration.
type Config struct {
	Sampler SamplerConfig `yaml:"sampler"`
	Island  IslandConfig  `yaml:"island"`
	Feed    FeedConfig    `yaml:"feed"`
	Logging LoggingConfig `yaml:"logging"`
}

// SamplerConfig holds stats sampling settings.
type SamplerConfig struct {
	Interval   Duration `yaml:"interval"`
	GPURefresh Duration `yaml:"gpu_refresh"`
	DiskPath   string   `yaml:"disk_path"`
}

// IslandConfig holds panel behaviour settings.
type IslandConfig struct {
	AutoHideDelay Duration `yaml:"auto_hide_delay"`
	ShowOnStart   bool     `yaml:"show_on_start"`
}

// FeedConfig holds the local display feed settings.
type FeedConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Sampler: SamplerConfig{
			Interval:   Duration{1 * time.Second},
			GPURefresh: Duration{2 * time.Second},
			DiskPath:   defaultDiskPath(),
		},
		Island: IslandConfig{
			AutoHideDelay: Duration{3 * time.Second},
			ShowOnStart:   false,
		},
		Feed: FeedConfig{
			Enabled: true,
			Addr:    "127.0.0.1:7878",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// CLIOverrides holds values from command-line flags.
// Zero values are treated as "not set" and skipped.
type CLIOverrides struct {
	FeedAddr string
	LogLevel string
	Interval time.Duration
}

// Locate searches standard config file paths and returns the first one found.
// Returns empty string if no config file exists.
func Locate() string {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadLayered loads configuration with the full precedence chain.
//
// An optional configPath argument controls external-file discovery:
//   - omitted        → auto-discover via Locate()
//   - explicit value  → use that path ("" means no external file)
//
// A .env file in the working directory, if present, fills environment
// variables that are not already set.
func LoadLayered(cli CLIOverrides, embedded []byte, configPath ...string) (*Config, error) {
	cfg := DefaultConfig()

	if len(embedded) > 0 {
		if err := yaml.Unmarshal(embedded, cfg); err != nil {
			return nil, fmt.Errorf("parsing embedded config: %w", err)
		}
	}

	var filePath string
	if len(configPath) > 0 {
		filePath = configPath[0]
	} else {
		filePath = Locate()
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file %s: %w", filePath, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
			}
		}
	}

	// godotenv.Load never overrides variables that are already set.
	_ = godotenv.Load()
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if cli.FeedAddr != "" {
		cfg.Feed.Addr = cli.FeedAddr
	}
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}
	if cli.Interval > 0 {
		cfg.Sampler.Interval = Duration{cli.Interval}
	}

	return cfg, nil
}

// applyEnvOverrides applies ISLAND_* environment variables.
func applyEnvOverrides(cfg *Config) error {
	if level := os.Getenv("ISLAND_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if addr := os.Getenv("ISLAND_FEED_ADDR"); addr != "" {
		cfg.Feed.Addr = addr
	}
	if path := os.Getenv("ISLAND_DISK_PATH"); path != "" {
		cfg.Sampler.DiskPath = path
	}
	if raw := os.Getenv("ISLAND_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid ISLAND_INTERVAL %q: %w", raw, err)
		}
		cfg.Sampler.Interval = Duration{d}
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Sampler.Interval.Duration <= 0 {
		return fmt.Errorf("sampler interval must be positive (got: %s)", c.Sampler.Interval.Duration)
	}
	if c.Sampler.GPURefresh.Duration <= 0 {
		return fmt.Errorf("gpu refresh must be positive (got: %s)", c.Sampler.GPURefresh.Duration)
	}
	if c.Sampler.DiskPath == "" {
		return fmt.Errorf("disk path is required")
	}
	if c.Island.AutoHideDelay.Duration < 0 {
		return fmt.Errorf("auto hide delay must not be negative")
	}
	if c.Feed.Enabled && c.Feed.Addr == "" {
		return fmt.Errorf("feed address is required when the feed is enabled")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}
