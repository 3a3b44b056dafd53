// Package config loads timetrax settings from a YAML file, environment
// variables and built-in defaults, in increasing order of precedence:
// defaults, file, environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/sadopc/timetrax/internal/holiday"
	"github.com/sadopc/timetrax/internal/store"
)

// Config is the process-level configuration. Accounting settings that must
// survive across hosts (default_time, account_start) live in the database,
// not here.
type Config struct {
	// Database is the SQLite file path.
	// Default: $XDG_DATA_HOME/timetrax/work.db
	Database string `yaml:"database"`

	// Region selects the holiday calendar.
	// Default: BW
	Region string `yaml:"region"`

	// Listen is the address of the HTTP endpoint started by `serve`.
	// Default: 127.0.0.1:8080
	Listen string `yaml:"listen"`

	// SeedItems are created on open when missing.
	// Default: [Standup]
	SeedItems []string `yaml:"seed_items"`

	Log LogConfig `yaml:"log"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`

	// JSON switches the handler to JSON lines.
	JSON bool `yaml:"json"`
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	return &Config{
		Database:  store.DefaultDBPath(),
		Region:    holiday.DefaultRegion,
		Listen:    "127.0.0.1:8080",
		SeedItems: []string{"Standup"},
		Log:       LogConfig{Level: "info"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/timetrax/config.yaml
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, store.AppName, "config.yaml")
}

// Load reads path on top of the defaults and applies environment
// overrides. A missing file is not an error; an empty path means
// DefaultPath.
func Load(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}
	cfg.loadFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	return cfg, nil
}

// SettableKeys are the keys Set accepts.
var SettableKeys = []string{"database", "region", "listen", "log.level"}

// Set changes one key in the file at path and writes it back. Environment
// overrides are not applied, so they never end up in the file.
func Set(path, key, value string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}

	value = strings.TrimSpace(value)
	switch key {
	case "database":
		cfg.Database = value
	case "region":
		cfg.Region = value
	case "listen":
		cfg.Listen = value
	case "log.level":
		cfg.Log.Level = strings.ToLower(value)
	default:
		return nil, fmt.Errorf("unknown config key %q: must be one of %s", key, strings.Join(SettableKeys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.save(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Value returns the string form of a key accepted by Set.
func (c *Config) Value(key string) string {
	switch key {
	case "database":
		return c.Database
	case "region":
		return c.Region
	case "listen":
		return c.Listen
	case "log.level":
		return c.Log.Level
	}
	return ""
}

// loadFromEnv loads configuration overrides from environment variables.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("TIMETRAX_DB"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("TIMETRAX_REGION"); v != "" {
		c.Region = v
	}
	if v := os.Getenv("TIMETRAX_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("TIMETRAX_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	c.Region = strings.ToUpper(strings.TrimSpace(c.Region))
	if !holiday.Known(c.Region) {
		return fmt.Errorf("unknown region %q: must be one of %v", c.Region, holiday.Regions())
	}
	if c.Database == "" {
		return errors.New("database path must not be empty")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return nil
}

// save writes c to path as YAML, creating the directory if needed.
func (c *Config) save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
