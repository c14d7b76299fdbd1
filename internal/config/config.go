// Package config loads settings for the extsort CLI from defaults, a YAML
// file and EXTSORT_* environment variables, in that order of precedence
// (lowest first), with command-line flags merged on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config defines configuration for the extsort CLI.
type Config struct {
	Type             string    `yaml:"type"` // int, float or string
	Descending       bool      `yaml:"descending"`
	IgnoreCase       bool      `yaml:"ignore_case"`
	ChunkSize        int64     `yaml:"chunk_size"`
	Workers          int       `yaml:"workers"`
	Strict           bool      `yaml:"strict"`
	ProgressInterval int64     `yaml:"progress_interval"`
	Log              LogConfig `yaml:"log"`
}

// LogConfig selects the diagnostic output format.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Type:             "string",
		ChunkSize:        100 * 1024 * 1024, // 100MB
		Workers:          11,
		ProgressInterval: 1_000_000,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// yamlConfig is used for YAML unmarshaling with human-readable sizes.
type yamlConfig struct {
	Type             string    `yaml:"type"`
	Descending       bool      `yaml:"descending"`
	IgnoreCase       bool      `yaml:"ignore_case"`
	ChunkSize        string    `yaml:"chunk_size"`
	Workers          int       `yaml:"workers"`
	Strict           bool      `yaml:"strict"`
	ProgressInterval int64     `yaml:"progress_interval"`
	Log              LogConfig `yaml:"log"`
}

// LoadFromFile loads configuration from a YAML file. Keys absent from the
// file keep their defaults.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()
	if yc.Type != "" {
		cfg.Type = yc.Type
	}
	cfg.Descending = yc.Descending
	cfg.IgnoreCase = yc.IgnoreCase
	if yc.ChunkSize != "" {
		size, err := ParseBytes(yc.ChunkSize)
		if err != nil {
			return Config{}, fmt.Errorf("parse chunk_size: %w", err)
		}
		cfg.ChunkSize = size
	}
	if yc.Workers != 0 {
		cfg.Workers = yc.Workers
	}
	cfg.Strict = yc.Strict
	if yc.ProgressInterval != 0 {
		cfg.ProgressInterval = yc.ProgressInterval
	}
	if yc.Log.Level != "" {
		cfg.Log.Level = yc.Log.Level
	}
	if yc.Log.Format != "" {
		cfg.Log.Format = yc.Log.Format
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the EXTSORT_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("EXTSORT_TYPE"); v != "" {
		c.Type = v
	}
	if v := os.Getenv("EXTSORT_DESCENDING"); v != "" {
		c.Descending = v == "true" || v == "1"
	}
	if v := os.Getenv("EXTSORT_IGNORE_CASE"); v != "" {
		c.IgnoreCase = v == "true" || v == "1"
	}
	if v := os.Getenv("EXTSORT_CHUNK_SIZE"); v != "" {
		size, err := ParseBytes(v)
		if err != nil {
			return fmt.Errorf("parse EXTSORT_CHUNK_SIZE: %w", err)
		}
		c.ChunkSize = size
	}
	if v := os.Getenv("EXTSORT_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse EXTSORT_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("EXTSORT_STRICT"); v != "" {
		c.Strict = v == "true" || v == "1"
	}
	if v := os.Getenv("EXTSORT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("EXTSORT_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Type {
	case "int", "float", "string":
	default:
		return fmt.Errorf("config: unknown type %q (want int, float or string)", c.Type)
	}
	if c.IgnoreCase && c.Type != "string" {
		return errors.New("config: ignore_case only applies to string records")
	}
	if c.ChunkSize <= 0 {
		return errors.New("config: chunk_size must be positive")
	}
	if c.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q (want text or json)", c.Log.Format)
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.Type != "" {
		c.Type = override.Type
	}
	if override.Descending {
		c.Descending = override.Descending
	}
	if override.IgnoreCase {
		c.IgnoreCase = override.IgnoreCase
	}
	if override.ChunkSize != 0 {
		c.ChunkSize = override.ChunkSize
	}
	if override.Workers != 0 {
		c.Workers = override.Workers
	}
	if override.Strict {
		c.Strict = override.Strict
	}
	if override.ProgressInterval != 0 {
		c.ProgressInterval = override.ProgressInterval
	}
	if override.Log.Level != "" {
		c.Log.Level = override.Log.Level
	}
	if override.Log.Format != "" {
		c.Log.Format = override.Log.Format
	}
	return c
}
