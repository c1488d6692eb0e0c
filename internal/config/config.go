// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/respcompare/internal/compare"
)

// Default values applied by MergeWithDefaults
const (
	DefaultPort             = 8080
	DefaultBatchConcurrency = 4
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	DatabaseURL      string `json:"database_url,omitempty"`      // PostgreSQL connection URL
	Port             int    `json:"port,omitempty"`              // HTTP port for serve
	Mode             string `json:"mode,omitempty"`              // Diff mode: greedy or optimal
	MaxInputChars    int    `json:"max_input_chars,omitempty"`   // Per-side character limit (0 = default)
	BatchConcurrency int    `json:"batch_concurrency,omitempty"` // Parallel comparisons in batch mode
	Verbose          bool   `json:"verbose,omitempty"`           // Print detailed comparison output
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if _, err := compare.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.MaxInputChars < 0 {
		return fmt.Errorf("config error: 'max_input_chars' must be non-negative")
	}
	if c.BatchConcurrency < 0 {
		return fmt.Errorf("config error: 'batch_concurrency' must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Mode == "" {
		result.Mode = defaults.Mode
	}

	if result.Port == 0 {
		if defaults.Port > 0 {
			result.Port = defaults.Port
		} else {
			result.Port = DefaultPort
		}
	}
	if result.MaxInputChars == 0 {
		if defaults.MaxInputChars > 0 {
			result.MaxInputChars = defaults.MaxInputChars
		} else {
			result.MaxInputChars = compare.DefaultMaxInputChars
		}
	}
	if result.BatchConcurrency == 0 {
		if defaults.BatchConcurrency > 0 {
			result.BatchConcurrency = defaults.BatchConcurrency
		} else {
			result.BatchConcurrency = DefaultBatchConcurrency
		}
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// EngineOptions converts the configuration into compare.Options.
func (c *Config) EngineOptions() (compare.Options, error) {
	mode, err := compare.ParseMode(c.Mode)
	if err != nil {
		return compare.Options{}, err
	}
	return compare.Options{
		Mode:          mode,
		MaxInputChars: c.MaxInputChars,
	}, nil
}
