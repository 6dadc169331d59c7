// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	Profile string `json:"profile,omitempty"` // Path to the profile record JSON file
	Page    string `json:"page,omitempty"`    // Path to a saved HTML document
	URL     string `json:"url,omitempty"`     // URL to drive with the browser provider
	Resume  string `json:"resume,omitempty"`  // Path to the resume file for upload controls

	// Behavior
	UseBrowser           bool   `json:"use_browser,omitempty"`           // Drive a headless browser instead of parsing saved HTML
	Verbose              bool   `json:"verbose,omitempty"`               // Print detailed debug information
	MaxAttempts          int    `json:"max_attempts,omitempty"`          // Fill retry cap per field
	SettleMs             int    `json:"settle_ms,omitempty"`             // Delay after state-changing interactions, in milliseconds
	ConservativeDefaults bool   `json:"conservative_defaults,omitempty"` // Disable heuristic yes/no defaults
	SyncEndpoint         string `json:"sync_endpoint,omitempty"`         // Learning-sync URL; empty disables syncing
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
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
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	// Validate mutually exclusive fields
	if c.Page != "" && c.URL != "" {
		return fmt.Errorf("config error: 'page' and 'url' are mutually exclusive")
	}
	if c.URL != "" && !c.UseBrowser {
		return fmt.Errorf("config error: 'url' requires 'use_browser'")
	}

	// Validate numeric ranges
	if c.MaxAttempts < 0 {
		return fmt.Errorf("config error: 'max_attempts' must be non-negative")
	}
	if c.SettleMs < 0 {
		return fmt.Errorf("config error: 'settle_ms' must be non-negative")
	}

	// Validate file paths exist (if specified)
	if c.Page != "" {
		if _, err := os.Stat(c.Page); os.IsNotExist(err) {
			return fmt.Errorf("config error: page file not found: %s", c.Page)
		}
	}
	if c.Resume != "" {
		if _, err := os.Stat(c.Resume); os.IsNotExist(err) {
			return fmt.Errorf("config error: resume file not found: %s", c.Resume)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Profile == "" {
		result.Profile = defaults.Profile
	}
	if result.Page == "" {
		result.Page = defaults.Page
	}
	if result.URL == "" {
		result.URL = defaults.URL
	}
	if result.Resume == "" {
		result.Resume = defaults.Resume
	}
	if result.SyncEndpoint == "" {
		result.SyncEndpoint = defaults.SyncEndpoint
	}

	// Int fields: use default if zero
	if result.MaxAttempts == 0 {
		result.MaxAttempts = defaults.MaxAttempts
	}
	if result.SettleMs == 0 {
		result.SettleMs = defaults.SettleMs
	}

	// Bool fields: set wins over unset (false is indistinguishable from unset)
	result.UseBrowser = result.UseBrowser || defaults.UseBrowser
	result.Verbose = result.Verbose || defaults.Verbose
	result.ConservativeDefaults = result.ConservativeDefaults || defaults.ConservativeDefaults

	return result
}
