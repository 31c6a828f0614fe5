// Package config provides the unified configuration for the axcol
// tools. A single Config structure covers writing, reading and the
// ambient concerns, loadable from YAML with ${VAR_NAME} environment
// substitution.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/exaxorg/accelerator-sub001/pkg/compression"
)

// Config is the top-level configuration structure.
type Config struct {
	// Write settings apply when producing column files
	Write WriteConfig `yaml:"write" json:"write"`

	// Slicing settings control hash partitioning defaults
	Slicing SlicingConfig `yaml:"slicing" json:"slicing"`

	// Logging settings for the structured logger
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Tracing enables stdout trace spans
	Tracing bool `yaml:"tracing" json:"tracing"`
}

// WriteConfig holds column writing defaults.
type WriteConfig struct {
	// Compression names the block compression scheme
	Compression string `yaml:"compression" json:"compression"`
	// NoneSupport allows None values by default
	NoneSupport bool `yaml:"none_support" json:"none_support"`
}

// SlicingConfig holds hash partitioning defaults.
type SlicingConfig struct {
	// Slices is the default partition count, 0 meaning unsliced
	Slices int `yaml:"slices" json:"slices"`
	// SpreadNone routes None values to the last slice
	SpreadNone bool `yaml:"spread_none" json:"spread_none"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	Encoding string `yaml:"encoding" json:"encoding"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Write: WriteConfig{
			Compression: string(compression.Gzip),
		},
		Logging: LoggingConfig{
			Level:    "error",
			Encoding: "json",
		},
	}
}

// Load reads a YAML configuration file, substituting ${VAR_NAME}
// references with environment variable values. Missing fields keep
// their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is caller-controlled
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	content := substituteEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Write.Compression != "" {
		if _, err := compression.NewCompressor(compression.Algorithm(c.Write.Compression)); err != nil {
			return fmt.Errorf("unknown compression %q", c.Write.Compression)
		}
	}
	if c.Slicing.Slices < 0 {
		return fmt.Errorf("slices must not be negative, got %d", c.Slicing.Slices)
	}
	if c.Slicing.SpreadNone && c.Slicing.Slices == 0 {
		return fmt.Errorf("spread_none requires slicing")
	}
	return nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values
func substituteEnvVars(content string) string {
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		varName := content[start+2 : end]
		envValue := os.Getenv(varName)
		content = content[:start] + envValue + content[end+1:]
	}
	return content
}
