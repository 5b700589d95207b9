// Package config handles all configuration management for declint.
//
// Configuration is loaded from multiple sources in order of precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables (DECLINT_*)
// 3. Configuration file (.declint.yaml)
// 4. Default values (lowest priority)
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/JNZader/declint/internal/ruleset"
)

// Config is the main configuration structure for declint.
type Config struct {
	// Style selects the conventions to enforce
	Style StyleConfig `mapstructure:"style" yaml:"style"`

	// Run configures file discovery and parallelism
	Run RunConfig `mapstructure:"run" yaml:"run"`

	// Output configures output formatting
	Output OutputConfig `mapstructure:"output" yaml:"output"`

	// Cache configures result caching for watch mode
	Cache CacheConfig `mapstructure:"cache" yaml:"cache"`

	// Baseline configures suppression of accepted violations
	Baseline BaselineConfig `mapstructure:"baseline" yaml:"baseline"`

	// Log configures diagnostic logging
	Log LogConfig `mapstructure:"log" yaml:"log"`

	// Metrics configures the Prometheus endpoint
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// History configures the run history database
	History HistoryConfig `mapstructure:"history" yaml:"history"`
}

// StyleConfig holds RuleSet options inline, optionally layered over a
// RuleSet document.
type StyleConfig struct {
	// File is a RuleSet document (yaml, json or toml). Inline options win
	// over its values.
	File string `mapstructure:"file" yaml:"file,omitempty"`

	ruleset.Options `mapstructure:",squash" yaml:",inline"`
}

// RunConfig configures how files are found and checked.
type RunConfig struct {
	// Concurrency is the number of parallel file checks (0 = auto)
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`

	// Extensions are the file suffixes picked up when walking directories
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`

	// IgnorePatterns are glob patterns of paths to skip
	IgnorePatterns []string `mapstructure:"ignore_patterns" yaml:"ignore_patterns"`

	// FailOn is the lowest severity that fails the run: info, warning,
	// error or none
	FailOn string `mapstructure:"fail_on" yaml:"fail_on"`
}

// OutputConfig configures output formatting.
type OutputConfig struct {
	// Format is the output format: "text", "table", "markdown", "json", "sarif"
	Format string `mapstructure:"format" yaml:"format"`

	// File is the output file path (empty = stdout)
	File string `mapstructure:"file" yaml:"file"`

	// MinSeverity hides violations below this severity
	MinSeverity string `mapstructure:"min_severity" yaml:"min_severity"`

	// Color enables colored output (for terminal)
	Color bool `mapstructure:"color" yaml:"color"`

	// Verbose enables verbose output
	Verbose bool `mapstructure:"verbose" yaml:"verbose"`

	// Quiet suppresses all output except errors
	Quiet bool `mapstructure:"quiet" yaml:"quiet"`
}

// CacheConfig configures caching behavior.
type CacheConfig struct {
	// Enabled enables caching
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// MaxEntries is the maximum number of cached file results in memory
	MaxEntries int `mapstructure:"max_entries" yaml:"max_entries"`

	// Dir persists results between check runs (empty = memory only)
	Dir string `mapstructure:"dir" yaml:"dir"`

	// TTL expires persisted results (0 = never)
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// BaselineConfig configures the baseline file.
type BaselineConfig struct {
	// File is the baseline path (empty = no baseline)
	File string `mapstructure:"file" yaml:"file"`
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `mapstructure:"level" yaml:"level"`

	// Format is one of text, logfmt, json
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig configures metrics exposure.
type MetricsConfig struct {
	// Addr serves /metrics when set, e.g. ":9090" (watch mode only)
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// HistoryConfig configures run history.
type HistoryConfig struct {
	// File is the SQLite database runs are recorded in (empty = disabled)
	File string `mapstructure:"file" yaml:"file"`

	// Keep prunes runs older than this on every record (0 = keep all)
	Keep time.Duration `mapstructure:"keep" yaml:"keep"`
}

// OutputFormats lists the supported report formats.
var OutputFormats = []string{"text", "table", "markdown", "json", "sarif"}

// FailOnNone disables failing on violations.
const FailOnNone = "none"

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if !contains(OutputFormats, c.Output.Format) {
		return &ValidationError{Field: "output.format", Message: "invalid format, must be one of: " + strings.Join(OutputFormats, ", ")}
	}

	if c.Output.MinSeverity != "" {
		if _, ok := ruleset.ParseSeverity(c.Output.MinSeverity); !ok {
			return &ValidationError{Field: "output.min_severity", Message: "invalid severity, must be one of: info, warning, error"}
		}
	}

	if c.Run.Concurrency < 0 {
		return &ValidationError{Field: "run.concurrency", Message: "must not be negative"}
	}

	if len(c.Run.Extensions) == 0 {
		return &ValidationError{Field: "run.extensions", Message: "at least one extension is required"}
	}

	if c.Run.FailOn != FailOnNone {
		if _, ok := ruleset.ParseSeverity(c.Run.FailOn); !ok {
			return &ValidationError{Field: "run.fail_on", Message: "invalid severity, must be one of: info, warning, error, none"}
		}
	}

	if c.Cache.Enabled && c.Cache.MaxEntries < 1 {
		return &ValidationError{Field: "cache.max_entries", Message: "must be positive when cache is enabled"}
	}

	if c.Cache.TTL < 0 {
		return &ValidationError{Field: "cache.ttl", Message: "must not be negative"}
	}

	if c.History.Keep < 0 {
		return &ValidationError{Field: "history.keep", Message: "must not be negative"}
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Field: "log.level", Message: "invalid level, must be one of: debug, info, warn, error"}
	}

	switch c.Log.Format {
	case "text", "logfmt", "json":
	default:
		return &ValidationError{Field: "log.format", Message: "invalid format, must be one of: text, logfmt, json"}
	}

	return nil
}

// RuleSet builds the RuleSet the configuration selects: the style file,
// if any, with inline style options layered over it.
func (c *Config) RuleSet() (*ruleset.RuleSet, error) {
	opts := c.Style.Options
	if c.Style.File != "" {
		fileOpts, err := ruleset.LoadOptions(c.Style.File)
		if err != nil {
			return nil, err
		}
		opts = fileOpts.Merge(opts)
	}
	rs, err := ruleset.Resolve(opts)
	if err != nil {
		return nil, fmt.Errorf("resolving style: %w", err)
	}
	return rs, nil
}

// FailOnSeverity returns the severity that fails a run, or false when the
// run never fails on violations.
func (c *Config) FailOnSeverity() (ruleset.Severity, bool) {
	if c.Run.FailOn == FailOnNone {
		return "", false
	}
	sev, ok := ruleset.ParseSeverity(c.Run.FailOn)
	return sev, ok
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "config validation error: " + e.Field + ": " + e.Message
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
