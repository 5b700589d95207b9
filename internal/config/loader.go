package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configName     = ".declint"
	configFileName = configName + ".yaml"
	envPrefix      = "DECLINT"
)

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v          *viper.Viper
	configFile string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()

	// Set config name and type
	v.SetConfigName(configName)
	v.SetConfigType("yaml")

	// Add search paths in order of priority
	v.AddConfigPath(".")            // Current directory (highest priority)
	v.AddConfigPath("$HOME")        // Home directory
	v.AddConfigPath("/etc/declint") // System config (lowest priority)

	// DECLINT_OUTPUT_FORMAT -> output.format
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// SetConfigFile sets a specific config file to use.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = path
	l.v.SetConfigFile(path)
}

// Load loads the configuration from all sources.
// Priority (highest to lowest):
// 1. Flags bound by the caller through GetViper
// 2. Environment variables (DECLINT_*)
// 3. Config file (explicit via SetConfigFile, else the search paths)
// 4. Default values
func (l *Loader) Load() (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	// Set defaults in viper
	l.setDefaults(cfg)

	// Try to read config file
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			// Config file found but error reading it
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file: defaults and env still apply
	}

	// Unmarshal into config struct
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate the final config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults registers every key so environment variables can reach it.
func (l *Loader) setDefaults(cfg *Config) {
	// Style defaults are zero: the preset supplies real values
	l.v.SetDefault("style.file", cfg.Style.File)
	l.v.SetDefault("style.preset", cfg.Style.Preset)
	l.v.SetDefault("style.ordering", string(cfg.Style.Ordering))
	l.v.SetDefault("style.max_line_length", cfg.Style.MaxLineLength)
	l.v.SetDefault("style.abbreviations", cfg.Style.Abbreviations)
	l.v.SetDefault("style.disabled", cfg.Style.Disabled)

	// Run defaults
	l.v.SetDefault("run.concurrency", cfg.Run.Concurrency)
	l.v.SetDefault("run.extensions", cfg.Run.Extensions)
	l.v.SetDefault("run.ignore_patterns", cfg.Run.IgnorePatterns)
	l.v.SetDefault("run.fail_on", cfg.Run.FailOn)

	// Output defaults
	l.v.SetDefault("output.format", cfg.Output.Format)
	l.v.SetDefault("output.file", cfg.Output.File)
	l.v.SetDefault("output.min_severity", cfg.Output.MinSeverity)
	l.v.SetDefault("output.color", cfg.Output.Color)
	l.v.SetDefault("output.verbose", cfg.Output.Verbose)
	l.v.SetDefault("output.quiet", cfg.Output.Quiet)

	// Cache defaults
	l.v.SetDefault("cache.enabled", cfg.Cache.Enabled)
	l.v.SetDefault("cache.max_entries", cfg.Cache.MaxEntries)
	l.v.SetDefault("cache.dir", cfg.Cache.Dir)
	l.v.SetDefault("cache.ttl", cfg.Cache.TTL)

	// Baseline defaults
	l.v.SetDefault("baseline.file", cfg.Baseline.File)

	// Logging defaults
	l.v.SetDefault("log.level", cfg.Log.Level)
	l.v.SetDefault("log.format", cfg.Log.Format)

	// Metrics defaults
	l.v.SetDefault("metrics.addr", cfg.Metrics.Addr)

	// History defaults
	l.v.SetDefault("history.file", cfg.History.File)
	l.v.SetDefault("history.keep", cfg.History.Keep)
}

// ConfigFileUsed returns the path of the config file used, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// GetViper returns the underlying viper instance for flag binding.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// LoadFromFile loads configuration from a specific file.
func LoadFromFile(path string) (*Config, error) {
	loader := NewLoader()
	loader.SetConfigFile(path)
	return loader.Load()
}

// LoadDefault loads configuration with default search paths.
func LoadDefault() (*Config, error) {
	return NewLoader().Load()
}

// FindConfigFile searches for a config file and returns its path.
// Returns empty string if no config file is found.
func FindConfigFile() string {
	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		if abs, err := filepath.Abs(configFileName); err == nil {
			return abs
		}
	}

	// Check home directory
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, configFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	// Check /etc
	etcPath := "/etc/declint/" + configFileName
	if _, err := os.Stat(etcPath); err == nil {
		return etcPath
	}

	return ""
}
