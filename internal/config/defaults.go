package config

// DefaultConfig returns a Config with sensible default values. Style is
// left empty so the default preset applies.
func DefaultConfig() *Config {
	return &Config{
		Run:      defaultRunConfig(),
		Output:   defaultOutputConfig(),
		Cache:    defaultCacheConfig(),
		Baseline: BaselineConfig{},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// defaultRunConfig returns the default run configuration.
func defaultRunConfig() RunConfig {
	return RunConfig{
		Concurrency: 0,
		Extensions:  []string{".h", ".decl.yaml", ".decl.yml", ".decl.json"},
		IgnorePatterns: []string{
			"Pods/*", "Carthage/*", "DerivedData/*",
			"build/*", "vendor/*", "*.framework/*",
		},
		FailOn: "warning",
	}
}

// defaultOutputConfig returns the default output configuration.
func defaultOutputConfig() OutputConfig {
	return OutputConfig{
		Format:      "text",
		MinSeverity: "info",
		Color:       true,
	}
}

// defaultCacheConfig returns the default cache configuration.
func defaultCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:    true,
		MaxEntries: 1024,
	}
}
