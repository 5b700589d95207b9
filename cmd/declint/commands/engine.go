package commands

import (
	"fmt"

	"github.com/JNZader/declint/internal/baseline"
	"github.com/JNZader/declint/internal/config"
	"github.com/JNZader/declint/internal/ruleset"
	"github.com/JNZader/declint/internal/runner"
)

// newEngine builds an engine from cfg. The configured baseline is applied
// unless skipBaseline is set.
func newEngine(cfg *config.Config, skipBaseline bool, options ...runner.Option) (*runner.Engine, error) {
	rs, err := cfg.RuleSet()
	if err != nil {
		return nil, usageError(err)
	}

	if !skipBaseline && cfg.Baseline.File != "" {
		b, err := baseline.Load(cfg.Baseline.File)
		if err != nil {
			return nil, usageError(err)
		}
		options = append(options, runner.WithBaseline(b))
	}

	engine, err := runner.NewEngine(rs, runner.Options{
		Concurrency:    cfg.Run.Concurrency,
		Extensions:     cfg.Run.Extensions,
		IgnorePatterns: cfg.Run.IgnorePatterns,
	}, options...)
	if err != nil {
		return nil, usageError(fmt.Errorf("creating engine: %w", err))
	}
	return engine, nil
}

// failure returns the error that fails a run for result, or nil.
func failure(cfg *config.Config, result *runner.Result) error {
	min, ok := cfg.FailOnSeverity()
	if !ok || !result.HasErrors(min) {
		return nil
	}

	failing := 0
	for _, v := range result.Violations() {
		if v.Severity.AtLeast(min) {
			failing++
		}
	}
	if failed := len(result.FailedFiles()); failed > 0 {
		return violationsError("%d files could not be checked, %d violations at or above %s", failed, failing, min)
	}
	return violationsError("%d violations at or above %s", failing, min)
}

// minSeverity returns the lowest severity to report.
func minSeverity(cfg *config.Config) ruleset.Severity {
	if sev, ok := ruleset.ParseSeverity(cfg.Output.MinSeverity); ok {
		return sev
	}
	return ruleset.SeverityInfo
}
