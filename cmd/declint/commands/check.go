package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JNZader/declint/internal/cache"
	"github.com/JNZader/declint/internal/config"
	"github.com/JNZader/declint/internal/git"
	"github.com/JNZader/declint/internal/logger"
	"github.com/JNZader/declint/internal/profiler"
	"github.com/JNZader/declint/internal/report"
	"github.com/JNZader/declint/internal/ruleset"
	"github.com/JNZader/declint/internal/runner"
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Check declarations against the style",
	Long: `Check Objective-C declarations in headers and declaration documents.

Directories are walked for files with the configured extensions; files
named explicitly are always checked. Without paths the current directory
is checked.

Exit status is 0 when clean, 1 when violations at or above --fail-on are
found or a file cannot be checked, and 2 on usage or configuration errors.

Examples:
  # Check the current directory
  declint check

  # Check two targets with the properties-first ordering
  declint check Sources Tests --ordering propertiesFirst

  # Fail only on errors and write a SARIF report
  declint check --fail-on error -o declint.sarif

  # Suppress already accepted violations
  declint check --baseline .declint-baseline.toml

  # Pre-commit hook: only staged declaration files
  declint check --staged`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	// Output flags
	checkCmd.Flags().StringP("format", "f", "", "Output format (text, table, markdown, json, sarif)")
	checkCmd.Flags().StringP("output", "o", "", "Write report to file")
	checkCmd.Flags().String("min-severity", "", "Hide violations below this severity")
	checkCmd.Flags().Bool("no-color", false, "Disable colored output")

	// Style flags
	addStyleFlags(checkCmd)

	// Behavior flags
	checkCmd.Flags().Int("concurrency", 0, "Max concurrent file checks (0=auto)")
	checkCmd.Flags().String("baseline", "", "Baseline file of accepted violations")
	checkCmd.Flags().String("fail-on", "", "Lowest severity that fails the run (info, warning, error, none)")
	checkCmd.Flags().Bool("no-cache", false, "Ignore the persistent result cache")
	checkCmd.Flags().Bool("staged", false, "Only check declaration files staged in git")
	checkCmd.Flags().String("changed", "", "Only check declaration files changed since the merge base with this ref")
	checkCmd.MarkFlagsMutuallyExclusive("staged", "changed")

	// Profiling flags
	checkCmd.Flags().String("cpuprofile", "", "Write a CPU profile to file")
	checkCmd.Flags().String("memprofile", "", "Write a heap profile to file")
}

// runSelection runs engine over args, or over the files git reports
// changed when --staged or --changed is set.
func runSelection(cmd *cobra.Command, engine *runner.Engine, args []string) (*runner.Result, error) {
	ctx := cmd.Context()
	staged, _ := cmd.Flags().GetBool("staged")
	base, _ := cmd.Flags().GetString("changed")
	if !staged && base == "" {
		return engine.Run(ctx, args)
	}

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	repo, err := git.NewRepo(ctx, dir)
	if err != nil {
		return nil, usageError(err)
	}

	var files []string
	if staged {
		files, err = repo.StagedFiles(ctx)
	} else {
		files, err = repo.ChangedFiles(ctx, base)
	}
	if err != nil {
		return nil, usageError(err)
	}

	files = engine.Select(repo.Root(), files)
	logger.Debug("%d changed declaration files", len(files))
	return engine.RunFiles(ctx, files)
}

// startProfiler starts the profiles requested on the command line and
// returns the func that writes them.
func startProfiler(cmd *cobra.Command) (func(), error) {
	cpu, _ := cmd.Flags().GetString("cpuprofile")
	mem, _ := cmd.Flags().GetString("memprofile")
	pcfg := profiler.Config{CPUProfile: cpu, MemProfile: mem}
	if !pcfg.Enabled() {
		return func() {}, nil
	}

	prof, err := profiler.Start(pcfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("Profiling started: %s", profiler.Stats())
	return func() {
		if err := prof.Stop(); err != nil {
			logger.Warn("Writing profiles: %v", err)
		}
		logger.Debug("Profiling stopped after %v: %s", prof.Duration(), profiler.Stats())
	}, nil
}

// addStyleFlags registers the flags that select the RuleSet.
func addStyleFlags(cmd *cobra.Command) {
	cmd.Flags().String("ruleset", "", "RuleSet document (yaml, json or toml)")
	cmd.Flags().String("preset", "", "Style preset ("+joinNames(ruleset.PresetNames())+")")
	cmd.Flags().String("ordering", "", "Declaration ordering (methodsFirst, propertiesFirst)")
	cmd.Flags().Int("max-line-length", 0, "Maximum declaration line length")
}

func runCheck(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg := currentConfig()

	// Apply flag overrides
	if err := applyFlagOverrides(cmd, cfg); err != nil {
		return err
	}

	// Initialize profiler if requested
	stop, err := startProfiler(cmd)
	if err != nil {
		return usageError(err)
	}
	defer stop()

	// Initialize persistent cache (optional)
	var options []runner.Option
	if noCache, _ := cmd.Flags().GetBool("no-cache"); !noCache && cfg.Cache.Enabled && cfg.Cache.Dir != "" {
		diskCache, err := cache.NewDiskCache(cfg.Cache.Dir, cfg.Cache.TTL)
		if err != nil {
			return err
		}
		defer func() {
			if err := diskCache.Close(); err != nil {
				logger.Warn("Closing cache: %v", err)
			}
		}()
		options = append(options, runner.WithCache(diskCache))
	}

	// Create and run engine
	engine, err := newEngine(cfg, false, options...)
	if err != nil {
		return err
	}

	result, err := runSelection(cmd, engine, args)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	// A history failure never fails the check
	runID := uuid.New().String()
	if err := recordHistory(cmd.Context(), cfg, runID, result); err != nil {
		logger.Warn("Recording history: %v", err)
	}

	// Generate report
	reporter, err := report.NewReporter(cfg.Output.Format,
		report.WithColor(cfg.Output.Color && cfg.Output.File == ""),
		report.WithVersion(Version),
		report.WithRunID(runID))
	if err != nil {
		return usageError(err)
	}

	output, err := reporter.Generate(result.Filter(minSeverity(cfg)))
	if err != nil {
		return fmt.Errorf("generating report: %w", err)
	}
	// Write output
	if err := WriteOutput(cmd.OutOrStdout(), output, cfg.Output.File); err != nil {
		return err
	}

	// Exit with error code if violations reach --fail-on
	return failure(cfg, result)
}

// applyFlagOverrides copies explicitly set flags over cfg and validates
// the result.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	// Output flags; a known report extension picks the format
	if flags.Changed("output") {
		cfg.Output.File, _ = flags.GetString("output")
		if format := DetectFormatFromPath(cfg.Output.File); format != "" && !flags.Changed("format") {
			cfg.Output.Format = format
		}
	}
	if flags.Changed("format") {
		cfg.Output.Format, _ = flags.GetString("format")
	}
	if flags.Changed("min-severity") {
		cfg.Output.MinSeverity, _ = flags.GetString("min-severity")
	}
	if noColor, _ := flags.GetBool("no-color"); noColor {
		cfg.Output.Color = false
	}

	applyStyleOverrides(cmd, cfg)

	// Behavior flags
	if flags.Changed("concurrency") {
		cfg.Run.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("baseline") {
		cfg.Baseline.File, _ = flags.GetString("baseline")
	}
	if flags.Changed("fail-on") {
		cfg.Run.FailOn, _ = flags.GetString("fail-on")
	}

	if err := cfg.Validate(); err != nil {
		return usageError(err)
	}
	return nil
}

// applyStyleOverrides copies the style flags over cfg.
func applyStyleOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("ruleset") {
		cfg.Style.File, _ = flags.GetString("ruleset")
	}
	if flags.Changed("preset") {
		cfg.Style.Preset, _ = flags.GetString("preset")
	}
	if flags.Changed("ordering") {
		ordering, _ := flags.GetString("ordering")
		cfg.Style.Ordering = ruleset.Ordering(ordering)
	}
	if flags.Changed("max-line-length") {
		cfg.Style.MaxLineLength, _ = flags.GetInt("max-line-length")
	}
}
