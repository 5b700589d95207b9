package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JNZader/declint/internal/baseline"
)

// defaultBaselineFile is used when neither -o nor baseline.file is set.
const defaultBaselineFile = ".declint-baseline.toml"

var baselineCmd = &cobra.Command{
	Use:   "baseline [paths...]",
	Short: "Record current violations as accepted",
	Long: `Check the given paths and write every violation found to a
baseline file. Later checks with --baseline report only new violations.

Examples:
  # Accept everything currently reported under Sources
  declint baseline Sources

  # Write to a custom file
  declint baseline -o ci/declint-baseline.toml`,
	RunE: runBaseline,
}

func init() {
	rootCmd.AddCommand(baselineCmd)

	// Output flags
	baselineCmd.Flags().StringP("output", "o", "", "Baseline file to write (default "+defaultBaselineFile+")")
	addStyleFlags(baselineCmd)
	baselineCmd.Flags().Int("concurrency", 0, "Max concurrent file checks (0=auto)")
}

func runBaseline(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg := currentConfig()

	// Apply flag overrides
	applyStyleOverrides(cmd, cfg)
	if cmd.Flags().Changed("concurrency") {
		cfg.Run.Concurrency, _ = cmd.Flags().GetInt("concurrency")
	}

	// -o, then baseline.file, then the default name
	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		path = cfg.Baseline.File
	}
	if path == "" {
		path = defaultBaselineFile
	}

	// Run without a baseline so every violation is recorded
	engine, err := newEngine(cfg, true)
	if err != nil {
		return err
	}

	result, err := engine.Run(cmd.Context(), args)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	for _, f := range result.FailedFiles() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s not recorded: %s\n", f.Path, f.ErrorMessage)
	}

	// Write baseline
	b := baseline.FromViolations(result.Violations())
	if err := b.Write(path); err != nil {
		return fmt.Errorf("writing baseline: %w", err)
	}

	if !isQuiet() {
		fmt.Fprintf(cmd.OutOrStdout(), "Baseline written to %s (%d entries)\n", path, b.Count())
	}
	return nil
}
