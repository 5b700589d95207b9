package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/JNZader/declint/internal/config"
	"github.com/JNZader/declint/internal/history"
	"github.com/JNZader/declint/internal/runner"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recorded check runs",
	Long: `List the check runs recorded in history.file, newest first. With a
run ID, show that run's violation counts per rule.

Runs are recorded by "declint check" when history.file is configured.

Examples:
  # Last 10 runs
  declint history --limit 10

  # Rule breakdown of one run
  declint history 0f8e7a3c-...

  # Find stored ORD-001 violations under Sources
  declint history --rule ORD-001 --file 'Sources/*'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().String("file", "", "History database (overrides history.file)")
	historyCmd.Flags().Int("limit", 20, "Maximum rows to show")
	historyCmd.Flags().String("rule", "", "Search stored violations of this rule")
	historyCmd.Flags().String("path", "", "Search stored violations in files matching this pattern")
	historyCmd.Flags().String("text", "", "Full-text search on violation messages")
	historyCmd.Flags().Bool("json", false, "output as JSON")
}

// recordHistory stores result when a history database is configured.
func recordHistory(ctx context.Context, cfg *config.Config, runID string, result *runner.Result) error {
	if cfg.History.File == "" {
		return nil
	}

	store, err := history.NewStore(history.StoreConfig{Path: cfg.History.File})
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.Record(ctx, runID, result, time.Now()); err != nil {
		return err
	}
	// Drop runs older than history.keep
	if cfg.History.Keep > 0 {
		if _, err := store.Prune(ctx, cfg.History.Keep); err != nil {
			return err
		}
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := currentConfig()
	flags := cmd.Flags()

	// Open the store named by --file or history.file
	path := cfg.History.File
	if flags.Changed("file") {
		path, _ = flags.GetString("file")
	}
	if path == "" {
		return usageError(fmt.Errorf("no history database: set history.file or pass --file"))
	}

	store, err := history.NewStore(history.StoreConfig{Path: path})
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	limit, _ := flags.GetInt("limit")
	asJSON, _ := flags.GetBool("json")
	out := cmd.OutOrStdout()

	rule, _ := flags.GetString("rule")
	file, _ := flags.GetString("path")
	text, _ := flags.GetString("text")

	// Search, one run's breakdown, or the run list
	switch {
	case rule != "" || file != "" || text != "":
		q := history.SearchQuery{Rule: rule, File: file, Text: text, Limit: limit}
		if len(args) == 1 {
			q.RunID = args[0]
		}
		records, err := store.Search(ctx, q)
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(cmd, records)
		}
		t := newTable(cmd)
		t.AppendHeader(table.Row{"Run", "File", "Line", "Declaration", "Rule", "Severity", "Message"})
		for _, r := range records {
			t.AppendRow(table.Row{shortID(r.RunID), r.FilePath, r.Line, r.Interface + "." + r.Name, r.Rule, r.Severity, r.Message})
		}
		t.Render()

	case len(args) == 1:
		counts, err := store.RuleCounts(ctx, args[0])
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(cmd, counts)
		}
		if len(counts) == 0 {
			fmt.Fprintf(out, "No violations recorded for run %s\n", args[0])
			return nil
		}
		t := newTable(cmd)
		t.AppendHeader(table.Row{"Rule", "Violations"})
		for _, c := range counts {
			t.AppendRow(table.Row{c.Rule, c.Count})
		}
		t.Render()

	default:
		runs, err := store.Runs(ctx, limit)
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(cmd, runs)
		}
		t := newTable(cmd)
		t.AppendHeader(table.Row{"Run", "When", "Ruleset", "Files", "Failed", "Violations", "Suppressed"})
		for _, r := range runs {
			t.AppendRow(table.Row{r.RunID, r.CreatedAt.Local().Format(time.DateTime), r.RuleSet, r.Files, r.Failed, r.Violations, r.Suppressed})
		}
		t.Render()
	}
	return nil
}

func newTable(cmd *cobra.Command) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	return t
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
