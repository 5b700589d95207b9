package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/JNZader/declint/internal/checker"
	"github.com/JNZader/declint/internal/ruleset"
)

var rulesCmd = &cobra.Command{
	Use:   "rules [id]",
	Short: "List the style rules",
	Long: `List every rule with its category, severity and whether the
configured style enables it. With an ID, show only that rule.

Examples:
  # List all rules
  declint rules

  # Show one rule
  declint rules ORD-001

  # List rules as JSON under the strict preset
  declint rules --preset strict --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)

	rulesCmd.Flags().StringP("format", "f", "table", "Output format (table, markdown, json)")
	addStyleFlags(rulesCmd)
}

// ruleInfo describes a rule under the effective RuleSet.
type ruleInfo struct {
	ID          string           `json:"id"`
	Category    checker.Category `json:"category"`
	Severity    ruleset.Severity `json:"severity"`
	Default     ruleset.Severity `json:"default_severity"`
	Enabled     bool             `json:"enabled"`
	Description string           `json:"description"`
}

func runRules(cmd *cobra.Command, args []string) error {
	// Resolve the effective RuleSet so severities reflect overrides
	cfg := currentConfig()
	applyStyleOverrides(cmd, cfg)
	rs, err := cfg.RuleSet()
	if err != nil {
		return usageError(err)
	}

	registry := checker.DefaultRegistry()
	rules := registry.All()
	if len(args) == 1 {
		rule, ok := registry.Get(strings.ToUpper(args[0]))
		if !ok {
			return usageError(fmt.Errorf("unknown rule %q, must be one of: %s", args[0], joinNames(ruleset.RuleIDs())))
		}
		rules = []checker.Rule{rule}
	}

	infos := make([]ruleInfo, 0, len(rules))
	for _, rule := range rules {
		infos = append(infos, ruleInfo{
			ID:          rule.ID(),
			Category:    rule.Category(),
			Severity:    rs.Severity(rule.ID(), rule.DefaultSeverity()),
			Default:     rule.DefaultSeverity(),
			Enabled:     rs.Enabled(rule.ID()),
			Description: rule.Description(),
		})
	}

	// Validate format
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		data, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal rules: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	case "table", "markdown":
	default:
		return usageError(fmt.Errorf("invalid format %q, must be: table, markdown, or json", format))
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Category", "Severity", "Enabled", "Description"})
	for _, info := range infos {
		enabled := "yes"
		if !info.Enabled {
			enabled = "no"
		}
		t.AppendRow(table.Row{info.ID, info.Category, info.Severity, enabled, info.Description})
	}

	if format == "markdown" {
		t.RenderMarkdown()
		return nil
	}
	t.SetCaption("ruleset: %s", rs.Name())
	t.Render()
	return nil
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}
