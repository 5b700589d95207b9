package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/JNZader/declint/internal/checker"
	"github.com/JNZader/declint/internal/ruleset"
	"github.com/JNZader/declint/internal/runner"
)

// MarkdownReporter generates Markdown reports.
type MarkdownReporter struct{}

func (r *MarkdownReporter) Format() string { return "markdown" }

func (r *MarkdownReporter) Generate(result *runner.Result) (string, error) {
	return generate(r, result)
}

func (r *MarkdownReporter) Write(result *runner.Result, w io.Writer) error {
	counts := result.CountBySeverity()

	fmt.Fprintf(w, "# Declaration Style Report\n\n")

	fmt.Fprintf(w, "## Summary\n\n")
	fmt.Fprintf(w, "- **Files Checked:** %d\n", len(result.Files))
	fmt.Fprintf(w, "- **Violations:** %d (%d errors, %d warnings, %d info)\n",
		result.TotalViolations(), counts[ruleset.SeverityError], counts[ruleset.SeverityWarning], counts[ruleset.SeverityInfo])
	if s := result.TotalSuppressed(); s > 0 {
		fmt.Fprintf(w, "- **Suppressed:** %d\n", s)
	}
	if result.RuleSet != "" {
		fmt.Fprintf(w, "- **Ruleset:** %s (`%s`)\n", result.RuleSet, result.Fingerprint)
	}
	fmt.Fprintf(w, "- **Duration:** %s\n\n", result.Duration)

	if result.TotalViolations() == 0 && len(result.FailedFiles()) == 0 {
		fmt.Fprintf(w, "No violations found.\n")
		return nil
	}

	fmt.Fprintf(w, "## Violations\n\n")

	for _, file := range result.Files {
		if file.Error != nil {
			fmt.Fprintf(w, "### %s\n\n", file.Path)
			fmt.Fprintf(w, "Error: %s\n\n", file.ErrorMessage)
			continue
		}
		if len(file.Violations) == 0 {
			continue
		}

		fmt.Fprintf(w, "### %s\n\n", file.Path)
		if file.Cached {
			fmt.Fprintf(w, "_Cached result_\n\n")
		}

		fmt.Fprintf(w, "| Line | Declaration | Rule | Severity | Message |\n")
		fmt.Fprintf(w, "|---:|---|---|---|---|\n")
		for _, v := range file.Violations {
			r.writeViolation(w, v)
		}
		fmt.Fprintf(w, "\n")
	}

	return nil
}

func (r *MarkdownReporter) writeViolation(w io.Writer, v checker.Violation) {
	fmt.Fprintf(w, "| %s | `%s` | %s | %s %s | %s |\n",
		lineOf(v.Decl.Line), subject(v), v.RuleID, r.severityIcon(v.Severity), v.Severity, escapeCell(v.Message))
}

func (r *MarkdownReporter) severityIcon(severity ruleset.Severity) string {
	switch severity {
	case ruleset.SeverityError:
		return "[ERROR]"
	case ruleset.SeverityWarning:
		return "[WARNING]"
	default:
		return "[INFO]"
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
