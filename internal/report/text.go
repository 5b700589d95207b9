package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/JNZader/declint/internal/ruleset"
	"github.com/JNZader/declint/internal/runner"
)

var (
	colorError   = lipgloss.Color("#EF4444")
	colorWarning = lipgloss.Color("#F59E0B")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorSuccess = lipgloss.Color("#10B981")

	fileStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
)

// TextReporter prints violations grouped by file, for terminals.
type TextReporter struct {
	Color bool
}

func (r *TextReporter) Format() string { return "text" }

func (r *TextReporter) Generate(result *runner.Result) (string, error) {
	return generate(r, result)
}

func (r *TextReporter) Write(result *runner.Result, w io.Writer) error {
	for _, file := range result.Files {
		if file.Error != nil {
			fmt.Fprintf(w, "%s\n  %s %s\n\n", r.style(fileStyle, file.Path), r.style(errorStyle, "error"), file.ErrorMessage)
			continue
		}
		if len(file.Violations) == 0 {
			continue
		}

		fmt.Fprintln(w, r.style(fileStyle, file.Path))
		for _, v := range file.Violations {
			fmt.Fprintf(w, "  %-6s %s %s %s\n    %s\n",
				r.style(mutedStyle, lineOf(v.Decl.Line)),
				r.severity(v.Severity),
				r.style(mutedStyle, fmt.Sprintf("%-8s", v.RuleID)),
				subject(v),
				v.Message)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, r.summary(result))
	return nil
}

func (r *TextReporter) summary(result *runner.Result) string {
	counts := result.CountBySeverity()
	total := result.TotalViolations()
	line := fmt.Sprintf("%s (%d errors, %d warnings, %d info) in %s",
		plural(total, "violation"),
		counts[ruleset.SeverityError], counts[ruleset.SeverityWarning], counts[ruleset.SeverityInfo],
		plural(len(result.Files), "file"))
	if s := result.TotalSuppressed(); s > 0 {
		line += fmt.Sprintf(", %d suppressed by baseline", s)
	}
	if failed := len(result.FailedFiles()); failed > 0 {
		line += fmt.Sprintf(", %s failed", plural(failed, "file"))
	}

	if total == 0 && len(result.FailedFiles()) == 0 {
		return r.style(successStyle, line)
	}
	return line
}

func (r *TextReporter) severity(s ruleset.Severity) string {
	label := fmt.Sprintf("%-7s", s)
	switch s {
	case ruleset.SeverityError:
		return r.style(errorStyle, label)
	case ruleset.SeverityWarning:
		return r.style(warningStyle, label)
	default:
		return r.style(infoStyle, label)
	}
}

func (r *TextReporter) style(s lipgloss.Style, text string) string {
	if !r.Color {
		return text
	}
	return s.Render(text)
}

func lineOf(line int) string {
	if line <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d", line)
}
