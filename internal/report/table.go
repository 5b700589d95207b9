package report

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/JNZader/declint/internal/runner"
)

// TableReporter prints one row per violation.
type TableReporter struct{}

func (r *TableReporter) Format() string { return "table" }

func (r *TableReporter) Generate(result *runner.Result) (string, error) {
	return generate(r, result)
}

func (r *TableReporter) Write(result *runner.Result, w io.Writer) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Location", "Declaration", "Rule", "Severity", "Message"})

	for _, file := range result.Files {
		if file.Error != nil {
			t.AppendRow(table.Row{file.Path, "", "", "error", file.ErrorMessage})
			continue
		}
		for _, v := range file.Violations {
			t.AppendRow(table.Row{location(v), subject(v), v.RuleID, string(v.Severity), v.Message})
		}
	}

	t.AppendFooter(table.Row{plural(len(result.Files), "file"), "", "", "", plural(result.TotalViolations(), "violation")})
	t.Render()
	return nil
}
