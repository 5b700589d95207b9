package report

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JNZader/declint/internal/checker"
	"github.com/JNZader/declint/internal/ruleset"
	"github.com/JNZader/declint/internal/runner"
)

func sampleResult() *runner.Result {
	return &runner.Result{
		RuleSet:     "default",
		Fingerprint: "abc123",
		Duration:    42 * time.Millisecond,
		Files: []runner.FileResult{
			{
				Path:         "Sources/CGExample.h",
				Interfaces:   1,
				Declarations: 4,
				Violations: []checker.Violation{
					{
						Decl:     checker.DeclRef{Interface: "CGExample", Index: 0, Name: "title", File: "Sources/CGExample.h", Line: 12},
						RuleID:   ruleset.RuleGroupingOrder,
						Message:  "instance property declared before class method load",
						Severity: ruleset.SeverityWarning,
					},
					{
						Decl:     checker.DeclRef{Interface: "CGExample", Index: 2, Name: "reload", File: "Sources/CGExample.h", Line: 20},
						RuleID:   ruleset.RuleSpacing,
						Message:  "expected a single space | after the return type",
						Severity: ruleset.SeverityError,
					},
				},
				Suppressed: 1,
			},
			{Path: "Sources/Clean.decl.yaml", Interfaces: 1, Declarations: 2, Violations: []checker.Violation{}, Cached: true},
			{Path: "Sources/Broken.h", Error: errors.New("unterminated declaration at line 3"), ErrorMessage: "unterminated declaration at line 3"},
		},
	}
}

func TestNewReporter(t *testing.T) {
	for _, format := range AvailableFormats() {
		r, err := NewReporter(format)
		require.NoError(t, err, format)
		assert.Equal(t, format, r.Format())
	}

	r, err := NewReporter("md")
	require.NoError(t, err)
	assert.Equal(t, "markdown", r.Format())

	_, err = NewReporter("xml")
	assert.Error(t, err)
}

func TestTextReporter(t *testing.T) {
	r, err := NewReporter("text", WithColor(false))
	require.NoError(t, err)

	out, err := r.Generate(sampleResult())
	require.NoError(t, err)

	assert.Contains(t, out, "Sources/CGExample.h")
	assert.Contains(t, out, "CGExample.title")
	assert.Contains(t, out, ruleset.RuleGroupingOrder)
	assert.Contains(t, out, "unterminated declaration at line 3")
	assert.NotContains(t, out, "Clean.decl.yaml", "clean files are not listed")
	assert.Contains(t, out, "2 violations (1 errors, 1 warnings, 0 info) in 3 files, 1 suppressed by baseline, 1 file failed")
	assert.NotContains(t, out, "\x1b[", "no escape codes without color")
}

func TestTextReporter_Clean(t *testing.T) {
	r := &TextReporter{}
	out, err := r.Generate(&runner.Result{Files: []runner.FileResult{{Path: "a.h"}}})
	require.NoError(t, err)
	assert.Equal(t, "0 violations (0 errors, 0 warnings, 0 info) in 1 file\n", out)
}

func TestTableReporter(t *testing.T) {
	r := &TableReporter{}
	out, err := r.Generate(sampleResult())
	require.NoError(t, err)

	assert.Contains(t, out, "LOCATION")
	assert.Contains(t, out, "Sources/CGExample.h:12")
	assert.Contains(t, out, "CGExample.reload")
	assert.Contains(t, out, "Sources/Broken.h")
	assert.Contains(t, strings.ToUpper(out), "2 VIOLATIONS")
}

func TestMarkdownReporter(t *testing.T) {
	r := &MarkdownReporter{}
	out, err := r.Generate(sampleResult())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "# Declaration Style Report"))
	assert.Contains(t, out, "- **Violations:** 2 (1 errors, 1 warnings, 0 info)")
	assert.Contains(t, out, "- **Suppressed:** 1")
	assert.Contains(t, out, "### Sources/Broken.h")
	assert.Contains(t, out, "| 12 | `CGExample.title` | ORD-001 | [WARNING] warning |")
	assert.Contains(t, out, `single space \| after`)
}

func TestMarkdownReporter_Clean(t *testing.T) {
	r := &MarkdownReporter{}
	out, err := r.Generate(&runner.Result{})
	require.NoError(t, err)
	assert.Contains(t, out, "No violations found.")
}

func TestJSONReporter(t *testing.T) {
	r, err := NewReporter("json", WithRunID("run-1"), WithVersion("1.2.3"))
	require.NoError(t, err)

	out, err := r.Generate(sampleResult())
	require.NoError(t, err)

	var decoded struct {
		RunID   string `json:"run_id"`
		Tool    string `json:"tool"`
		Version string `json:"version"`
		RuleSet string `json:"ruleset"`
		Summary struct {
			Files      int            `json:"files"`
			Failed     int            `json:"failed"`
			Violations int            `json:"violations"`
			Suppressed int            `json:"suppressed"`
			BySeverity map[string]int `json:"by_severity"`
		} `json:"summary"`
		Files []struct {
			Path       string `json:"path"`
			Error      string `json:"error"`
			Violations []struct {
				RuleID string `json:"rule_id"`
			} `json:"violations"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	assert.Equal(t, "run-1", decoded.RunID)
	assert.Equal(t, "declint", decoded.Tool)
	assert.Equal(t, "1.2.3", decoded.Version)
	assert.Equal(t, "default", decoded.RuleSet)
	assert.Equal(t, 3, decoded.Summary.Files)
	assert.Equal(t, 1, decoded.Summary.Failed)
	assert.Equal(t, 2, decoded.Summary.Violations)
	assert.Equal(t, 1, decoded.Summary.BySeverity["error"])
	require.Len(t, decoded.Files, 3)
	assert.Equal(t, "ORD-001", decoded.Files[0].Violations[0].RuleID)
	assert.Equal(t, "unterminated declaration at line 3", decoded.Files[2].Error)
}

func TestJSONReporter_GeneratesRunID(t *testing.T) {
	a, err := NewReporter("json")
	require.NoError(t, err)
	b, err := NewReporter("json")
	require.NoError(t, err)

	assert.NotEmpty(t, a.(*JSONReporter).RunID)
	assert.NotEqual(t, a.(*JSONReporter).RunID, b.(*JSONReporter).RunID)
}

func TestSARIFReporter(t *testing.T) {
	r, err := NewReporter("sarif", WithRunID("run-7"), WithVersion("0.9.0"))
	require.NoError(t, err)

	out, err := r.Generate(sampleResult())
	require.NoError(t, err)

	var report sarifReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	assert.Equal(t, sarifSchema, report.Schema)
	assert.Equal(t, "2.1.0", report.Version)
	require.Len(t, report.Runs, 1)

	run := report.Runs[0]
	assert.Equal(t, "declint", run.Tool.Driver.Name)
	assert.Equal(t, "run-7", run.AutomationDetails.ID)
	assert.Len(t, run.Tool.Driver.Rules, len(checker.DefaultRegistry().All()))

	require.Len(t, run.Results, 2)
	first := run.Results[0]
	assert.Equal(t, ruleset.RuleGroupingOrder, first.RuleID)
	assert.Equal(t, "warning", first.Level)
	assert.Equal(t, ruleset.RuleGroupingOrder, run.Tool.Driver.Rules[first.RuleIndex].ID)
	assert.Equal(t, "Sources/CGExample.h", first.Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Equal(t, 12, first.Locations[0].PhysicalLocation.Region.StartLine)
	assert.Equal(t, "CGExample.title", first.Locations[0].LogicalLocations[0].FullyQualifiedName)
	assert.Equal(t, "error", run.Results[1].Level)

	require.Len(t, run.Invocations, 1)
	assert.False(t, run.Invocations[0].ExecutionSuccessful)
	require.Len(t, run.Invocations[0].Notifications, 1)
	assert.Equal(t, "Sources/Broken.h", run.Invocations[0].Notifications[0].Locations[0].PhysicalLocation.ArtifactLocation.URI)
}

func TestMapLevel(t *testing.T) {
	assert.Equal(t, "error", mapLevel(ruleset.SeverityError))
	assert.Equal(t, "warning", mapLevel(ruleset.SeverityWarning))
	assert.Equal(t, "note", mapLevel(ruleset.SeverityInfo))
}
