package report

import (
	"encoding/json"
	"io"

	"github.com/JNZader/declint/internal/runner"
)

// JSONReporter generates JSON reports.
type JSONReporter struct {
	Indent  bool
	RunID   string
	Version string
}

func (r *JSONReporter) Format() string { return "json" }

type jsonReport struct {
	RunID       string              `json:"run_id"`
	Tool        string              `json:"tool"`
	Version     string              `json:"version"`
	RuleSet     string              `json:"ruleset"`
	Fingerprint string              `json:"fingerprint"`
	DurationMS  int64               `json:"duration_ms"`
	Summary     jsonSummary         `json:"summary"`
	Files       []runner.FileResult `json:"files"`
}

type jsonSummary struct {
	Files      int            `json:"files"`
	Failed     int            `json:"failed"`
	Violations int            `json:"violations"`
	Suppressed int            `json:"suppressed"`
	BySeverity map[string]int `json:"by_severity"`
}

func (r *JSONReporter) build(result *runner.Result) jsonReport {
	bySeverity := make(map[string]int)
	for sev, n := range result.CountBySeverity() {
		bySeverity[string(sev)] = n
	}
	return jsonReport{
		RunID:       r.RunID,
		Tool:        "declint",
		Version:     r.Version,
		RuleSet:     result.RuleSet,
		Fingerprint: result.Fingerprint,
		DurationMS:  result.Duration.Milliseconds(),
		Summary: jsonSummary{
			Files:      len(result.Files),
			Failed:     len(result.FailedFiles()),
			Violations: result.TotalViolations(),
			Suppressed: result.TotalSuppressed(),
			BySeverity: bySeverity,
		},
		Files: result.Files,
	}
}

func (r *JSONReporter) Generate(result *runner.Result) (string, error) {
	return generate(r, result)
}

func (r *JSONReporter) Write(result *runner.Result, w io.Writer) error {
	encoder := json.NewEncoder(w)
	if r.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(r.build(result))
}
