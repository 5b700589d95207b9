package runner

import (
	"time"

	"github.com/JNZader/declint/internal/checker"
	"github.com/JNZader/declint/internal/ruleset"
)

// Result contains the outcome of one check run.
type Result struct {
	RuleSet     string        `json:"ruleset"`
	Fingerprint string        `json:"fingerprint"`
	Duration    time.Duration `json:"duration"`
	Files       []FileResult  `json:"files"`
}

// FileResult contains the outcome for a single file.
type FileResult struct {
	Path         string              `json:"path"`
	Interfaces   int                 `json:"interfaces"`
	Declarations int                 `json:"declarations"`
	Violations   []checker.Violation `json:"violations"`
	Suppressed   int                 `json:"suppressed,omitempty"`
	Cached       bool                `json:"cached,omitempty"`
	Error        error               `json:"-"`
	ErrorMessage string              `json:"error,omitempty"`
}

func (f *FileResult) fail(err error) *FileResult {
	f.Error = err
	f.ErrorMessage = err.Error()
	return f
}

// Violations returns every violation of the run in file order.
func (r *Result) Violations() []checker.Violation {
	var out []checker.Violation
	for _, f := range r.Files {
		out = append(out, f.Violations...)
	}
	return out
}

// TotalViolations returns the number of reported violations.
func (r *Result) TotalViolations() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Violations)
	}
	return n
}

// TotalSuppressed returns the number of violations hidden by the baseline.
func (r *Result) TotalSuppressed() int {
	n := 0
	for _, f := range r.Files {
		n += f.Suppressed
	}
	return n
}

// FailedFiles returns the files that could not be read or parsed.
func (r *Result) FailedFiles() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Error != nil {
			out = append(out, f)
		}
	}
	return out
}

// CountBySeverity tallies violations per severity.
func (r *Result) CountBySeverity() map[ruleset.Severity]int {
	counts := map[ruleset.Severity]int{
		ruleset.SeverityError:   0,
		ruleset.SeverityWarning: 0,
		ruleset.SeverityInfo:    0,
	}
	for _, f := range r.Files {
		for _, v := range f.Violations {
			counts[v.Severity]++
		}
	}
	return counts
}

// HasErrors reports whether the run should fail at the given threshold: a
// violation at or above min, or a file that could not be checked.
func (r *Result) HasErrors(min ruleset.Severity) bool {
	for _, f := range r.Files {
		if f.Error != nil {
			return true
		}
		for _, v := range f.Violations {
			if v.Severity.AtLeast(min) {
				return true
			}
		}
	}
	return false
}

// Filter returns a copy of the result without violations below min.
func (r *Result) Filter(min ruleset.Severity) *Result {
	out := *r
	out.Files = make([]FileResult, len(r.Files))
	for i, f := range r.Files {
		kept := make([]checker.Violation, 0, len(f.Violations))
		for _, v := range f.Violations {
			if v.Severity.AtLeast(min) {
				kept = append(kept, v)
			}
		}
		f.Violations = kept
		out.Files[i] = f
	}
	return &out
}
