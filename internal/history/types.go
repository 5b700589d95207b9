// Package history stores check runs in SQLite so violation counts can be
// followed over time.
package history

import "time"

// RunRecord summarizes one stored check run.
type RunRecord struct {
	ID          int64     `json:"id"`
	RunID       string    `json:"run_id"`
	RuleSet     string    `json:"ruleset"`
	Fingerprint string    `json:"fingerprint"`
	Files       int       `json:"files"`
	Failed      int       `json:"failed"`
	Violations  int       `json:"violations"`
	Suppressed  int       `json:"suppressed"`
	DurationMS  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// ViolationRecord is one violation reported by a stored run.
type ViolationRecord struct {
	ID        int64  `json:"id"`
	RunID     string `json:"run_id"`
	FilePath  string `json:"file_path"`
	Interface string `json:"interface"`
	Name      string `json:"name"`
	Line      int    `json:"line,omitempty"`
	Rule      string `json:"rule"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
}

// SearchQuery filters stored violations.
type SearchQuery struct {
	// Text performs full-text search on the message
	Text string
	// File filters by file path (supports * wildcards)
	File string
	// Rule filters by rule ID
	Rule string
	// Severity filters by severity
	Severity string
	// RunID restricts the search to one run
	RunID string
	// Limit restricts result count
	Limit int
}

// RuleCount is the number of violations of one rule in a run.
type RuleCount struct {
	Rule  string `json:"rule"`
	Count int    `json:"count"`
}
