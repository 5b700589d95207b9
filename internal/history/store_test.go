package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JNZader/declint/internal/checker"
	"github.com/JNZader/declint/internal/ruleset"
	"github.com/JNZader/declint/internal/runner"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(StoreConfig{Path: filepath.Join(t.TempDir(), "history", "runs.db")})
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func violation(iface, name, rule string, sev ruleset.Severity, msg string) checker.Violation {
	return checker.Violation{
		Decl:     checker.DeclRef{Interface: iface, Name: name, Line: 10},
		RuleID:   rule,
		Severity: sev,
		Message:  msg,
	}
}

func sampleResult() *runner.Result {
	return &runner.Result{
		RuleSet:     "default",
		Fingerprint: "f00d",
		Duration:    15 * time.Millisecond,
		Files: []runner.FileResult{
			{
				Path: "Sources/CGExample.h",
				Violations: []checker.Violation{
					violation("CGExample", "attribute", ruleset.RuleMemoryOmitted, ruleset.SeverityWarning, "memory management keyword omitted"),
					violation("CGExample", "initWithFrame", ruleset.RuleSplitUnavoidable, ruleset.SeverityInfo, "split is unavoidable"),
					violation("CGExample", "initWithStyle", ruleset.RuleSplitUnavoidable, ruleset.SeverityInfo, "split is unavoidable"),
				},
				Suppressed: 1,
			},
			{Path: "Sources/PROrder.decl.yaml"},
		},
	}
}

func TestNewStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	store, err := NewStore(StoreConfig{Path: dbPath})
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestRecordAndRuns(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	first, err := store.Record(ctx, "run-1", sampleResult(), time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if first.ID == 0 {
		t.Error("run ID was not set after insert")
	}
	if first.Violations != 3 || first.Suppressed != 1 || first.Files != 2 {
		t.Errorf("unexpected run summary: %+v", first)
	}

	if _, err := store.Record(ctx, "run-2", &runner.Result{RuleSet: "strict"}, time.Now()); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	runs, err := store.Runs(ctx, 10)
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunID != "run-2" || runs[1].RunID != "run-1" {
		t.Errorf("runs not newest first: %s, %s", runs[0].RunID, runs[1].RunID)
	}

	if _, err := store.Record(ctx, "run-1", sampleResult(), time.Now()); err == nil {
		t.Error("expected an error for a duplicate run ID")
	}
}

func TestSearch(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if _, err := store.Record(ctx, "run-1", sampleResult(), time.Now()); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	tests := []struct {
		name  string
		query SearchQuery
		want  int
	}{
		{"all", SearchQuery{}, 3},
		{"by rule", SearchQuery{Rule: "len-003"}, 2},
		{"by severity", SearchQuery{Severity: "warning"}, 1},
		{"by file pattern", SearchQuery{File: "Sources/*.h"}, 3},
		{"no file match", SearchQuery{File: "Tests/*"}, 0},
		{"full text", SearchQuery{Text: "unavoidable"}, 2},
		{"by run", SearchQuery{RunID: "run-9"}, 0},
		{"limit", SearchQuery{Limit: 1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := store.Search(ctx, tt.query)
			if err != nil {
				t.Fatalf("Search failed: %v", err)
			}
			if len(records) != tt.want {
				t.Errorf("got %d records, want %d", len(records), tt.want)
			}
		})
	}
}

func TestRuleCounts(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if _, err := store.Record(ctx, "run-1", sampleResult(), time.Now()); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	counts, err := store.RuleCounts(ctx, "run-1")
	if err != nil {
		t.Fatalf("RuleCounts failed: %v", err)
	}
	want := []RuleCount{
		{Rule: ruleset.RuleSplitUnavoidable, Count: 2},
		{Rule: ruleset.RuleMemoryOmitted, Count: 1},
	}
	if len(counts) != len(want) {
		t.Fatalf("got %v, want %v", counts, want)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("counts[%d] = %v, want %v", i, counts[i], want[i])
		}
	}
}

func TestPrune(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if _, err := store.Record(ctx, "old", sampleResult(), time.Now().Add(-48*time.Hour)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Record(ctx, "new", sampleResult(), time.Now()); err != nil {
		t.Fatal(err)
	}

	n, err := store.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d runs, want 1", n)
	}

	records, err := store.Search(ctx, SearchQuery{})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range records {
		if r.RunID == "old" {
			t.Error("violations of a pruned run remain")
		}
	}
	if len(records) != 3 {
		t.Errorf("expected the new run's 3 violations, got %d", len(records))
	}
}
