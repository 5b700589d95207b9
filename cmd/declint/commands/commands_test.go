package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/JNZader/declint/internal/ruleset"
)

const orderDocument = `
interfaces:
  - name: PROrder
    kind: class
    declarations:
      - kind: property
        name: title
        type: "NSString *"
        attributes: [nonatomic, copy]
      - kind: method
        static: true
        name: load
        return_type: void
`

// resetFlags restores flag defaults and drops the context a previous
// Execute left on each command; cobra only fills in a missing one.
func resetFlags(cmd *cobra.Command) {
	cmd.SetContext(context.Background())
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the CLI in an empty working directory and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	loadedConfig, configUsed = nil, ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append([]string{"--quiet"}, args...))
	err := Execute()
	return out.String(), err
}

// workspace creates a project directory, makes it the working directory
// and returns it.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)

	src := filepath.Join(dir, "Sources")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "PROrder.decl.yaml"), []byte(orderDocument), 0o600); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestCheck_FailsOnWarning(t *testing.T) {
	dir := workspace(t)

	out, err := execute(t, "check", filepath.Join(dir, "Sources"), "--no-color")
	if ExitCode(err) != ExitViolations {
		t.Fatalf("ExitCode = %d (err %v), want %d", ExitCode(err), err, ExitViolations)
	}
	if !strings.Contains(out, ruleset.RuleGroupingOrder) {
		t.Errorf("output missing %s:\n%s", ruleset.RuleGroupingOrder, out)
	}
}

func TestExecute_RepeatedRunsGetLiveContext(t *testing.T) {
	dir := workspace(t)

	for i := 0; i < 3; i++ {
		if _, err := execute(t, "check", dir, "--fail-on", "none"); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
}

func TestCheck_FailOnError(t *testing.T) {
	dir := workspace(t)

	if _, err := execute(t, "check", dir, "--fail-on", "error"); err != nil {
		t.Errorf("expected success with --fail-on error, got %v", err)
	}
	if _, err := execute(t, "check", dir, "--fail-on", "none"); err != nil {
		t.Errorf("expected success with --fail-on none, got %v", err)
	}
}

func TestCheck_JSONFormat(t *testing.T) {
	dir := workspace(t)

	out, _ := execute(t, "check", dir, "--format", "json")
	if !strings.Contains(out, `"tool": "declint"`) || !strings.Contains(out, `"rule_id": "ORD-001"`) {
		t.Errorf("unexpected json output:\n%s", out)
	}
}

func TestCheck_OutputFileDetectsFormat(t *testing.T) {
	dir := workspace(t)
	path := filepath.Join(dir, "reports", "declint.sarif")

	out, err := execute(t, "check", dir, "-o", path)
	if ExitCode(err) != ExitViolations {
		t.Fatalf("ExitCode = %d (err %v)", ExitCode(err), err)
	}
	if out != "" {
		t.Errorf("expected nothing on stdout, got %q", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.Contains(string(data), `"version": "2.1.0"`) {
		t.Errorf("expected a SARIF report, got:\n%s", data)
	}
}

func TestCheck_MinSeverityHidesButStillFails(t *testing.T) {
	dir := workspace(t)

	out, err := execute(t, "check", dir, "--format", "json", "--min-severity", "error")
	if ExitCode(err) != ExitViolations {
		t.Errorf("ExitCode = %d, want %d", ExitCode(err), ExitViolations)
	}
	if strings.Contains(out, ruleset.RuleGroupingOrder) {
		t.Errorf("warning shown despite --min-severity error:\n%s", out)
	}
}

func TestCheck_PropertiesFirstIsClean(t *testing.T) {
	dir := workspace(t)

	if _, err := execute(t, "check", dir, "--ordering", "propertiesFirst"); err != nil {
		t.Errorf("expected a clean run under propertiesFirst, got %v", err)
	}
}

func TestCheck_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown ordering", []string{"check", ".", "--ordering", "alphabetical"}},
		{"unknown preset", []string{"check", ".", "--preset", "nope"}},
		{"invalid format", []string{"check", ".", "--format", "xml"}},
		{"invalid fail-on", []string{"check", ".", "--fail-on", "fatal"}},
		{"missing path", []string{"check", "does-not-exist"}},
		{"unknown flag", []string{"check", "--bogus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workspace(t)
			_, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if ExitCode(err) != ExitUsage {
				t.Errorf("ExitCode = %d (err %v), want %d", ExitCode(err), err, ExitUsage)
			}
		})
	}
}

func TestBaselineThenCheck(t *testing.T) {
	dir := workspace(t)
	path := filepath.Join(dir, "accepted.toml")

	out, err := execute(t, "baseline", dir, "-o", path)
	if err != nil {
		t.Fatalf("baseline failed: %v", err)
	}
	if out != "" {
		t.Errorf("quiet baseline printed %q", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("baseline not written: %v", err)
	}

	if _, err := execute(t, "check", dir, "--baseline", path); err != nil {
		t.Errorf("expected baseline to suppress every violation, got %v", err)
	}
}

func TestRules(t *testing.T) {
	workspace(t)

	out, err := execute(t, "rules")
	if err != nil {
		t.Fatalf("rules failed: %v", err)
	}
	for _, id := range ruleset.RuleIDs() {
		if !strings.Contains(out, id) {
			t.Errorf("rules output missing %s", id)
		}
	}

	out, err = execute(t, "rules", "ord-001", "--format", "json")
	if err != nil {
		t.Fatalf("rules ord-001 failed: %v", err)
	}
	if !strings.Contains(out, `"id": "ORD-001"`) || strings.Contains(out, "ATTR-001") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = execute(t, "rules", "--format", "markdown")
	if err != nil {
		t.Fatalf("rules markdown failed: %v", err)
	}
	if !strings.Contains(out, "| ORD-001 |") {
		t.Errorf("expected a markdown table:\n%s", out)
	}

	if _, err := execute(t, "rules", "NOPE-001"); ExitCode(err) != ExitUsage {
		t.Errorf("unknown rule: ExitCode = %d, want %d", ExitCode(err), ExitUsage)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	dir := workspace(t)

	if _, err := execute(t, "config", "init"); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, defaultConfigFile)); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	if _, err := execute(t, "config", "init"); ExitCode(err) != ExitUsage {
		t.Errorf("second init: ExitCode = %d, want %d", ExitCode(err), ExitUsage)
	}
	if _, err := execute(t, "config", "init", "--force"); err != nil {
		t.Errorf("config init --force failed: %v", err)
	}

	out, err := execute(t, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out, "format: text") || !strings.Contains(out, "fail_on: warning") {
		t.Errorf("unexpected config show output:\n%s", out)
	}
}

func TestInvalidConfigFile(t *testing.T) {
	dir := workspace(t)
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("output:\n  format: xml\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, "--config", path, "check", dir)
	if ExitCode(err) != ExitUsage {
		t.Errorf("ExitCode = %d (err %v), want %d", ExitCode(err), err, ExitUsage)
	}
}

func TestVersionCommand(t *testing.T) {
	workspace(t)

	origVersion, origCommit := Version, Commit
	Version, Commit = "1.2.3", "abc123def"
	defer func() { Version, Commit = origVersion, origCommit }()

	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "declint version 1.2.3") || !strings.Contains(out, "Commit:     abc123def") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, _ = execute(t, "version", "--short")
	if out != "1.2.3\n" {
		t.Errorf("--short = %q", out)
	}

	out, _ = execute(t, "version", "--json")
	if !strings.Contains(out, `"version": "1.2.3"`) {
		t.Errorf("--json = %s", out)
	}

	if _, err := execute(t, "version", "unexpected-arg"); err == nil {
		t.Error("expected error for unexpected argument")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{violationsError("%d violations", 3), ExitViolations},
		{usageError(errors.New("bad flag")), ExitUsage},
		{errors.New("unknown command"), ExitUsage},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestDetectFormatFromPath(t *testing.T) {
	tests := map[string]string{
		"report.json":   "json",
		"out.SARIF":     "sarif",
		"README.md":     "markdown",
		"notes.txt":     "text",
		"report":        "",
		"dir/report.md": "markdown",
	}
	for path, want := range tests {
		if got := DetectFormatFromPath(path); got != want {
			t.Errorf("DetectFormatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}

// storageConfig writes a config enabling the disk cache and run history.
func storageConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "storage.yaml")
	content := "cache:\n  enabled: true\n  dir: " + filepath.Join(dir, ".declint", "cache") +
		"\nhistory:\n  file: " + filepath.Join(dir, ".declint", "history.db") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheck_RecordsHistoryAndCaches(t *testing.T) {
	dir := workspace(t)
	cfg := storageConfig(t, dir)

	for i := 0; i < 2; i++ {
		if _, err := execute(t, "--config", cfg, "check", dir, "--fail-on", "none"); err != nil {
			t.Fatalf("check %d failed: %v", i, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, ".declint", "cache")); err != nil {
		t.Errorf("cache directory not created: %v", err)
	}

	out, err := execute(t, "--config", cfg, "history", "--json")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if strings.Count(out, `"run_id"`) != 2 {
		t.Errorf("expected two recorded runs:\n%s", out)
	}

	out, err = execute(t, "--config", cfg, "history", "--rule", "ord-001")
	if err != nil {
		t.Fatalf("history search failed: %v", err)
	}
	if !strings.Contains(out, "PROrder.title") {
		t.Errorf("search missing PROrder.title:\n%s", out)
	}
}

func TestCheck_RunIDMatchesHistory(t *testing.T) {
	dir := workspace(t)
	cfg := storageConfig(t, dir)

	out, _ := execute(t, "--config", cfg, "check", dir, "--format", "json", "--no-cache")
	start := strings.Index(out, `"run_id": "`)
	if start < 0 {
		t.Fatalf("no run_id in output:\n%s", out)
	}
	runID := out[start+len(`"run_id": "`):]
	runID = runID[:strings.Index(runID, `"`)]

	counts, err := execute(t, "--config", cfg, "history", runID)
	if err != nil {
		t.Fatalf("history %s failed: %v", runID, err)
	}
	if !strings.Contains(counts, ruleset.RuleGroupingOrder) {
		t.Errorf("rule counts missing %s:\n%s", ruleset.RuleGroupingOrder, counts)
	}
}

func TestHistory_RequiresDatabase(t *testing.T) {
	workspace(t)

	if _, err := execute(t, "history"); ExitCode(err) != ExitUsage {
		t.Errorf("ExitCode = %d (err %v), want %d", ExitCode(err), err, ExitUsage)
	}
}

func TestCheck_StagedOutsideRepository(t *testing.T) {
	dir := workspace(t)
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))

	if _, err := execute(t, "check", dir, "--staged"); ExitCode(err) != ExitUsage {
		t.Errorf("ExitCode = %d (err %v), want %d", ExitCode(err), err, ExitUsage)
	}
	if _, err := execute(t, "check", "--staged", "--changed", "main"); ExitCode(err) != ExitUsage {
		t.Errorf("exclusive flags: ExitCode = %d (err %v), want %d", ExitCode(err), err, ExitUsage)
	}
}

func TestCheck_WritesProfiles(t *testing.T) {
	dir := workspace(t)
	cpu := filepath.Join(dir, "cpu.prof")
	mem := filepath.Join(dir, "mem.prof")

	if _, err := execute(t, "check", dir, "--fail-on", "none", "--cpuprofile", cpu, "--memprofile", mem); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	for _, path := range []string{cpu, mem} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("profile not written: %v", err)
		}
	}
}
