package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"testing"
)

// initRepo creates a repository with one committed header on main and
// returns its directory with a func running git in it.
func initRepo(t *testing.T) (string, func(args ...string)) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
			"GIT_CONFIG_GLOBAL=/dev/null", "GIT_CONFIG_NOSYSTEM=1")
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}

	run("init", "-q", "-b", "main")
	write(t, filepath.Join(dir, "Sources", "PROrder.h"), "@interface PROrder : NSObject\n@end\n")
	run("add", ".")
	run("commit", "-q", "-m", "initial")

	return dir, run
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func rel(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		r, err := filepath.Rel(root, f)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, filepath.ToSlash(r))
	}
	sort.Strings(out)
	return out
}

func TestNewRepo_NotARepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(t.TempDir()))

	if _, err := NewRepo(context.Background(), t.TempDir()); err == nil {
		t.Error("expected error outside a repository")
	}
}

func TestStagedFiles(t *testing.T) {
	dir, git := initRepo(t)
	write(t, filepath.Join(dir, "Sources", "PROrder.h"), "@interface PROrder : NSObject\n@property (nonatomic) int count;\n@end\n")
	write(t, filepath.Join(dir, "Sources", "PRItem.h"), "@interface PRItem : NSObject\n@end\n")
	git("add", "Sources/PRItem.h")

	repo, err := NewRepo(context.Background(), filepath.Join(dir, "Sources"))
	if err != nil {
		t.Fatalf("NewRepo() error = %v", err)
	}

	files, err := repo.StagedFiles(context.Background())
	if err != nil {
		t.Fatalf("StagedFiles() error = %v", err)
	}
	if got := rel(t, repo.Root(), files); len(got) != 1 || got[0] != "Sources/PRItem.h" {
		t.Errorf("StagedFiles() = %v, want [Sources/PRItem.h]", got)
	}
}

func TestChangedFiles(t *testing.T) {
	dir, git := initRepo(t)
	git("checkout", "-q", "-b", "feature")
	write(t, filepath.Join(dir, "Sources", "PROrder.h"), "@interface PROrder : NSObject\n@property (nonatomic) int count;\n@end\n")
	git("commit", "-q", "-am", "count")
	write(t, filepath.Join(dir, "Sources", "PRNew.h"), "@interface PRNew : NSObject\n@end\n")

	repo, err := NewRepo(context.Background(), dir)
	if err != nil {
		t.Fatalf("NewRepo() error = %v", err)
	}

	files, err := repo.ChangedFiles(context.Background(), "main")
	if err != nil {
		t.Fatalf("ChangedFiles() error = %v", err)
	}
	got := rel(t, repo.Root(), files)
	if len(got) != 2 || got[0] != "Sources/PRNew.h" || got[1] != "Sources/PROrder.h" {
		t.Errorf("ChangedFiles() = %v", got)
	}

	if _, err := repo.ChangedFiles(context.Background(), "no-such-branch"); err == nil {
		t.Error("expected error for unknown base")
	}
}
