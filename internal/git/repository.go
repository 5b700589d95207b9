// Package git lists the files a change touches so a check can be limited
// to them.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Only files that still exist after the change are of interest.
const diffFilter = "--diff-filter=ACMR"

// Repo runs git commands in a working tree.
type Repo struct {
	path string
	root string
}

// NewRepo opens the repository containing path.
func NewRepo(ctx context.Context, path string) (*Repo, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	repo := &Repo{path: absPath}
	root, err := repo.runGit(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}
	repo.root = strings.TrimSpace(root)

	return repo, nil
}

// Root returns the absolute top-level directory of the working tree.
func (r *Repo) Root() string {
	return r.root
}

// runGit executes a git command and returns the output.
func (r *Repo) runGit(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.path

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg != "" {
			return "", fmt.Errorf("git %s: %w: %s", args[0], err, errMsg)
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}

	return stdout.String(), nil
}

// StagedFiles returns the files added, copied, modified or renamed in the
// index.
func (r *Repo) StagedFiles(ctx context.Context) ([]string, error) {
	output, err := r.runGit(ctx, "diff", "--cached", "--name-only", "-z", diffFilter)
	if err != nil {
		return nil, err
	}
	return r.paths(output), nil
}

// ChangedFiles returns the files that differ between the merge base of
// base and HEAD and the working tree, plus untracked files.
func (r *Repo) ChangedFiles(ctx context.Context, base string) ([]string, error) {
	mergeBase, err := r.runGit(ctx, "merge-base", base, "HEAD")
	if err != nil {
		return nil, fmt.Errorf("failed to find merge base: %w", err)
	}

	tracked, err := r.runGit(ctx, "diff", "--name-only", "-z", diffFilter, strings.TrimSpace(mergeBase))
	if err != nil {
		return nil, err
	}
	untracked, err := r.runGit(ctx, "ls-files", "--others", "--exclude-standard", "-z")
	if err != nil {
		return nil, err
	}

	return r.paths(tracked + untracked), nil
}

// paths converts NUL separated repository paths to absolute ones, dropping
// duplicates and files that no longer exist.
func (r *Repo) paths(output string) []string {
	seen := make(map[string]bool)
	var files []string
	for _, name := range strings.Split(output, "\x00") {
		if name == "" {
			continue
		}
		path := filepath.Join(r.root, filepath.FromSlash(name))
		if seen[path] {
			continue
		}
		seen[path] = true
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			continue
		}
		files = append(files, path)
	}
	return files
}
