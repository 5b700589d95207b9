// Package baseline records accepted violations so only new ones are
// reported.
package baseline

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/JNZader/declint/internal/checker"
)

// Entry is one accepted violation. The file is informational: matching
// ignores it so headers can move without invalidating the baseline.
type Entry struct {
	Rule      string `toml:"rule"`
	File      string `toml:"file,omitempty"`
	Interface string `toml:"interface"`
	Name      string `toml:"name"`
	Message   string `toml:"message"`
}

func (e Entry) key() string {
	return strings.Join([]string{e.Rule, e.Interface, e.Name, e.Message}, "\x00")
}

// Baseline is a set of accepted violations loaded from a TOML file.
type Baseline struct {
	Entries []Entry `toml:"entries"`

	lookup map[string]bool
}

// Load reads a baseline file. An empty path or a missing file gives an
// empty baseline that matches nothing.
func Load(path string) (*Baseline, error) {
	if path == "" {
		return New(nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(nil), nil
		}
		return nil, fmt.Errorf("reading baseline: %w", err)
	}

	var b Baseline
	if err := toml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parsing baseline %s: %w", path, err)
	}
	b.buildLookup()
	return &b, nil
}

// New builds a baseline from entries.
func New(entries []Entry) *Baseline {
	b := &Baseline{Entries: entries}
	b.buildLookup()
	return b
}

// FromViolations builds a baseline accepting every given violation.
// Duplicates collapse into one entry and entries are sorted for stable
// diffs.
func FromViolations(vs []checker.Violation) *Baseline {
	seen := make(map[string]bool, len(vs))
	entries := make([]Entry, 0, len(vs))
	for _, v := range vs {
		e := entryOf(v)
		if seen[e.key()] {
			continue
		}
		seen[e.key()] = true
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Interface != b.Interface {
			return a.Interface < b.Interface
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Rule < b.Rule
	})
	return New(entries)
}

func entryOf(v checker.Violation) Entry {
	return Entry{
		Rule:      v.RuleID,
		File:      v.Decl.File,
		Interface: v.Decl.Interface,
		Name:      v.Decl.Name,
		Message:   v.Message,
	}
}

func (b *Baseline) buildLookup() {
	b.lookup = make(map[string]bool, len(b.Entries))
	for _, e := range b.Entries {
		b.lookup[e.key()] = true
	}
}

// Contains reports whether v is an accepted violation.
func (b *Baseline) Contains(v checker.Violation) bool {
	if b == nil || b.lookup == nil {
		return false
	}
	return b.lookup[entryOf(v).key()]
}

// Filter splits vs into the violations not in the baseline and the count
// of suppressed ones.
func (b *Baseline) Filter(vs []checker.Violation) ([]checker.Violation, int) {
	if b.Count() == 0 {
		return vs, 0
	}
	kept := make([]checker.Violation, 0, len(vs))
	suppressed := 0
	for _, v := range vs {
		if b.Contains(v) {
			suppressed++
			continue
		}
		kept = append(kept, v)
	}
	return kept, suppressed
}

// Count returns the number of entries.
func (b *Baseline) Count() int {
	if b == nil {
		return 0
	}
	return len(b.Entries)
}

// Encode renders the baseline as TOML with a generated header.
func (b *Baseline) Encode() ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# declint baseline: accepted declaration style findings\n")
	fmt.Fprintf(&buf, "# Generated: %s\n", time.Now().UTC().Format("2006-01-02"))
	fmt.Fprintf(&buf, "# Regenerate: declint baseline -o <file> [paths...]\n")
	fmt.Fprintf(&buf, "# Total: %d findings\n\n", b.Count())

	if err := toml.NewEncoder(&buf).Encode(struct {
		Entries []Entry `toml:"entries"`
	}{b.Entries}); err != nil {
		return nil, fmt.Errorf("encoding baseline: %w", err)
	}
	return buf.Bytes(), nil
}

// Write saves the baseline to path.
func (b *Baseline) Write(path string) error {
	data, err := b.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing baseline: %w", err)
	}
	return nil
}
