// Package watch re-runs checks when declaration files change.
//
// Events are debounced: changes arriving within the quiet period are
// coalesced and OnChange fires once with the full set of changed files.
package watch

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/JNZader/declint/internal/logger"
)

const defaultDebounce = 300 * time.Millisecond

// defaultIgnores are never watched regardless of configuration.
var defaultIgnores = []string{
	"**/.git/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
	"**/xcuserdata/**",
}

// Config holds the parameters for a Watcher.
type Config struct {
	// Roots are the directories to watch recursively. Defaults to ".".
	Roots []string

	// Extensions select which files trigger OnChange. Empty matches all.
	Extensions []string

	// Ignore are doublestar patterns relative to the root an event came
	// from. They are merged with the built-in ignores.
	Ignore []string

	// Debounce is the quiet period after the last event before OnChange
	// fires.
	Debounce time.Duration

	// OnChange receives the sorted absolute paths that changed. Calls never
	// overlap; events arriving during a call are delivered afterwards.
	OnChange func(ctx context.Context, changed []string) error

	Logger *logger.Logger
}

// Watcher monitors directory trees and fires a debounced callback.
// Run must be called exactly once.
type Watcher struct {
	cfg      Config
	fsw      *fsnotify.Watcher
	roots    []string
	ignores  []string
	debounce time.Duration
	log      *logger.Logger
	started  atomic.Bool
}

// New creates a Watcher and registers every non-ignored directory under
// the roots.
func New(cfg Config) (*Watcher, error) {
	for _, pat := range cfg.Ignore {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("watch: invalid ignore pattern %q", pat)
		}
	}

	roots := cfg.Roots
	if len(roots) == 0 {
		roots = []string{"."}
	}
	abs := make([]string, 0, len(roots))
	for _, root := range roots {
		p, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %s: %w", root, err)
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("watch: %w", err)
		}
		if !info.IsDir() {
			// A file is watched through its directory.
			p = filepath.Dir(p)
		}
		abs = append(abs, p)
	}
	slices.Sort(abs)
	abs = slices.Compact(abs)

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		roots:    abs,
		ignores:  append(slices.Clone(defaultIgnores), cfg.Ignore...),
		debounce: debounce,
		log:      log.WithPrefix("WATCH"),
	}

	for _, root := range abs {
		if err := w.addDirectories(root, root); err != nil {
			fsw.Close() //nolint:errcheck
			return nil, err
		}
	}
	return w, nil
}

// Roots returns the absolute directories being watched.
func (w *Watcher) Roots() []string {
	return slices.Clone(w.roots)
}

// Run blocks until ctx is cancelled. It returns nil on cancellation and an
// error when the underlying watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			// Retry once the current run is done so pending changes survive.
			mu.Lock()
			timer.Reset(w.debounce)
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		w.log.Debug("%d files changed", len(changed))
		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.log.Error("Re-check failed: %v", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.log.Warn("Closing watcher: %v", err)
		}
	}()

	w.log.Info("Watching %s", strings.Join(w.roots, ", "))

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
				continue
			}

			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}
			if !w.relevant(evt.Name) {
				continue
			}

			mu.Lock()
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			if isFatal(err) {
				return fmt.Errorf("watch: %w", err)
			}
			w.log.Warn("fsnotify: %v", err)
		}
	}
}

// relevant reports whether a change to path should trigger a re-check.
func (w *Watcher) relevant(path string) bool {
	_, rel, ok := w.rel(path)
	if !ok || w.isIgnored(rel) {
		return false
	}
	if len(w.cfg.Extensions) == 0 {
		return true
	}
	for _, ext := range w.cfg.Extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// rel makes path relative to the innermost root containing it.
func (w *Watcher) rel(path string) (root, rel string, ok bool) {
	for _, candidate := range w.roots {
		r, err := filepath.Rel(candidate, path)
		if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			continue
		}
		if !ok || len(r) < len(rel) {
			root, rel, ok = candidate, r, true
		}
	}
	return root, rel, ok
}

// addDirectories registers start and every directory below it. Ignore
// patterns are matched relative to root.
func (w *Watcher) addDirectories(root, start string) error {
	err := filepath.WalkDir(start, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			w.log.Warn("Skipping inaccessible path %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil //nolint:nilerr
		}
		if rel != "." && (w.isIgnored(rel) || w.isIgnored(rel+"/")) {
			return filepath.SkipDir
		}
		if addErr := w.fsw.Add(path); addErr != nil {
			return fmt.Errorf("watch: add directory %s: %w", path, addErr)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk %s: %w", start, err)
	}
	return nil
}

// maybeAddDir extends the watch to directories created after startup.
func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	root, rel, ok := w.rel(path)
	if !ok || w.isIgnored(rel) || w.isIgnored(rel+"/") {
		return
	}
	if err := w.addDirectories(root, path); err != nil {
		w.log.Warn("Adding new directory %s: %v", path, err)
	}
}

func (w *Watcher) isIgnored(rel string) bool {
	normalized := filepath.ToSlash(rel)
	for _, pat := range w.ignores {
		if matched, err := doublestar.Match(pat, normalized); err == nil && matched {
			return true
		}
	}
	return false
}

// isFatal reports resource exhaustion, after which no more events arrive.
func isFatal(err error) bool {
	return errors.Is(err, syscall.ENOSPC) ||
		errors.Is(err, syscall.EMFILE) ||
		errors.Is(err, syscall.ENFILE)
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}
