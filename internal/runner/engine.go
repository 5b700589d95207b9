// Package runner discovers declaration files, checks them in parallel and
// collects per-file results.
package runner

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/JNZader/declint/internal/baseline"
	"github.com/JNZader/declint/internal/cache"
	"github.com/JNZader/declint/internal/checker"
	"github.com/JNZader/declint/internal/decl"
	"github.com/JNZader/declint/internal/header"
	"github.com/JNZader/declint/internal/logger"
	"github.com/JNZader/declint/internal/metrics"
	"github.com/JNZader/declint/internal/ruleset"
	"github.com/JNZader/declint/internal/worker"
)

// Options configures discovery and parallelism.
type Options struct {
	// Concurrency is the number of parallel file checks (0 = GOMAXPROCS)
	Concurrency int

	// Extensions are the file suffixes picked up when walking directories
	Extensions []string

	// IgnorePatterns are doublestar glob patterns relative to each walked root
	IgnorePatterns []string
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		Extensions: []string{".h", ".decl.yaml", ".decl.yml", ".decl.json"},
	}
}

// Engine orchestrates a check run.
type Engine struct {
	rs       *ruleset.RuleSet
	opts     Options
	checker  *checker.Checker
	sources  []decl.Source
	cache    cache.Cache
	baseline *baseline.Baseline
	metrics  *metrics.Recorder
	log      *logger.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithCache reuses results of unchanged files.
func WithCache(c cache.Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithBaseline suppresses accepted violations.
func WithBaseline(b *baseline.Baseline) Option {
	return func(e *Engine) { e.baseline = b }
}

// WithMetrics records run metrics.
func WithMetrics(m *metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithChecker replaces the built-in rule checker.
func WithChecker(c *checker.Checker) Option {
	return func(e *Engine) { e.checker = c }
}

// WithSources replaces the declaration sources. The first source accepting
// a path reads it.
func WithSources(sources ...decl.Source) Option {
	return func(e *Engine) { e.sources = sources }
}

// NewEngine creates an engine for rs. The RuleSet is validated up front so
// a broken configuration fails before any file is read.
func NewEngine(rs *ruleset.RuleSet, opts Options, options ...Option) (*Engine, error) {
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultOptions().Extensions
	}
	if err := ValidatePatterns(opts.IgnorePatterns); err != nil {
		return nil, err
	}

	e := &Engine{
		rs:      rs,
		opts:    opts,
		checker: checker.New(),
		sources: []decl.Source{header.NewSource(), decl.NewDocumentSource()},
		log:     logger.Default().WithPrefix("ENGINE"),
	}
	for _, o := range options {
		o(e)
	}
	return e, nil
}

// RuleSet returns the conventions the engine enforces.
func (e *Engine) RuleSet() *ruleset.RuleSet {
	return e.rs
}

// Run checks every file under paths. A file that cannot be read or parsed
// is reported in its FileResult; the run itself fails only when a path
// does not exist or ctx is cancelled.
func (e *Engine) Run(ctx context.Context, paths []string) (*Result, error) {
	start := time.Now()

	files, err := e.Discover(paths)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, start, files)
}

// RunFiles checks exactly files, skipping discovery. An empty list yields
// an empty result.
func (e *Engine) RunFiles(ctx context.Context, files []string) (*Result, error) {
	return e.run(ctx, time.Now(), files)
}

func (e *Engine) run(ctx context.Context, start time.Time, files []string) (*Result, error) {
	result := &Result{
		RuleSet:     e.rs.Name(),
		Fingerprint: e.rs.Fingerprint(),
		Files:       make([]FileResult, 0, len(files)),
	}

	if len(files) == 0 {
		e.log.Info("No declaration files found")
		return result, nil
	}

	e.log.Info("Checking %d files with %d workers", len(files), e.workers(len(files)))

	tasks := make([]*worker.FileTask[*FileResult], len(files))
	poolTasks := make([]worker.Task, len(files))
	for i, path := range files {
		tasks[i] = worker.NewFileTask(path, e.checkFile)
		poolTasks[i] = tasks[i]
	}

	results, stats := worker.Run(ctx, worker.Config{
		Workers:   e.workers(len(files)),
		QueueSize: len(files),
	}, poolTasks)

	if err := ctx.Err(); err != nil {
		e.log.Warn("Check cancelled: %v", err)
		return nil, err
	}

	// checkFile records its own failures; an error here means the task
	// itself broke, e.g. a source panicked.
	taskErrs := make(map[string]error, len(results))
	for _, r := range results {
		if r.Error != nil {
			taskErrs[r.TaskID] = r.Error
		}
	}

	for _, task := range tasks {
		if fr := task.Result(); fr != nil {
			result.Files = append(result.Files, *fr)
			continue
		}
		err := taskErrs[task.ID()]
		if err == nil {
			err = fmt.Errorf("%s was not checked", task.Path())
		}
		e.log.Error("Checking %s failed: %v", task.Path(), err)
		e.metrics.ObserveFile(metrics.FileFailed, 0)
		fr := &FileResult{Path: task.Path(), Violations: []checker.Violation{}}
		result.Files = append(result.Files, *fr.fail(err))
	}
	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].Path < result.Files[j].Path
	})

	result.Duration = time.Since(start)
	e.metrics.ObserveRun(result.Duration)
	if e.cache != nil {
		e.metrics.SetCacheEntries(e.cache.Stats().Entries)
	}

	e.log.Info("Check completed: %d files, %d violations, %d suppressed in %v (%s)",
		len(result.Files), result.TotalViolations(), result.TotalSuppressed(), result.Duration, stats)

	return result, nil
}

func (e *Engine) workers(files int) int {
	n := e.opts.Concurrency
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	return max(1, min(n, files))
}

// checkFile reads, parses and checks one file. Failures are recorded in
// the result so the run can continue.
func (e *Engine) checkFile(ctx context.Context, path string) (*FileResult, error) {
	start := time.Now()
	fr := &FileResult{Path: path, Violations: []checker.Violation{}}

	source := e.sourceFor(path)
	if source == nil {
		e.metrics.ObserveFile(metrics.FileFailed, time.Since(start))
		return fr.fail(fmt.Errorf("no declaration source reads %s", path)), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		e.log.Error("Failed to read %s: %v", path, err)
		e.metrics.ObserveFile(metrics.FileFailed, time.Since(start))
		return fr.fail(fmt.Errorf("reading %s: %w", path, err)), nil
	}

	var key string
	if e.cache != nil {
		key = cache.ComputeKey(path, content, e.rs.Fingerprint())
		if entry, ok := e.cache.Get(key); ok {
			e.log.Debug("Cache hit for %s", path)
			fr.Cached = true
			fr.Interfaces = entry.Interfaces
			fr.Declarations = entry.Declarations
			e.finish(fr, entry.Violations)
			e.metrics.ObserveFile(metrics.FileCached, 0)
			return fr, nil
		}
	}

	unit, err := source.Parse(path, content)
	if err != nil {
		e.log.Error("Failed to parse %s with %s source: %v", path, source.Name(), err)
		e.metrics.ObserveFile(metrics.FileFailed, time.Since(start))
		return fr.fail(err), nil
	}

	violations, err := e.checker.CheckUnit(unit, e.rs)
	if err != nil {
		e.metrics.ObserveFile(metrics.FileFailed, time.Since(start))
		return fr.fail(fmt.Errorf("checking %s: %w", path, err)), nil
	}

	fr.Interfaces = len(unit.Interfaces)
	fr.Declarations = unit.DeclarationCount()

	if e.cache != nil {
		e.cache.Set(key, &cache.Entry{
			Interfaces:   fr.Interfaces,
			Declarations: fr.Declarations,
			Violations:   violations,
		})
	}

	e.finish(fr, violations)
	e.metrics.ObserveFile(metrics.FileChecked, time.Since(start))
	e.log.Debug("Checked %s: %d interfaces, %d violations", path, fr.Interfaces, len(fr.Violations))
	return fr, nil
}

// finish applies the baseline and records violation metrics.
func (e *Engine) finish(fr *FileResult, violations []checker.Violation) {
	kept, suppressed := e.baseline.Filter(violations)
	fr.Violations = append(fr.Violations, kept...)
	fr.Suppressed = suppressed
	e.metrics.ObserveSuppressed(suppressed)
	for _, v := range kept {
		e.metrics.ObserveViolation(v.RuleID, string(v.Severity))
	}
}

func (e *Engine) sourceFor(path string) decl.Source {
	for _, s := range e.sources {
		if s.Accepts(path) {
			return s
		}
	}
	return nil
}
