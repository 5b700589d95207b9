// Package report renders check results in the supported output formats.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/JNZader/declint/internal/checker"
	"github.com/JNZader/declint/internal/runner"
)

// Reporter defines the interface for generating check reports.
type Reporter interface {
	// Generate creates a report from check results.
	Generate(result *runner.Result) (string, error)

	// Write writes the report to a writer.
	Write(result *runner.Result, w io.Writer) error

	// Format returns the format name.
	Format() string
}

// Options tunes the reporters.
type Options struct {
	// Color enables ANSI styling in the text format
	Color bool

	// Version is the tool version printed in json and sarif output
	Version string

	// RunID identifies the run in json and sarif output; a random UUID
	// when empty
	RunID string

	// Rules supplies rule metadata for sarif; the built-in rules when nil
	Rules *checker.Registry
}

// Option configures Options.
type Option func(*Options)

// WithColor enables or disables colored text output.
func WithColor(on bool) Option {
	return func(o *Options) { o.Color = on }
}

// WithVersion sets the reported tool version.
func WithVersion(v string) Option {
	return func(o *Options) { o.Version = v }
}

// WithRunID fixes the run identifier.
func WithRunID(id string) Option {
	return func(o *Options) { o.RunID = id }
}

// WithRules sets the registry sarif rule metadata is read from.
func WithRules(r *checker.Registry) Option {
	return func(o *Options) { o.Rules = r }
}

// NewReporter creates a reporter for the given format.
func NewReporter(format string, options ...Option) (Reporter, error) {
	opts := Options{Version: "dev"}
	for _, o := range options {
		o(&opts)
	}
	if opts.RunID == "" {
		opts.RunID = uuid.New().String()
	}
	if opts.Rules == nil {
		opts.Rules = checker.DefaultRegistry()
	}

	switch strings.ToLower(format) {
	case "text", "":
		return &TextReporter{Color: opts.Color}, nil
	case "table":
		return &TableReporter{}, nil
	case "markdown", "md":
		return &MarkdownReporter{}, nil
	case "json":
		return &JSONReporter{Indent: true, RunID: opts.RunID, Version: opts.Version}, nil
	case "sarif":
		return &SARIFReporter{RunID: opts.RunID, Version: opts.Version, Rules: opts.Rules}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// AvailableFormats returns the list of supported formats.
func AvailableFormats() []string {
	return []string{"text", "table", "markdown", "json", "sarif"}
}

// generate renders through Write into a string.
func generate(r Reporter, result *runner.Result) (string, error) {
	var sb strings.Builder
	if err := r.Write(result, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// location renders file:line, or the interface name when no file is known.
func location(v checker.Violation) string {
	if v.Decl.File == "" {
		return v.Decl.Interface
	}
	if v.Decl.Line > 0 {
		return fmt.Sprintf("%s:%d", v.Decl.File, v.Decl.Line)
	}
	return v.Decl.File
}

// subject names the declaration, qualified by its interface.
func subject(v checker.Violation) string {
	if v.Decl.Name == "" {
		return fmt.Sprintf("%s[%d]", v.Decl.Interface, v.Decl.Index)
	}
	return v.Decl.Interface + "." + v.Decl.Name
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
