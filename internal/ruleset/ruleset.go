// Package ruleset holds the immutable configuration of style conventions a
// check run enforces.
//
// A RuleSet is built once from Options, either directly with New or through
// Resolve which layers options over an embedded preset. Once built it is
// never mutated and may be shared by concurrent checks.
package ruleset

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// DefaultMaxLineLength is the documented line limit.
const DefaultMaxLineLength = 100

// Options is the loadable representation of a RuleSet.
type Options struct {
	// Preset names the embedded preset options are layered over.
	Preset string `mapstructure:"preset" yaml:"preset,omitempty"`

	Ordering      Ordering `mapstructure:"ordering" yaml:"ordering,omitempty"`
	MaxLineLength int      `mapstructure:"max_line_length" yaml:"max_line_length,omitempty"`
	Abbreviations []string `mapstructure:"abbreviations" yaml:"abbreviations,omitempty"`

	// AllowImplicitAssign lets scalar properties omit the memory keyword.
	AllowImplicitAssign *bool `mapstructure:"allow_implicit_assign" yaml:"allow_implicit_assign,omitempty"`

	Disabled []string            `mapstructure:"disabled" yaml:"disabled,omitempty"`
	Severity map[string]Severity `mapstructure:"severity" yaml:"severity,omitempty"`
}

// Merge returns o with every field set in over replacing it.
func (o Options) Merge(over Options) Options {
	out := o
	if over.Preset != "" {
		out.Preset = over.Preset
	}
	if over.Ordering != "" {
		out.Ordering = over.Ordering
	}
	if over.MaxLineLength != 0 {
		out.MaxLineLength = over.MaxLineLength
	}
	if len(over.Abbreviations) > 0 {
		out.Abbreviations = append([]string(nil), over.Abbreviations...)
	}
	if over.AllowImplicitAssign != nil {
		v := *over.AllowImplicitAssign
		out.AllowImplicitAssign = &v
	}
	if len(over.Disabled) > 0 {
		out.Disabled = append(append([]string(nil), o.Disabled...), over.Disabled...)
	}
	if len(over.Severity) > 0 {
		merged := make(map[string]Severity, len(o.Severity)+len(over.Severity))
		for k, v := range o.Severity {
			merged[k] = v
		}
		for k, v := range over.Severity {
			merged[k] = v
		}
		out.Severity = merged
	}
	return out
}

// RuleSet is a validated, immutable set of conventions.
type RuleSet struct {
	name                string
	ordering            Ordering
	maxLineLength       int
	abbreviations       []string
	allowImplicitAssign bool
	disabled            map[string]bool
	severity            map[string]Severity
	fingerprint         string
}

// New validates options and freezes them into a RuleSet. Rule IDs are
// matched case-insensitively since config layers may lowercase map keys.
func New(opts Options) (*RuleSet, error) {
	if !opts.Ordering.Valid() {
		return nil, &ConfigurationError{
			Field:   "ordering",
			Message: fmt.Sprintf("unknown ordering convention %q, must be one of: %s, %s", opts.Ordering, OrderingMethodsFirst, OrderingPropertiesFirst),
		}
	}

	if opts.MaxLineLength < 1 {
		return nil, &ConfigurationError{
			Field:   "max_line_length",
			Message: fmt.Sprintf("must be positive, got %d", opts.MaxLineLength),
		}
	}

	abbrevs := make([]string, 0, len(opts.Abbreviations))
	seen := make(map[string]bool, len(opts.Abbreviations))
	for _, a := range opts.Abbreviations {
		a = strings.TrimSpace(a)
		if a == "" {
			return nil, &ConfigurationError{Field: "abbreviations", Message: "abbreviation must not be empty"}
		}
		if !unicode.IsUpper(rune(a[0])) {
			return nil, &ConfigurationError{Field: "abbreviations", Message: fmt.Sprintf("abbreviation %q must start with an uppercase letter", a)}
		}
		if !seen[a] {
			seen[a] = true
			abbrevs = append(abbrevs, a)
		}
	}
	// longest first so "UUID" wins over "UU"
	sort.SliceStable(abbrevs, func(i, j int) bool { return len(abbrevs[i]) > len(abbrevs[j]) })

	disabled := make(map[string]bool, len(opts.Disabled))
	for _, id := range opts.Disabled {
		id = normalizeID(id)
		if !IsKnownRule(id) {
			return nil, &ConfigurationError{Field: "disabled", Message: fmt.Sprintf("unknown rule %q", id)}
		}
		disabled[id] = true
	}

	severity := make(map[string]Severity, len(opts.Severity))
	for id, sev := range opts.Severity {
		id = normalizeID(id)
		if !IsKnownRule(id) {
			return nil, &ConfigurationError{Field: "severity", Message: fmt.Sprintf("unknown rule %q", id)}
		}
		parsed, ok := ParseSeverity(string(sev))
		if !ok {
			return nil, &ConfigurationError{Field: "severity." + id, Message: fmt.Sprintf("unknown severity %q", sev)}
		}
		severity[id] = parsed
	}

	allow := true
	if opts.AllowImplicitAssign != nil {
		allow = *opts.AllowImplicitAssign
	}

	rs := &RuleSet{
		name:                opts.Preset,
		ordering:            opts.Ordering,
		maxLineLength:       opts.MaxLineLength,
		abbreviations:       abbrevs,
		allowImplicitAssign: allow,
		disabled:            disabled,
		severity:            severity,
	}
	rs.fingerprint = rs.computeFingerprint()
	return rs, nil
}

// MustNew is New that panics on error. Use only with literal options.
func MustNew(opts Options) *RuleSet {
	rs, err := New(opts)
	if err != nil {
		panic(err)
	}
	return rs
}

// Resolve layers opts over the preset it names ("default" when empty) and
// builds the RuleSet.
func Resolve(opts Options) (*RuleSet, error) {
	name := opts.Preset
	if name == "" {
		name = DefaultPreset
	}
	base, err := Preset(name)
	if err != nil {
		return nil, err
	}
	merged := base.Merge(opts)
	merged.Preset = name
	return New(merged)
}

// Default returns the RuleSet of the default preset.
func Default() *RuleSet {
	rs, err := Resolve(Options{})
	if err != nil {
		panic(fmt.Sprintf("default preset is invalid: %v", err))
	}
	return rs
}

// Validate reports whether rs was built by New. The zero value is invalid.
func (rs *RuleSet) Validate() error {
	if rs == nil {
		return &ConfigurationError{Field: "ruleset", Message: "no ruleset loaded"}
	}
	if !rs.ordering.Valid() {
		return &ConfigurationError{Field: "ordering", Message: fmt.Sprintf("unknown ordering convention %q", rs.ordering)}
	}
	if rs.maxLineLength < 1 {
		return &ConfigurationError{Field: "max_line_length", Message: fmt.Sprintf("must be positive, got %d", rs.maxLineLength)}
	}
	return nil
}

// Name returns the preset name the RuleSet was resolved from, if any.
func (rs *RuleSet) Name() string { return rs.name }

func (rs *RuleSet) Ordering() Ordering { return rs.ordering }

func (rs *RuleSet) MaxLineLength() int { return rs.maxLineLength }

func (rs *RuleSet) AllowImplicitAssign() bool { return rs.allowImplicitAssign }

// Abbreviations returns a copy of the abbreviation set, longest first.
func (rs *RuleSet) Abbreviations() []string {
	return append([]string(nil), rs.abbreviations...)
}

// LeadingAbbreviation returns the abbreviation name starts with, if the
// abbreviation is followed by a non-lowercase character or the end of name.
func (rs *RuleSet) LeadingAbbreviation(name string) (string, bool) {
	for _, a := range rs.abbreviations {
		if !strings.HasPrefix(name, a) {
			continue
		}
		rest := name[len(a):]
		if rest == "" || !unicode.IsLower(rune(rest[0])) {
			return a, true
		}
	}
	return "", false
}

// Enabled reports whether the rule runs.
func (rs *RuleSet) Enabled(ruleID string) bool {
	return !rs.disabled[ruleID]
}

// Severity returns the configured severity for a rule, or def.
func (rs *RuleSet) Severity(ruleID string, def Severity) Severity {
	if sev, ok := rs.severity[ruleID]; ok {
		return sev
	}
	return def
}

// Fingerprint identifies the effective configuration. Equal fingerprints
// produce equal check results for equal input.
func (rs *RuleSet) Fingerprint() string { return rs.fingerprint }

// Options returns the effective options, suitable for display.
func (rs *RuleSet) Options() Options {
	allow := rs.allowImplicitAssign
	opts := Options{
		Preset:              rs.name,
		Ordering:            rs.ordering,
		MaxLineLength:       rs.maxLineLength,
		Abbreviations:       rs.Abbreviations(),
		AllowImplicitAssign: &allow,
	}
	for _, id := range RuleIDs() {
		if rs.disabled[id] {
			opts.Disabled = append(opts.Disabled, id)
		}
	}
	if len(rs.severity) > 0 {
		opts.Severity = make(map[string]Severity, len(rs.severity))
		for k, v := range rs.severity {
			opts.Severity[k] = v
		}
	}
	return opts
}

func (rs *RuleSet) computeFingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "ordering=%s\nmax=%d\nassign=%t\n", rs.ordering, rs.maxLineLength, rs.allowImplicitAssign)
	abbrevs := append([]string(nil), rs.abbreviations...)
	sort.Strings(abbrevs)
	fmt.Fprintf(h, "abbrev=%s\n", strings.Join(abbrevs, ","))
	for _, id := range RuleIDs() {
		fmt.Fprintf(h, "%s=%t:%s\n", id, rs.disabled[id], rs.severity[id])
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func normalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
