// Package checker applies style rules to declaration interfaces.
//
// Check is pure: it never mutates its inputs, performs no I/O and returns
// the same ordered violations for the same interface and RuleSet. Every
// enabled rule runs against every applicable declaration; a rule that
// panics is logged and skipped without affecting the others.
package checker

import (
	"fmt"
	"sort"

	"github.com/JNZader/declint/internal/decl"
	"github.com/JNZader/declint/internal/logger"
	"github.com/JNZader/declint/internal/ruleset"
)

// DeclRef locates the declaration a violation is about.
type DeclRef struct {
	Interface string `json:"interface"`
	Index     int    `json:"index"`
	Name      string `json:"name"`
	File      string `json:"file,omitempty"`
	Line      int    `json:"line,omitempty"`
}

// Violation is a breach of one rule by one declaration.
type Violation struct {
	Decl     DeclRef          `json:"decl"`
	RuleID   string           `json:"rule_id"`
	Message  string           `json:"message"`
	Severity ruleset.Severity `json:"severity"`
}

func (v Violation) String() string {
	loc := v.Decl.Interface
	if v.Decl.File != "" {
		loc = fmt.Sprintf("%s:%d %s", v.Decl.File, v.Decl.Line, v.Decl.Interface)
	}
	return fmt.Sprintf("%s [%s] %s: %s", loc, v.RuleID, v.Severity, v.Message)
}

// Checker evaluates a registry of rules.
type Checker struct {
	registry *Registry
	log      *logger.Logger
}

// New creates a checker with every built-in rule.
func New() *Checker {
	return NewWithRegistry(DefaultRegistry())
}

// NewWithRegistry creates a checker over a custom rule registry.
func NewWithRegistry(r *Registry) *Checker {
	return &Checker{
		registry: r,
		log:      logger.Default().WithPrefix("CHECKER"),
	}
}

// Registry returns the rules the checker evaluates.
func (c *Checker) Registry() *Registry {
	return c.registry
}

// Check evaluates iface against rs. An invalid RuleSet returns a
// *ruleset.ConfigurationError and nothing is checked. Violations are ordered
// by declaration position, then rule ID.
func (c *Checker) Check(iface decl.Interface, rs *ruleset.RuleSet) ([]Violation, error) {
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	if len(iface.Declarations) == 0 {
		return []Violation{}, nil
	}

	ctx := &Context{Interface: &iface, RuleSet: rs}
	violations := make([]Violation, 0)

	for _, rule := range c.registry.Enabled(rs) {
		severity := rs.Severity(rule.ID(), rule.DefaultSeverity())
		for _, f := range c.run(rule, ctx) {
			if f.Position < 0 || f.Position >= len(iface.Declarations) {
				continue
			}
			violations = append(violations, Violation{
				Decl:     refOf(&iface, f.Position),
				RuleID:   rule.ID(),
				Message:  f.Message,
				Severity: severity,
			})
		}
	}

	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].Decl.Index != violations[j].Decl.Index {
			return violations[i].Decl.Index < violations[j].Decl.Index
		}
		return violations[i].RuleID < violations[j].RuleID
	})
	return violations, nil
}

// CheckUnit checks every interface of a unit, concatenating results in
// interface order.
func (c *Checker) CheckUnit(unit *decl.Unit, rs *ruleset.RuleSet) ([]Violation, error) {
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	out := make([]Violation, 0)
	for _, iface := range unit.Interfaces {
		vs, err := c.Check(iface, rs)
		if err != nil {
			return nil, err
		}
		out = append(out, vs...)
	}
	return out, nil
}

// run evaluates one rule over a private copy of the interface so a rule
// cannot disturb its siblings.
func (c *Checker) run(rule Rule, ctx *Context) (findings []Finding) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Warn("rule %s failed on %s: %v", rule.ID(), ctx.Interface.Name, r)
			findings = nil
		}
	}()
	iface := ctx.Interface.Clone()
	return rule.Check(&Context{Interface: &iface, RuleSet: ctx.RuleSet})
}

func refOf(iface *decl.Interface, pos int) DeclRef {
	d := &iface.Declarations[pos]
	file := d.File
	if file == "" {
		file = iface.File
	}
	return DeclRef{
		Interface: iface.Name,
		Index:     pos,
		Name:      d.Name,
		File:      file,
		Line:      d.Line,
	}
}

var defaultChecker = New()

// Check evaluates iface with the built-in rules.
func Check(iface decl.Interface, rs *ruleset.RuleSet) ([]Violation, error) {
	return defaultChecker.Check(iface, rs)
}
