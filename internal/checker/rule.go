package checker

import (
	"github.com/JNZader/declint/internal/decl"
	"github.com/JNZader/declint/internal/ruleset"
)

// Category groups related rules.
type Category string

const (
	CategoryStructure  Category = "structure"
	CategoryAttributes Category = "attributes"
	CategoryLayout     Category = "layout"
	CategoryNaming     Category = "naming"
)

// Context carries what a rule may inspect. Rules must treat it as read-only.
type Context struct {
	Interface *decl.Interface
	RuleSet   *ruleset.RuleSet
}

// Finding is a rule breach before the checker attaches rule identity and
// severity.
type Finding struct {
	// Position is the index of the offending declaration in the interface.
	Position int
	Message  string
}

// Rule is one independent style check.
type Rule interface {
	ID() string
	Category() Category
	DefaultSeverity() ruleset.Severity
	Description() string
	Check(ctx *Context) []Finding
}

// BaseRule provides the descriptive half of Rule.
type BaseRule struct {
	RuleID          string
	RuleCategory    Category
	RuleSeverity    ruleset.Severity
	RuleDescription string
}

func (r *BaseRule) ID() string                        { return r.RuleID }
func (r *BaseRule) Category() Category                { return r.RuleCategory }
func (r *BaseRule) DefaultSeverity() ruleset.Severity { return r.RuleSeverity }
func (r *BaseRule) Description() string               { return r.RuleDescription }

// eachDeclaration calls fn for every declaration of the given kinds.
func eachDeclaration(ctx *Context, fn func(pos int, d *decl.Declaration) []Finding, kinds ...decl.Kind) []Finding {
	var findings []Finding
	for i := range ctx.Interface.Declarations {
		d := &ctx.Interface.Declarations[i]
		if !kindIn(d.Kind, kinds) {
			continue
		}
		findings = append(findings, fn(i, d)...)
	}
	return findings
}

func kindIn(k decl.Kind, kinds []decl.Kind) bool {
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

func finding(pos int, msg string) []Finding {
	return []Finding{{Position: pos, Message: msg}}
}
