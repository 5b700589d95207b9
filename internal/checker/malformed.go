package checker

import (
	"fmt"
	"strings"

	"github.com/JNZader/declint/internal/decl"
	"github.com/JNZader/declint/internal/ruleset"
)

// MalformedRule reports declarations that lack what the other rules need.
type MalformedRule struct {
	BaseRule
}

func NewMalformedRule() *MalformedRule {
	return &MalformedRule{
		BaseRule: BaseRule{
			RuleID:          ruleset.RuleMalformed,
			RuleCategory:    CategoryStructure,
			RuleSeverity:    ruleset.SeverityError,
			RuleDescription: "Declarations must have a known kind, a name and a type",
		},
	}
}

func (r *MalformedRule) Check(ctx *Context) []Finding {
	var findings []Finding
	for i := range ctx.Interface.Declarations {
		d := &ctx.Interface.Declarations[i]
		problem := malformation(d)
		if problem == "" {
			problem = misplaced(ctx.Interface, d)
		}
		if problem != "" {
			findings = append(findings, Finding{Position: i, Message: problem})
		}
	}
	return findings
}

// misplaced reports enum cases outside an enum and members inside one.
func misplaced(iface *decl.Interface, d *decl.Declaration) string {
	inEnum := iface.Kind == decl.InterfaceEnum
	switch {
	case d.Kind == decl.KindEnumCase && !inEnum:
		return fmt.Sprintf("enum case %q is declared in %s %q, not in an enum", d.Name, iface.Kind, iface.Name)
	case d.Kind != decl.KindEnumCase && inEnum:
		return fmt.Sprintf("%s %q is declared in enum %q", d.Kind, d.Name, iface.Name)
	}
	return ""
}

func malformation(d *decl.Declaration) string {
	if !d.Kind.Valid() {
		return fmt.Sprintf("unknown declaration kind %q", d.Kind)
	}
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Sprintf("%s has no name", kindLabel(d.Kind))
	}

	switch d.Kind {
	case decl.KindMethod:
		if strings.TrimSpace(d.ReturnType) == "" {
			return fmt.Sprintf("method %q has no return type", d.Name)
		}
		for n, p := range d.Parameters {
			if p.Label == "" || strings.TrimSpace(p.Type) == "" {
				return fmt.Sprintf("method %q parameter %d needs a label and a type", d.Name, n+1)
			}
		}
	case decl.KindProperty:
		if strings.TrimSpace(d.Type) == "" {
			return fmt.Sprintf("property %q has no type", d.Name)
		}
	}
	return ""
}

func kindLabel(k decl.Kind) string {
	switch k {
	case decl.KindEnumCase:
		return "enum case"
	default:
		return string(k)
	}
}
