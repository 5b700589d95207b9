package checker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/JNZader/declint/internal/decl"
	"github.com/JNZader/declint/internal/ruleset"
)

// Qualifier groups in their required order.
const (
	groupNullability = iota
	groupAtomicity
	groupMemory
	groupOther
	groupAccess
)

var qualifierGroups = map[string]int{
	"nullable":          groupNullability,
	"nonnull":           groupNullability,
	"null_resettable":   groupNullability,
	"null_unspecified":  groupNullability,
	"atomic":            groupAtomicity,
	"nonatomic":         groupAtomicity,
	"strong":            groupMemory,
	"weak":              groupMemory,
	"copy":              groupMemory,
	"assign":            groupMemory,
	"retain":            groupMemory,
	"unsafe_unretained": groupMemory,
	"readonly":          groupAccess,
	"readwrite":         groupAccess,
}

func qualifierGroup(attr string) int {
	if g, ok := qualifierGroups[normalizeAttr(attr)]; ok {
		return g
	}
	return groupOther
}

// normalizeAttr strips spacing so "getter = isOn" and "getter=isOn" match.
func normalizeAttr(attr string) string {
	return strings.ReplaceAll(strings.TrimSpace(attr), " ", "")
}

func memoryKeyword(d *decl.Declaration) string {
	for _, a := range d.Attributes {
		if qualifierGroup(a) == groupMemory {
			return normalizeAttr(a)
		}
	}
	return ""
}

// isObjectType reports whether a property type is an object or block
// reference rather than a scalar.
func isObjectType(typ string) bool {
	t := strings.TrimSpace(typ)
	switch {
	case strings.Contains(t, "*"), strings.Contains(t, "^"):
		return true
	case t == "id", strings.HasPrefix(t, "id<"), strings.HasPrefix(t, "id <"):
		return true
	case t == "Class", strings.HasPrefix(t, "Class<"), strings.HasPrefix(t, "Class <"):
		return true
	default:
		return false
	}
}

// AttributeOrderRule checks qualifier order: nullability, atomicity,
// memory, other qualifiers, then readonly.
type AttributeOrderRule struct {
	BaseRule
}

func NewAttributeOrderRule() *AttributeOrderRule {
	return &AttributeOrderRule{
		BaseRule: BaseRule{
			RuleID:          ruleset.RuleAttributeOrder,
			RuleCategory:    CategoryAttributes,
			RuleSeverity:    ruleset.SeverityWarning,
			RuleDescription: "Property qualifiers read nullability, atomicity, memory, other, with readonly last",
		},
	}
}

func (r *AttributeOrderRule) Check(ctx *Context) []Finding {
	return eachDeclaration(ctx, func(pos int, d *decl.Declaration) []Finding {
		for i := 1; i < len(d.Attributes); i++ {
			if qualifierGroup(d.Attributes[i]) < qualifierGroup(d.Attributes[i-1]) {
				return finding(pos, fmt.Sprintf("qualifier %q should come before %q; expected (%s)",
					d.Attributes[i], d.Attributes[i-1], strings.Join(canonicalOrder(d.Attributes), ", ")))
			}
		}
		return nil
	}, decl.KindProperty)
}

func canonicalOrder(attrs []string) []string {
	out := append([]string(nil), attrs...)
	sort.SliceStable(out, func(i, j int) bool { return qualifierGroup(out[i]) < qualifierGroup(out[j]) })
	return out
}

// MemoryOmittedRule flags a memory keyword on a readonly property that is
// never redeclared writable.
type MemoryOmittedRule struct {
	BaseRule
}

func NewMemoryOmittedRule() *MemoryOmittedRule {
	return &MemoryOmittedRule{
		BaseRule: BaseRule{
			RuleID:          ruleset.RuleMemoryOmitted,
			RuleCategory:    CategoryAttributes,
			RuleSeverity:    ruleset.SeverityWarning,
			RuleDescription: "Readonly properties without a writable redeclaration omit the memory keyword",
		},
	}
}

func (r *MemoryOmittedRule) Check(ctx *Context) []Finding {
	return eachDeclaration(ctx, func(pos int, d *decl.Declaration) []Finding {
		if !d.HasAttribute("readonly") || d.Redeclared {
			return nil
		}
		if kw := memoryKeyword(d); kw != "" {
			return finding(pos, fmt.Sprintf("memory keyword %q should be omitted: %q is readonly and has no writable redeclaration", kw, d.Name))
		}
		return nil
	}, decl.KindProperty)
}

// MemoryRequiredRule flags a writable property, or a readonly one that is
// redeclared writable, declared without a memory keyword.
type MemoryRequiredRule struct {
	BaseRule
}

func NewMemoryRequiredRule() *MemoryRequiredRule {
	return &MemoryRequiredRule{
		BaseRule: BaseRule{
			RuleID:          ruleset.RuleMemoryRequired,
			RuleCategory:    CategoryAttributes,
			RuleSeverity:    ruleset.SeverityWarning,
			RuleDescription: "Writable properties state their memory keyword; scalars may rely on implicit assign",
		},
	}
}

func (r *MemoryRequiredRule) Check(ctx *Context) []Finding {
	allowImplicit := ctx.RuleSet.AllowImplicitAssign()
	return eachDeclaration(ctx, func(pos int, d *decl.Declaration) []Finding {
		if d.HasAttribute("readonly") && !d.Redeclared {
			return nil
		}
		if memoryKeyword(d) != "" {
			return nil
		}
		if allowImplicit && !isObjectType(d.Type) {
			return nil
		}
		if d.HasAttribute("readonly") {
			return finding(pos, fmt.Sprintf("memory keyword required: %q is redeclared writable in an extension", d.Name))
		}
		return finding(pos, fmt.Sprintf("memory keyword required for writable property %q", d.Name))
	}, decl.KindProperty)
}

// ReadwriteRule flags the default readwrite qualifier.
type ReadwriteRule struct {
	BaseRule
}

func NewReadwriteRule() *ReadwriteRule {
	return &ReadwriteRule{
		BaseRule: BaseRule{
			RuleID:          ruleset.RuleReadwrite,
			RuleCategory:    CategoryAttributes,
			RuleSeverity:    ruleset.SeverityInfo,
			RuleDescription: "readwrite is the default and is omitted",
		},
	}
}

func (r *ReadwriteRule) Check(ctx *Context) []Finding {
	return eachDeclaration(ctx, func(pos int, d *decl.Declaration) []Finding {
		if d.HasAttribute("readwrite") {
			return finding(pos, fmt.Sprintf("readwrite is the default and should be omitted from %q", d.Name))
		}
		return nil
	}, decl.KindProperty)
}
