package checker

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/JNZader/declint/internal/decl"
	"github.com/JNZader/declint/internal/ruleset"
)

// NameCaseRule checks that method and property names start lowercase
// unless they start with a configured abbreviation.
type NameCaseRule struct {
	BaseRule
}

func NewNameCaseRule() *NameCaseRule {
	return &NameCaseRule{
		BaseRule: BaseRule{
			RuleID:          ruleset.RuleNameCase,
			RuleCategory:    CategoryNaming,
			RuleSeverity:    ruleset.SeverityWarning,
			RuleDescription: "Method and property names begin with a lowercase letter or a configured abbreviation",
		},
	}
}

func (r *NameCaseRule) Check(ctx *Context) []Finding {
	return eachDeclaration(ctx, func(pos int, d *decl.Declaration) []Finding {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return nil
		}
		first, _ := utf8.DecodeRuneInString(name)
		if unicode.IsLower(first) {
			return nil
		}
		if unicode.IsUpper(first) {
			if _, ok := ctx.RuleSet.LeadingAbbreviation(name); ok {
				return nil
			}
		}
		return finding(pos, fmt.Sprintf("%s name %q should begin with a lowercase letter or one of the abbreviations %v",
			d.Kind, name, ctx.RuleSet.Abbreviations()))
	}, decl.KindMethod, decl.KindProperty)
}

// EnumPrefixRule checks that enum case names start with their enum type's
// name.
type EnumPrefixRule struct {
	BaseRule
}

func NewEnumPrefixRule() *EnumPrefixRule {
	return &EnumPrefixRule{
		BaseRule: BaseRule{
			RuleID:          ruleset.RuleEnumPrefix,
			RuleCategory:    CategoryNaming,
			RuleSeverity:    ruleset.SeverityWarning,
			RuleDescription: "Enum case names are prefixed with the enum type name",
		},
	}
}

// Check only looks inside enums; a case anywhere else is malformed.
func (r *EnumPrefixRule) Check(ctx *Context) []Finding {
	prefix := strings.TrimSpace(ctx.Interface.Name)
	if prefix == "" || ctx.Interface.Kind != decl.InterfaceEnum {
		return nil
	}
	return eachDeclaration(ctx, func(pos int, d *decl.Declaration) []Finding {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return nil
		}
		if strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
			return nil
		}
		return finding(pos, fmt.Sprintf("enum case %q should be prefixed with its type name %q", name, prefix))
	}, decl.KindEnumCase)
}
