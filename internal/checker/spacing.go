package checker

import (
	"fmt"
	"strings"

	"github.com/JNZader/declint/internal/decl"
	"github.com/JNZader/declint/internal/ruleset"
)

// SpacingRule checks the single space after the method sign and after
// @property. It only applies when source lines are known.
type SpacingRule struct {
	BaseRule
}

func NewSpacingRule() *SpacingRule {
	return &SpacingRule{
		BaseRule: BaseRule{
			RuleID:          ruleset.RuleSpacing,
			RuleCategory:    CategoryLayout,
			RuleSeverity:    ruleset.SeverityInfo,
			RuleDescription: "One space follows +/- and @property",
		},
	}
}

func (r *SpacingRule) Check(ctx *Context) []Finding {
	return eachDeclaration(ctx, func(pos int, d *decl.Declaration) []Finding {
		if len(d.Lines) == 0 {
			return nil
		}
		first := strings.TrimLeft(d.Lines[0], " \t")

		var keyword string
		switch {
		case d.Kind == decl.KindMethod && (strings.HasPrefix(first, "+") || strings.HasPrefix(first, "-")):
			keyword = first[:1]
		case d.Kind == decl.KindProperty && strings.HasPrefix(first, "@property"):
			keyword = "@property"
		default:
			return nil
		}

		rest := first[len(keyword):]
		spaces := len(rest) - len(strings.TrimLeft(rest, " \t"))
		if spaces == 1 && rest[0] == ' ' {
			return nil
		}
		return finding(pos, fmt.Sprintf("use exactly one space after %s (found %d)", keyword, spaces))
	}, decl.KindMethod, decl.KindProperty)
}
