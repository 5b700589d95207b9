package checker

import (
	"fmt"

	"github.com/JNZader/declint/internal/decl"
	"github.com/JNZader/declint/internal/ruleset"
)

// GroupingOrderRule checks that declaration blocks follow the ordering
// convention of the RuleSet.
type GroupingOrderRule struct {
	BaseRule
}

func NewGroupingOrderRule() *GroupingOrderRule {
	return &GroupingOrderRule{
		BaseRule: BaseRule{
			RuleID:          ruleset.RuleGroupingOrder,
			RuleCategory:    CategoryStructure,
			RuleSeverity:    ruleset.SeverityWarning,
			RuleDescription: "Class methods, instance methods, class properties and instance properties appear in the configured block order",
		},
	}
}

// Check reports every declaration that appears before a declaration of an
// earlier block.
func (r *GroupingOrderRule) Check(ctx *Context) []Finding {
	ordering := ctx.RuleSet.Ordering()
	decls := ctx.Interface.Declarations

	// earliest[i] is the lowest-ranked declaration after position i
	earliest := make([]int, len(decls))
	minRank, minPos := len(ordering.Blocks()), -1
	for i := len(decls) - 1; i >= 0; i-- {
		earliest[i] = minPos
		block, ok := blockOf(&decls[i])
		if !ok {
			continue
		}
		if rank := ordering.Rank(block); rank <= minRank {
			minRank, minPos = rank, i
		}
	}

	var findings []Finding
	for i := range decls {
		block, ok := blockOf(&decls[i])
		if !ok || earliest[i] < 0 {
			continue
		}
		next := &decls[earliest[i]]
		nextBlock, _ := blockOf(next)
		if ordering.Rank(nextBlock) >= ordering.Rank(block) {
			continue
		}
		findings = append(findings, Finding{
			Position: i,
			Message: fmt.Sprintf("%s %q appears before %s %q; %s must precede %s under %s",
				singular(block), decls[i].Name, singular(nextBlock), next.Name, nextBlock, block, ordering),
		})
	}
	return findings
}

// blockOf returns the block a declaration belongs to. Enum cases and
// malformed declarations have none.
func blockOf(d *decl.Declaration) (ruleset.Block, bool) {
	switch d.Kind {
	case decl.KindMethod:
		if d.Static {
			return ruleset.BlockClassMethods, true
		}
		return ruleset.BlockInstanceMethods, true
	case decl.KindProperty:
		if d.IsClassLevel() {
			return ruleset.BlockClassProperties, true
		}
		return ruleset.BlockInstanceProperties, true
	default:
		return 0, false
	}
}

func singular(b ruleset.Block) string {
	switch b {
	case ruleset.BlockClassMethods:
		return "class method"
	case ruleset.BlockInstanceMethods:
		return "instance method"
	case ruleset.BlockClassProperties:
		return "class property"
	case ruleset.BlockInstanceProperties:
		return "instance property"
	default:
		return "declaration"
	}
}
