package checker

import (
	"fmt"

	"github.com/JNZader/declint/internal/decl"
	"github.com/JNZader/declint/internal/ruleset"
)

// lengthAssessment is what the three wrapping rules share about one
// declaration.
type lengthAssessment struct {
	single     int
	limit      int
	layout     decl.Layout
	splittable bool
	feasible   bool
}

func assessLength(d *decl.Declaration, limit int) lengthAssessment {
	a := lengthAssessment{single: d.LineLength(), limit: limit}
	layout, ok := d.SplitLayout()
	if ok {
		a.layout = layout
		a.splittable = true
		a.feasible = layout.Aligned && layout.Longest() <= limit
	}
	return a
}

func (a lengthAssessment) tooLong() bool {
	return a.single > a.limit
}

func pieceName(d *decl.Declaration) string {
	if d.Kind == decl.KindProperty {
		return "attribute"
	}
	return "parameter"
}

// LineTooLongRule flags a long declaration left on one line although an
// aligned split fits.
type LineTooLongRule struct {
	BaseRule
}

func NewLineTooLongRule() *LineTooLongRule {
	return &LineTooLongRule{
		BaseRule: BaseRule{
			RuleID:          ruleset.RuleLineTooLong,
			RuleCategory:    CategoryLayout,
			RuleSeverity:    ruleset.SeverityWarning,
			RuleDescription: "Declarations longer than the limit are split one piece per line",
		},
	}
}

func (r *LineTooLongRule) Check(ctx *Context) []Finding {
	limit := ctx.RuleSet.MaxLineLength()
	return eachDeclaration(ctx, func(pos int, d *decl.Declaration) []Finding {
		if d.IsSplit() {
			return nil
		}
		a := assessLength(d, limit)
		if !a.tooLong() || !a.feasible {
			return nil
		}
		return finding(pos, fmt.Sprintf("signature is %d characters (max %d); split it one %s per line aligned on column %d",
			a.single, limit, pieceName(d), a.layout.Anchor))
	}, decl.KindMethod, decl.KindProperty)
}

// SplitMisalignedRule checks the shape of a split declaration: one piece
// per line, continuations aligned to the first line's delimiter.
type SplitMisalignedRule struct {
	BaseRule
}

func NewSplitMisalignedRule() *SplitMisalignedRule {
	return &SplitMisalignedRule{
		BaseRule: BaseRule{
			RuleID:          ruleset.RuleSplitMisaligned,
			RuleCategory:    CategoryLayout,
			RuleSeverity:    ruleset.SeverityWarning,
			RuleDescription: "Split declarations put one piece per line, aligned on the first line's colon or parenthesis",
		},
	}
}

func (r *SplitMisalignedRule) Check(ctx *Context) []Finding {
	limit := ctx.RuleSet.MaxLineLength()
	return eachDeclaration(ctx, func(pos int, d *decl.Declaration) []Finding {
		if !d.IsSplit() {
			return nil
		}
		a := assessLength(d, limit)
		if !a.tooLong() || !a.feasible {
			return nil
		}

		for n, count := range d.PiecesPerLine() {
			if count != 1 {
				return finding(pos, fmt.Sprintf("line %d of %q holds %d %ss; put one %s per line",
					n+1, d.Name, count, pieceName(d), pieceName(d)))
			}
		}

		anchors := d.WrittenAnchors()
		for n := 1; n < len(anchors); n++ {
			if anchors[n] != anchors[0] {
				return finding(pos, fmt.Sprintf("line %d of %q is aligned on column %d, want column %d",
					n+1, d.Name, anchors[n], anchors[0]))
			}
		}
		return nil
	}, decl.KindMethod, decl.KindProperty)
}

// SplitUnavoidableRule flags a split that cannot be aligned within the
// limit; such declarations stay on one line.
type SplitUnavoidableRule struct {
	BaseRule
}

func NewSplitUnavoidableRule() *SplitUnavoidableRule {
	return &SplitUnavoidableRule{
		BaseRule: BaseRule{
			RuleID:          ruleset.RuleSplitUnavoidable,
			RuleCategory:    CategoryLayout,
			RuleSeverity:    ruleset.SeverityInfo,
			RuleDescription: "Declarations whose aligned split would still exceed the limit are left unsplit",
		},
	}
}

func (r *SplitUnavoidableRule) Check(ctx *Context) []Finding {
	limit := ctx.RuleSet.MaxLineLength()
	return eachDeclaration(ctx, func(pos int, d *decl.Declaration) []Finding {
		if !d.IsSplit() {
			return nil
		}
		a := assessLength(d, limit)
		if !a.tooLong() || a.feasible {
			return nil
		}
		reason := fmt.Sprintf("its longest aligned line is %d characters", a.layout.Longest())
		switch {
		case !a.splittable:
			reason = "it has a single " + pieceName(d)
		case !a.layout.Aligned:
			reason = "a label is longer than the first line's anchor"
		}
		return finding(pos, fmt.Sprintf("%q cannot be split within %d characters (%s); leave it on one line", d.Name, limit, reason))
	}, decl.KindMethod, decl.KindProperty)
}
