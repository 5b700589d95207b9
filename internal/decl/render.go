package decl

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const propertyOpen = "@property ("

var selectorPiece = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*:\s*\(`)

// Layout is a multi-line rendering of a declaration.
type Layout struct {
	Lines []string
	// Anchor is the column every line aligns on: the colon of the first
	// selector piece for methods, the first attribute for properties.
	Anchor int
	// Aligned is false when some piece is longer than the anchor and cannot
	// be aligned at all.
	Aligned bool
}

// Longest returns the length in characters of the longest line in the
// layout.
func (l Layout) Longest() int {
	n := 0
	for _, line := range l.Lines {
		n = max(n, utf8.RuneCountInString(line))
	}
	return n
}

// SingleLine renders the declaration on one line in canonical spacing.
func (d *Declaration) SingleLine() string {
	switch d.Kind {
	case KindMethod:
		prefix := d.methodPrefix()
		if len(d.Parameters) == 0 {
			return prefix + d.Name + ";"
		}
		pieces := make([]string, len(d.Parameters))
		for i, p := range d.Parameters {
			pieces[i] = p.render()
		}
		return prefix + strings.Join(pieces, " ") + ";"
	case KindProperty:
		var sb strings.Builder
		sb.WriteString("@property ")
		if len(d.Attributes) > 0 {
			sb.WriteString("(")
			sb.WriteString(strings.Join(d.Attributes, ", "))
			sb.WriteString(") ")
		}
		sb.WriteString(d.typeAndName())
		sb.WriteString(";")
		return sb.String()
	case KindEnumCase:
		return d.Name + ","
	default:
		if len(d.Lines) > 0 {
			return joinTrimmed(d.Lines)
		}
		return d.Name
	}
}

// LineLength is the length in characters of the single-line rendering.
func (d *Declaration) LineLength() int {
	return utf8.RuneCountInString(d.SingleLine())
}

// SplitLayout renders the declaration one parameter (methods) or one
// attribute (properties) per line. It returns false when the declaration
// has fewer than two pieces and cannot be split.
func (d *Declaration) SplitLayout() (Layout, bool) {
	switch d.Kind {
	case KindMethod:
		if len(d.Parameters) < 2 {
			return Layout{}, false
		}
		prefix := d.methodPrefix()
		anchor := utf8.RuneCountInString(prefix) + utf8.RuneCountInString(d.Parameters[0].Label)
		layout := Layout{Anchor: anchor, Aligned: true}
		for i, p := range d.Parameters {
			line := p.render()
			if i == 0 {
				line = prefix + line
			} else {
				pad := anchor - utf8.RuneCountInString(p.Label)
				if pad < 0 {
					layout.Aligned = false
					pad = 0
				}
				line = strings.Repeat(" ", pad) + line
			}
			if i == len(d.Parameters)-1 {
				line += ";"
			}
			layout.Lines = append(layout.Lines, line)
		}
		return layout, true
	case KindProperty:
		if len(d.Attributes) < 2 {
			return Layout{}, false
		}
		anchor := len(propertyOpen)
		layout := Layout{Anchor: anchor, Aligned: true}
		last := len(d.Attributes) - 1
		for i, attr := range d.Attributes {
			var line string
			if i == 0 {
				line = propertyOpen + attr
			} else {
				line = strings.Repeat(" ", anchor) + attr
			}
			if i == last {
				line += ") " + d.typeAndName() + ";"
			} else {
				line += ","
			}
			layout.Lines = append(layout.Lines, line)
		}
		return layout, true
	default:
		return Layout{}, false
	}
}

// WrittenAnchors returns the alignment column of each written line, or -1
// where a line has no recognisable delimiter.
func (d *Declaration) WrittenAnchors() []int {
	anchors := make([]int, len(d.Lines))
	for i, line := range d.Lines {
		switch d.Kind {
		case KindMethod:
			anchors[i] = strings.Index(line, ":")
		case KindProperty:
			if i == 0 {
				if p := strings.Index(line, "("); p >= 0 {
					anchors[i] = p + 1
				} else {
					anchors[i] = -1
				}
			} else {
				anchors[i] = len(line) - len(strings.TrimLeft(line, " \t"))
			}
		default:
			anchors[i] = -1
		}
	}
	return anchors
}

// PiecesPerLine counts selector pieces (methods) or attributes (properties)
// on each written line.
func (d *Declaration) PiecesPerLine() []int {
	counts := make([]int, len(d.Lines))
	for i, line := range d.Lines {
		switch d.Kind {
		case KindMethod:
			counts[i] = len(selectorPiece.FindAllStringIndex(line, -1))
		case KindProperty:
			counts[i] = countAttributes(line, i == 0)
		}
	}
	return counts
}

func countAttributes(line string, first bool) int {
	body := line
	if first {
		p := strings.Index(body, "(")
		if p < 0 {
			return 0
		}
		body = body[p+1:]
	}
	if p := strings.Index(body, ")"); p >= 0 {
		body = body[:p]
	}
	n := 0
	for _, tok := range strings.Split(body, ",") {
		if strings.TrimSpace(tok) != "" {
			n++
		}
	}
	return n
}

func (d *Declaration) methodPrefix() string {
	sign := "-"
	if d.Static {
		sign = "+"
	}
	return sign + " (" + d.ReturnType + ")"
}

func (d *Declaration) typeAndName() string {
	if strings.HasSuffix(d.Type, "*") {
		return d.Type + d.Name
	}
	return d.Type + " " + d.Name
}

func (p Parameter) render() string {
	typ := p.Type
	if p.Nullability != "" {
		typ = p.Nullability + " " + typ
	}
	return p.Label + ":(" + typ + ")" + p.Name
}

func joinTrimmed(lines []string) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		if t := strings.TrimSpace(l); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
