package header

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/JNZader/declint/internal/decl"
)

var (
	trailingMacro = regexp.MustCompile(`\s+(?:__attribute__\s*\(\(.*\)\)|[A-Z][A-Z0-9_]*(?:\([^;]*\))?)\s*$`)
	spaces        = regexp.MustCompile(`\s+`)
)

var nullabilityQualifiers = map[string]bool{
	"nullable":         true,
	"nonnull":          true,
	"null_unspecified": true,
	"null_resettable":  true,
	"_Nullable":        true,
	"_Nonnull":         true,
}

var errNoName = errors.New("declaration has no name")

// parseDeclaration reads a method or property from the lines of one
// statement.
func parseDeclaration(lines []string) (decl.Declaration, error) {
	text := strings.TrimSpace(spaces.ReplaceAllString(strings.Join(trimAll(lines), " "), " "))
	text = strings.TrimSpace(strings.TrimSuffix(text, ";"))

	switch {
	case strings.HasPrefix(text, "@property"):
		return parseProperty(strings.TrimSpace(strings.TrimPrefix(text, "@property")))
	case strings.HasPrefix(text, "+"), strings.HasPrefix(text, "-"):
		return parseMethod(text)
	default:
		return decl.Declaration{}, fmt.Errorf("unrecognised declaration %q", text)
	}
}

func parseMethod(text string) (decl.Declaration, error) {
	d := decl.Declaration{Kind: decl.KindMethod, Static: text[0] == '+'}
	rest := strings.TrimSpace(text[1:])

	if strings.HasPrefix(rest, "(") {
		inner, tail, ok := balanced(rest)
		if !ok {
			return d, fmt.Errorf("unbalanced return type in %q", text)
		}
		d.ReturnType = strings.TrimSpace(inner)
		rest = strings.TrimSpace(tail)
	}

	if !strings.Contains(rest, ":") {
		d.Name = identifier.FindString(rest)
		if d.Name == "" {
			return d, errNoName
		}
		return d, nil
	}

	var selector strings.Builder
	for {
		rest = strings.TrimSpace(rest)
		label := identifier.FindString(rest)
		after := strings.TrimSpace(rest[len(label):])
		if !strings.HasPrefix(after, ":") {
			break
		}
		after = strings.TrimSpace(after[1:])

		p := decl.Parameter{Label: label}
		if strings.HasPrefix(after, "(") {
			inner, tail, ok := balanced(after)
			if !ok {
				return d, fmt.Errorf("unbalanced parameter type in %q", text)
			}
			p.Nullability, p.Type = splitNullability(inner)
			after = strings.TrimSpace(tail)
		}
		p.Name = identifier.FindString(after)
		rest = after[len(p.Name):]

		d.Parameters = append(d.Parameters, p)
		selector.WriteString(label)
		selector.WriteString(":")
	}

	d.Name = selector.String()
	if d.Name == "" {
		return d, errNoName
	}
	return d, nil
}

func parseProperty(text string) (decl.Declaration, error) {
	d := decl.Declaration{Kind: decl.KindProperty}

	if strings.HasPrefix(text, "(") {
		inner, tail, ok := balanced(text)
		if !ok {
			return d, fmt.Errorf("unbalanced attributes in %q", text)
		}
		for _, attr := range strings.Split(inner, ",") {
			if attr = strings.TrimSpace(attr); attr != "" {
				d.Attributes = append(d.Attributes, attr)
			}
		}
		text = strings.TrimSpace(tail)
	}

	for {
		stripped := trailingMacro.ReplaceAllString(text, "")
		// a type and a name must remain
		if stripped == text || !strings.ContainsAny(strings.TrimSpace(stripped), " *") {
			break
		}
		text = stripped
	}

	// block property: void (^handler)(BOOL)
	if i := strings.Index(text, "(^"); i >= 0 {
		name := identifier.FindString(text[i+2:])
		if name == "" {
			return d, errNoName
		}
		d.Name = name
		d.Type = strings.TrimSpace(strings.Replace(text, "^"+name, "^", 1))
		return d, nil
	}

	end := len(text)
	start := end
	for start > 0 && isIdentByte(text[start-1]) {
		start--
	}
	if start == end {
		return d, errNoName
	}
	d.Name = text[start:end]
	d.Type = strings.TrimRight(text[:start], " ")
	if strings.HasSuffix(d.Type, "*") {
		d.Type = strings.TrimRight(strings.TrimSuffix(d.Type, "*"), " ") + " *"
	}
	return d, nil
}

// balanced splits "(inner)tail" honouring nested parentheses.
func balanced(s string) (inner, tail string, ok bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[1:i], s[i+1:], true
			}
		}
	}
	return "", "", false
}

func splitNullability(typ string) (nullability, rest string) {
	typ = strings.TrimSpace(typ)
	if i := strings.IndexByte(typ, ' '); i > 0 && nullabilityQualifiers[typ[:i]] {
		return typ[:i], strings.TrimSpace(typ[i+1:])
	}
	return "", typ
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func trimAll(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimSpace(l)
	}
	return out
}
