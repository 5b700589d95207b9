// Package header reads declaration records out of Objective-C header files.
//
// The scanner understands only the declaration style declint checks:
// @interface, class extensions, categories and @protocol blocks closed by
// @end, method and property declarations (possibly spanning lines) and
// NS_ENUM/NS_OPTIONS enums. Everything else is skipped.
package header

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/JNZader/declint/internal/decl"
)

var (
	interfaceStart = regexp.MustCompile(`^@interface\s+([A-Za-z_][A-Za-z0-9_]*)\s*(?:\(\s*([A-Za-z_][A-Za-z0-9_]*)?\s*\))?`)
	protocolStart  = regexp.MustCompile(`^@protocol\s+([A-Za-z_][A-Za-z0-9_]*)`)
	enumMacro      = regexp.MustCompile(`^(?:typedef\s+)?NS_(?:ENUM|OPTIONS|CLOSED_ENUM|ERROR_ENUM)\s*\(\s*[^,]+,\s*([A-Za-z_][A-Za-z0-9_]*)\s*\)`)
	plainEnum      = regexp.MustCompile(`^typedef\s+enum\b`)
	enumClose      = regexp.MustCompile(`^}\s*([A-Za-z_][A-Za-z0-9_]*)?\s*;?`)
	identifier     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)
)

// Source reads .h files.
type Source struct{}

// NewSource creates a header source.
func NewSource() *Source {
	return &Source{}
}

func (s *Source) Name() string { return "header" }

func (s *Source) Accepts(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".h")
}

func (s *Source) Parse(path string, content []byte) (*decl.Unit, error) {
	return Scan(path, bytes.NewReader(content))
}

type state int

const (
	stateTop state = iota
	stateInterface
	stateIvars
	stateEnum
)

type scanner struct {
	path  string
	unit  *decl.Unit
	state state

	iface *decl.Interface
	enum  *decl.Interface

	inComment bool

	// pending statement
	stmt     []string
	stmtLine int
}

// Scan reads a header and returns its interfaces. A header with an
// unterminated @interface or declaration is an error.
func Scan(path string, r io.Reader) (*decl.Unit, error) {
	sc := &scanner{path: path, unit: &decl.Unit{File: path}}

	lines := bufio.NewScanner(r)
	lines.Buffer(make([]byte, 64*1024), 1024*1024)
	n := 0
	for lines.Scan() {
		n++
		if err := sc.line(lines.Text(), n); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, n, err)
		}
	}
	if err := lines.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	switch {
	case len(sc.stmt) > 0:
		return nil, fmt.Errorf("%s:%d: unterminated declaration", path, sc.stmtLine)
	case sc.state == stateEnum:
		return nil, fmt.Errorf("%s:%d: unterminated enum %s", path, sc.enum.Line, sc.enum.Name)
	case sc.iface != nil:
		return nil, fmt.Errorf("%s:%d: missing @end for %s", path, sc.iface.Line, sc.iface.Name)
	}

	decl.Normalize(sc.unit)
	decl.LinkRedeclarations(sc.unit)
	return sc.unit, nil
}

func (sc *scanner) line(raw string, n int) error {
	code := sc.stripComments(raw)
	trimmed := strings.TrimSpace(code)

	if len(sc.stmt) > 0 {
		sc.stmt = append(sc.stmt, strings.TrimRight(code, " \t"))
		if strings.Contains(trimmed, ";") {
			return sc.finishStatement()
		}
		return nil
	}
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil
	}

	switch sc.state {
	case stateEnum:
		return sc.enumLine(code, trimmed, n)
	case stateIvars:
		if strings.HasPrefix(trimmed, "}") {
			sc.state = stateInterface
		}
		return nil
	case stateInterface:
		return sc.interfaceLine(code, trimmed, n)
	default:
		return sc.topLine(trimmed, n)
	}
}

func (sc *scanner) topLine(trimmed string, n int) error {
	if m := interfaceStart.FindStringSubmatch(trimmed); m != nil {
		kind := decl.InterfaceClass
		name := m[1]
		if strings.Contains(trimmed[:len(m[0])], "(") {
			if m[2] == "" {
				kind = decl.InterfaceExtension
			} else {
				name = m[1] + "(" + m[2] + ")"
			}
		}
		sc.open(name, kind, n)
		if strings.HasSuffix(trimmed, "{") {
			sc.state = stateIvars
		}
		return nil
	}

	if m := protocolStart.FindStringSubmatch(trimmed); m != nil {
		if strings.HasSuffix(trimmed, ";") {
			// forward declaration
			return nil
		}
		sc.open(m[1], decl.InterfaceProtocol, n)
		return nil
	}

	if m := enumMacro.FindStringSubmatch(trimmed); m != nil {
		sc.openEnum(m[1], trimmed, n)
		return nil
	}
	if plainEnum.MatchString(trimmed) {
		sc.openEnum("", trimmed, n)
		return nil
	}
	return nil
}

func (sc *scanner) open(name string, kind decl.InterfaceKind, n int) {
	sc.iface = &decl.Interface{Name: name, Kind: kind, File: sc.path, Line: n}
	sc.state = stateInterface
}

func (sc *scanner) openEnum(name, trimmed string, n int) {
	sc.enum = &decl.Interface{Name: name, Kind: decl.InterfaceEnum, File: sc.path, Line: n}
	sc.state = stateEnum
	if i := strings.Index(trimmed, "{"); i >= 0 {
		rest := trimmed[i+1:]
		if strings.TrimSpace(rest) != "" {
			_ = sc.enumLine(rest, strings.TrimSpace(rest), n)
		}
	}
}

func (sc *scanner) interfaceLine(code, trimmed string, n int) error {
	switch {
	case strings.HasPrefix(trimmed, "@end"):
		sc.unit.Interfaces = append(sc.unit.Interfaces, *sc.iface)
		sc.iface = nil
		sc.state = stateTop
		return nil
	case trimmed == "{":
		sc.state = stateIvars
		return nil
	case strings.HasPrefix(trimmed, "+"), strings.HasPrefix(trimmed, "-"), strings.HasPrefix(trimmed, "@property"):
		sc.stmt = []string{strings.TrimRight(code, " \t")}
		sc.stmtLine = n
		if strings.Contains(trimmed, ";") {
			return sc.finishStatement()
		}
		return nil
	default:
		// @optional, @required and anything else inside an interface
		return nil
	}
}

func (sc *scanner) finishStatement() error {
	lines := sc.stmt
	line := sc.stmtLine
	sc.stmt = nil

	// keep nothing after the terminating semicolon
	last := len(lines) - 1
	if i := strings.Index(lines[last], ";"); i >= 0 {
		lines[last] = lines[last][:i+1]
	}

	// A nameless declaration is kept for the malformed-declaration rule.
	d, err := parseDeclaration(lines)
	if err != nil && !errors.Is(err, errNoName) {
		return err
	}
	d.Lines = lines
	d.File = sc.path
	d.Line = line
	sc.iface.Declarations = append(sc.iface.Declarations, d)
	return nil
}

func (sc *scanner) enumLine(code, trimmed string, n int) error {
	body := trimmed
	closing := false
	var closeName string
	if i := strings.Index(body, "}"); i >= 0 {
		if m := enumClose.FindStringSubmatch(body[i:]); m != nil {
			closeName = m[1]
		}
		body = body[:i]
		closing = true
	}
	body = strings.TrimPrefix(strings.TrimSpace(body), "{")

	for _, part := range strings.Split(body, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name := identifier.FindString(part)
		if name == "" {
			continue
		}
		sc.enum.Declarations = append(sc.enum.Declarations, decl.Declaration{
			Kind:  decl.KindEnumCase,
			Name:  name,
			Lines: []string{strings.TrimRight(code, " \t")},
			File:  sc.path,
			Line:  n,
		})
	}

	if closing {
		if sc.enum.Name == "" {
			sc.enum.Name = closeName
		}
		sc.unit.Interfaces = append(sc.unit.Interfaces, *sc.enum)
		sc.enum = nil
		sc.state = stateTop
	}
	return nil
}

// stripComments removes // and /* */ comments, tracking block comments
// across lines.
func (sc *scanner) stripComments(line string) string {
	var out strings.Builder
	for i := 0; i < len(line); {
		if sc.inComment {
			end := strings.Index(line[i:], "*/")
			if end < 0 {
				return out.String()
			}
			i += end + 2
			sc.inComment = false
			continue
		}
		if strings.HasPrefix(line[i:], "//") {
			break
		}
		if strings.HasPrefix(line[i:], "/*") {
			sc.inComment = true
			i += 2
			continue
		}
		out.WriteByte(line[i])
		i++
	}
	return out.String()
}
