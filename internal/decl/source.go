package decl

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source produces declaration units from raw file content.
type Source interface {
	// Name identifies the source in logs.
	Name() string

	// Accepts reports whether the source can read the given path.
	Accepts(path string) bool

	// Parse reads a unit from content. The path is used for locations only.
	Parse(path string, content []byte) (*Unit, error)
}

// documentSuffixes are the file suffixes of declaration documents.
var documentSuffixes = []string{".decl.yaml", ".decl.yml", ".decl.json"}

// DocumentSource reads YAML or JSON declaration documents.
type DocumentSource struct{}

// NewDocumentSource creates a declaration document source.
func NewDocumentSource() *DocumentSource {
	return &DocumentSource{}
}

func (s *DocumentSource) Name() string { return "document" }

func (s *DocumentSource) Accepts(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, suffix := range documentSuffixes {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}

// Parse decodes a document. JSON is read through the YAML decoder since it
// is a subset of YAML.
func (s *DocumentSource) Parse(path string, content []byte) (*Unit, error) {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var unit Unit
	if err := dec.Decode(&unit); err != nil {
		if err == io.EOF {
			return &Unit{File: path}, nil
		}
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	unit.File = path
	Normalize(&unit)
	LinkRedeclarations(&unit)
	return &unit, nil
}

// LoadDocument reads and parses a declaration document from disk.
func LoadDocument(path string) (*Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewDocumentSource().Parse(path, data)
}

// Normalize assigns positional indexes and fills missing locations from the
// enclosing unit and interface.
func Normalize(unit *Unit) {
	for i := range unit.Interfaces {
		iface := &unit.Interfaces[i]
		if iface.File == "" {
			iface.File = unit.File
		}
		if iface.Kind == "" {
			iface.Kind = InterfaceClass
		}
		for j := range iface.Declarations {
			d := &iface.Declarations[j]
			d.Index = j
			if d.File == "" {
				d.File = iface.File
			}
		}
	}
}

// LinkRedeclarations marks readonly properties that a class extension of
// the same class redeclares as writable.
func LinkRedeclarations(unit *Unit) {
	writable := make(map[string]map[string]bool)
	for _, iface := range unit.Interfaces {
		if iface.Kind != InterfaceExtension {
			continue
		}
		for _, d := range iface.Declarations {
			if d.Kind != KindProperty || d.HasAttribute("readonly") {
				continue
			}
			if writable[iface.Name] == nil {
				writable[iface.Name] = make(map[string]bool)
			}
			writable[iface.Name][d.Name] = true
		}
	}
	if len(writable) == 0 {
		return
	}

	for i := range unit.Interfaces {
		iface := &unit.Interfaces[i]
		if iface.Kind == InterfaceExtension {
			continue
		}
		names := writable[iface.Name]
		for j := range iface.Declarations {
			d := &iface.Declarations[j]
			if d.Kind == KindProperty && d.HasAttribute("readonly") && names[d.Name] {
				d.Redeclared = true
			}
		}
	}
}
