// Package decl defines the declaration records checked by declint.
//
// Records are produced by a declaration source (a YAML/JSON document or the
// header scanner) and consumed read-only by the rule checker.
package decl

// Kind identifies what a declaration declares.
type Kind string

const (
	KindMethod   Kind = "method"
	KindProperty Kind = "property"
	KindEnumCase Kind = "enum_case"
)

// Valid reports whether k is a known declaration kind.
func (k Kind) Valid() bool {
	switch k {
	case KindMethod, KindProperty, KindEnumCase:
		return true
	default:
		return false
	}
}

// InterfaceKind identifies the enclosing construct of a set of declarations.
type InterfaceKind string

const (
	InterfaceClass     InterfaceKind = "class"
	InterfaceProtocol  InterfaceKind = "protocol"
	InterfaceExtension InterfaceKind = "extension"
	InterfaceEnum      InterfaceKind = "enum"
)

// Parameter is one selector piece of a method.
type Parameter struct {
	Label       string `yaml:"label" json:"label"`
	Type        string `yaml:"type" json:"type"`
	Nullability string `yaml:"nullability,omitempty" json:"nullability,omitempty"`
	Name        string `yaml:"name" json:"name"`
}

// Declaration is a single method, property or enum case.
type Declaration struct {
	Kind   Kind `yaml:"kind" json:"kind"`
	Static bool `yaml:"static,omitempty" json:"static,omitempty"`

	// Index is the position within the enclosing interface.
	Index int    `yaml:"index" json:"index"`
	Name  string `yaml:"name" json:"name"`

	ReturnType string      `yaml:"return_type,omitempty" json:"return_type,omitempty"`
	Parameters []Parameter `yaml:"parameters,omitempty" json:"parameters,omitempty"`

	Type       string   `yaml:"type,omitempty" json:"type,omitempty"`
	Attributes []string `yaml:"attributes,omitempty" json:"attributes,omitempty"`

	// Redeclared marks a property with a writable redeclaration elsewhere,
	// typically a class extension.
	Redeclared bool `yaml:"redeclared,omitempty" json:"redeclared,omitempty"`

	// Lines holds the signature as written. Empty means unknown and is
	// treated as a single unsplit line.
	Lines []string `yaml:"lines,omitempty" json:"lines,omitempty"`

	File string `yaml:"file,omitempty" json:"file,omitempty"`
	Line int    `yaml:"line,omitempty" json:"line,omitempty"`
}

// IsClassLevel reports whether the declaration belongs to a class block.
// Properties are class-level when marked static or carrying the class
// attribute.
func (d *Declaration) IsClassLevel() bool {
	if d.Static {
		return true
	}
	if d.Kind == KindProperty {
		for _, a := range d.Attributes {
			if a == "class" {
				return true
			}
		}
	}
	return false
}

// IsSplit reports whether the declaration was written over several lines.
func (d *Declaration) IsSplit() bool {
	return len(d.Lines) > 1
}

// HasAttribute reports whether the property carries the given qualifier.
func (d *Declaration) HasAttribute(attr string) bool {
	for _, a := range d.Attributes {
		if a == attr {
			return true
		}
	}
	return false
}

// Interface is an ordered group of declarations: a class interface, a
// protocol, a class extension or an enum.
type Interface struct {
	Name         string        `yaml:"name" json:"name"`
	Kind         InterfaceKind `yaml:"kind" json:"kind"`
	File         string        `yaml:"file,omitempty" json:"file,omitempty"`
	Line         int           `yaml:"line,omitempty" json:"line,omitempty"`
	Declarations []Declaration `yaml:"declarations" json:"declarations"`
}

// Clone returns a deep copy so callers can hand interfaces to concurrent
// checks without sharing slices.
func (i Interface) Clone() Interface {
	out := i
	out.Declarations = make([]Declaration, len(i.Declarations))
	for n, d := range i.Declarations {
		d.Parameters = append([]Parameter(nil), d.Parameters...)
		d.Attributes = append([]string(nil), d.Attributes...)
		d.Lines = append([]string(nil), d.Lines...)
		out.Declarations[n] = d
	}
	return out
}

// Unit holds every interface read from one source file.
type Unit struct {
	File       string      `yaml:"file,omitempty" json:"file,omitempty"`
	Interfaces []Interface `yaml:"interfaces" json:"interfaces"`
}

// DeclarationCount returns the number of declarations across all interfaces.
func (u *Unit) DeclarationCount() int {
	n := 0
	for _, iface := range u.Interfaces {
		n += len(iface.Declarations)
	}
	return n
}
