package ruleset

import "strings"

// Ordering selects the mandated relative order of declaration blocks.
type Ordering string

const (
	// OrderingMethodsFirst: class methods, instance methods, class
	// properties, instance properties.
	OrderingMethodsFirst Ordering = "methodsFirst"

	// OrderingPropertiesFirst: class properties, instance properties, class
	// methods, instance methods.
	OrderingPropertiesFirst Ordering = "propertiesFirst"
)

// Orderings lists the supported conventions.
func Orderings() []Ordering {
	return []Ordering{OrderingMethodsFirst, OrderingPropertiesFirst}
}

// Valid reports whether o names a supported convention.
func (o Ordering) Valid() bool {
	return o == OrderingMethodsFirst || o == OrderingPropertiesFirst
}

// Block is one contiguous group of declarations inside an interface.
type Block int

const (
	BlockClassMethods Block = iota
	BlockInstanceMethods
	BlockClassProperties
	BlockInstanceProperties
)

func (b Block) String() string {
	switch b {
	case BlockClassMethods:
		return "class methods"
	case BlockInstanceMethods:
		return "instance methods"
	case BlockClassProperties:
		return "class properties"
	case BlockInstanceProperties:
		return "instance properties"
	default:
		return "unknown"
	}
}

// Blocks returns the blocks in the order the convention mandates.
func (o Ordering) Blocks() []Block {
	switch o {
	case OrderingPropertiesFirst:
		return []Block{BlockClassProperties, BlockInstanceProperties, BlockClassMethods, BlockInstanceMethods}
	default:
		return []Block{BlockClassMethods, BlockInstanceMethods, BlockClassProperties, BlockInstanceProperties}
	}
}

// Rank returns the position of b under the convention.
func (o Ordering) Rank(b Block) int {
	for i, blk := range o.Blocks() {
		if blk == b {
			return i
		}
	}
	return -1
}

// Severity indicates how serious a violation is.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

var severityOrder = map[Severity]int{
	SeverityInfo:    0,
	SeverityWarning: 1,
	SeverityError:   2,
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	_, ok := severityOrder[s]
	return ok
}

// AtLeast reports whether s is as severe as min.
func (s Severity) AtLeast(min Severity) bool {
	return severityOrder[s] >= severityOrder[min]
}

// ParseSeverity parses a severity name case-insensitively.
func ParseSeverity(s string) (Severity, bool) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	return sev, sev.Valid()
}

// Rule identifiers. The checker registers exactly one rule per ID.
const (
	RuleMalformed        = "DECL-001"
	RuleGroupingOrder    = "ORD-001"
	RuleAttributeOrder   = "ATTR-001"
	RuleMemoryOmitted    = "ATTR-002"
	RuleMemoryRequired   = "ATTR-003"
	RuleReadwrite        = "ATTR-004"
	RuleLineTooLong      = "LEN-001"
	RuleSplitMisaligned  = "LEN-002"
	RuleSplitUnavoidable = "LEN-003"
	RuleNameCase         = "NAME-001"
	RuleEnumPrefix       = "NAME-002"
	RuleSpacing          = "FMT-001"
)

// RuleIDs returns every known rule ID in report order.
func RuleIDs() []string {
	return []string{
		RuleMalformed,
		RuleGroupingOrder,
		RuleAttributeOrder,
		RuleMemoryOmitted,
		RuleMemoryRequired,
		RuleReadwrite,
		RuleLineTooLong,
		RuleSplitMisaligned,
		RuleSplitUnavoidable,
		RuleNameCase,
		RuleEnumPrefix,
		RuleSpacing,
	}
}

// IsKnownRule reports whether id names a rule.
func IsKnownRule(id string) bool {
	for _, known := range RuleIDs() {
		if known == id {
			return true
		}
	}
	return false
}
