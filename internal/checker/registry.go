package checker

import (
	"sort"

	"github.com/JNZader/declint/internal/ruleset"
)

// Registry holds the available rules keyed by ID.
type Registry struct {
	rules map[string]Rule
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Rule)}
}

// DefaultRegistry returns a registry with every built-in rule.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaultRules(r)
	return r
}

// Register adds a rule, replacing any rule with the same ID.
func (r *Registry) Register(rule Rule) {
	r.rules[rule.ID()] = rule
}

// Get retrieves a rule by ID.
func (r *Registry) Get(id string) (Rule, bool) {
	rule, ok := r.rules[id]
	return rule, ok
}

// All returns every registered rule sorted by ID.
func (r *Registry) All() []Rule {
	out := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Enabled returns the rules the RuleSet leaves enabled, sorted by ID.
func (r *Registry) Enabled(rs *ruleset.RuleSet) []Rule {
	all := r.All()
	out := all[:0]
	for _, rule := range all {
		if rs.Enabled(rule.ID()) {
			out = append(out, rule)
		}
	}
	return out
}

// RegisterDefaultRules registers all built-in rules.
func RegisterDefaultRules(r *Registry) {
	r.Register(NewMalformedRule())

	// structure
	r.Register(NewGroupingOrderRule())

	// property qualifiers
	r.Register(NewAttributeOrderRule())
	r.Register(NewMemoryOmittedRule())
	r.Register(NewMemoryRequiredRule())
	r.Register(NewReadwriteRule())

	// wrapping
	r.Register(NewLineTooLongRule())
	r.Register(NewSplitMisalignedRule())
	r.Register(NewSplitUnavoidableRule())

	// naming
	r.Register(NewNameCaseRule())
	r.Register(NewEnumPrefixRule())

	r.Register(NewSpacingRule())
}
