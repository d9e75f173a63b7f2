package rules

import (
	"dioxide/internal/config"
)

// Registry is the ordered set of rules. A rule's index is its priority:
// diagnostics at the same position are ordered by it, and so are their fixes.
type Registry struct {
	rules  []Rule
	byName map[string]int
}

// NewRegistry registers rules in order. A later rule with a name already
// registered is ignored.
func NewRegistry(rules ...Rule) *Registry {
	reg := &Registry{byName: make(map[string]int, len(rules))}
	for _, r := range rules {
		if _, dup := reg.byName[r.Name()]; dup {
			continue
		}
		reg.byName[r.Name()] = len(reg.rules)
		reg.rules = append(reg.rules, r)
	}
	return reg
}

// Default returns the built-in rules in registration order.
func Default() *Registry {
	return NewRegistry(
		UnusedVariable{},
		UnusedImport{},
		DeadCode{},
		ImportCycle{},
		Boundary{},
		LineLength{},
		Naming{},
		Formatting{},
	)
}

// Lookup finds a rule by name.
func (r *Registry) Lookup(name string) (Rule, bool) {
	i, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.rules[i], true
}

// Names returns rule names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.rules))
	for i, rule := range r.rules {
		out[i] = rule.Name()
	}
	return out
}

// Rules returns every rule in registration order.
func (r *Registry) Rules() []Rule {
	return r.rules
}

// Priority returns the registration index of name; unknown names sort last.
func (r *Registry) Priority(name string) int {
	if i, ok := r.byName[name]; ok {
		return i
	}
	return len(r.rules)
}

// Enabled returns the rules switched on in cfg, in registration order.
// Rules cfg does not know about always run.
func (r *Registry) Enabled(cfg *config.Config) []Rule {
	var out []Rule
	for _, rule := range r.rules {
		if opts, known := cfg.Options(rule.Name()); !known || opts.Enabled {
			out = append(out, rule)
		}
	}
	return out
}
