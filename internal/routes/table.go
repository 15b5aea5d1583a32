// Package routes implements the fragment route table shared by the
// server-side resolver and the browser navigator.
package routes

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Root is the canonical site root fragment.
const Root = "/"

// Rule maps one fragment path to a template reference.
type Rule struct {
	Pattern  string `json:"path" yaml:"path"`
	Template string `json:"templateUrl" yaml:"template"`
}

// Validate validates a single rule.
func (r Rule) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Pattern, validation.Required, validation.By(startsWithSlash)),
		validation.Field(&r.Template, validation.Required),
	)
}

func startsWithSlash(v any) error {
	s, _ := v.(string)
	if !strings.HasPrefix(s, "/") {
		return errors.New("must start with /")
	}
	return nil
}

// Table is an immutable, ordered set of rules plus one default rule.
// It is safe for concurrent use.
type Table struct {
	rules []Rule
	def   Rule
}

// New builds a table from rules in registration order. defaultPattern names
// the rule returned when nothing matches; it must be one of the rules.
func New(rules []Rule, defaultPattern string) (*Table, error) {
	if len(rules) == 0 {
		return nil, errors.New("routes: at least one rule is required")
	}
	seen := make(map[string]struct{}, len(rules))
	out := make([]Rule, 0, len(rules))
	for i, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("routes: rule %d: %w", i, err)
		}
		if _, dup := seen[r.Pattern]; dup {
			return nil, fmt.Errorf("routes: duplicate pattern %q", r.Pattern)
		}
		seen[r.Pattern] = struct{}{}
		out = append(out, r)
	}

	if defaultPattern == "" {
		defaultPattern = Root
	}
	t := &Table{rules: out}
	def, ok := t.lookup(Normalize(defaultPattern))
	if !ok {
		return nil, fmt.Errorf("routes: default pattern %q is not registered", defaultPattern)
	}
	t.def = def
	return t, nil
}

// Normalize maps the root aliases "" and "//" onto "/". Other fragments are
// returned unchanged.
func Normalize(fragment string) string {
	switch fragment {
	case "", "/", "//":
		return Root
	}
	return fragment
}

// IsRoot reports whether fragment names the site root.
func IsRoot(fragment string) bool {
	return Normalize(fragment) == Root
}

// Match returns the first rule whose pattern equals fragment exactly, or the
// default rule.
func (t *Table) Match(fragment string) Rule {
	if r, ok := t.lookup(Normalize(fragment)); ok {
		return r
	}
	return t.def
}

// Lookup is Match without the fallback.
func (t *Table) Lookup(fragment string) (Rule, bool) {
	return t.lookup(Normalize(fragment))
}

func (t *Table) lookup(fragment string) (Rule, bool) {
	for _, r := range t.rules {
		if r.Pattern == fragment {
			return r, true
		}
	}
	return Rule{}, false
}

// Default returns the fallback rule.
func (t *Table) Default() Rule {
	return t.def
}

// Rules returns a copy of the rules in registration order.
func (t *Table) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}
