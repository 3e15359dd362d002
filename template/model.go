package template

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// SupportedVersion is the only template version this engine understands.
const SupportedVersion = 1

// Template is a parsed batch document.
type Template struct {
	Version    int            `yaml:"version" json:"version"`
	Meta       *Meta          `yaml:"meta,omitempty" json:"meta,omitempty"`
	Vars       map[string]any `yaml:"vars,omitempty" json:"vars,omitempty"`
	OnError    ErrorPolicy    `yaml:"on_error,omitempty" json:"on_error,omitempty"`
	Operations []Operation    `yaml:"operations" json:"operations"`
}

// Meta is free-form descriptive information about a template.
type Meta struct {
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Author      string `yaml:"author,omitempty" json:"author,omitempty"`
}

// Operation is a single step of a template.
//
// ID may be a literal (number or string) or contain a $ref() expression. Repeat turns the
// operation into one request per entry; each entry is merged over Fields with the entry winning.
type Operation struct {
	Action  Action           `yaml:"action" json:"action"`
	Entity  Entity           `yaml:"entity" json:"entity"`
	ID      any              `yaml:"id,omitempty" json:"id,omitempty"`
	Alias   string           `yaml:"alias,omitempty" json:"alias,omitempty"`
	Fields  map[string]any   `yaml:"fields,omitempty" json:"fields,omitempty"`
	Repeat  []map[string]any `yaml:"repeat,omitempty" json:"repeat,omitempty"`
	OnError ErrorPolicy      `yaml:"on_error,omitempty" json:"on_error,omitempty"`
}

// HasID reports whether the operation carries a non-empty id.
func (o Operation) HasID() bool {
	switch v := o.ID.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	default:
		return true
	}
}

// Count returns the number of requests the operation expands to.
func (o Operation) Count() int {
	if len(o.Repeat) > 0 {
		return len(o.Repeat)
	}

	return 1
}

// Policy returns the error policy in effect for op: its own override, else the document
// default, else stop.
func (t *Template) Policy(op Operation) ErrorPolicy {
	if op.OnError != ErrorPolicyUnset {
		return op.OnError
	}
	if t.OnError != ErrorPolicyUnset {
		return t.OnError
	}

	return ErrorPolicyStop
}

// Total returns the number of requests the whole template expands to.
func (t *Template) Total() int {
	total := 0
	for _, op := range t.Operations {
		total += op.Count()
	}

	return total
}

// ApplyVarOverrides replaces declared variables with values supplied at invocation time.
// Overriding a variable that the template does not declare is an error. When the declared value
// is not a string the override is decoded as a YAML scalar so `--var points=5` stays a number.
func (t *Template) ApplyVarOverrides(overrides map[string]string) error {
	var undeclared []string
	for name := range overrides {
		if _, ok := t.Vars[name]; !ok {
			undeclared = append(undeclared, name)
		}
	}
	if len(undeclared) > 0 {
		slices.Sort(undeclared)
		return fmt.Errorf("cannot override undeclared variable(s): %s", strings.Join(undeclared, ", "))
	}

	for _, name := range slices.Sorted(maps.Keys(overrides)) {
		raw := overrides[name]
		if _, isString := t.Vars[name].(string); isString {
			t.Vars[name] = raw
			continue
		}
		var decoded any
		if err := yaml.Unmarshal([]byte(raw), &decoded); err != nil || decoded == nil {
			t.Vars[name] = raw
			continue
		}
		t.Vars[name] = decoded
	}

	return nil
}
