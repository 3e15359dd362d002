package template

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/shortcut-cli/sc/resolver"
)

var (
	varNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)
	aliasPattern   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)
)

// ValidationError is a single rule violation found by Validate.
type ValidationError struct {
	// Operation is the 0-based index of the offending operation, or -1 for document-level errors.
	Operation int    `json:"operation"`
	Field     string `json:"field,omitempty"`
	Message   string `json:"message"`
}

func (e ValidationError) Error() string {
	var loc string
	switch {
	case e.Operation < 0 && e.Field == "":
		return e.Message
	case e.Operation < 0:
		loc = e.Field
	case e.Field == "":
		loc = fmt.Sprintf("operations[%d]", e.Operation)
	default:
		loc = fmt.Sprintf("operations[%d].%s", e.Operation, e.Field)
	}

	return loc + ": " + e.Message
}

// ValidationErrors is every violation found in a template.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	lines := make([]string, len(e))
	for i, ve := range e {
		lines[i] = ve.Error()
	}

	return fmt.Sprintf("template has %d validation error(s):\n  %s", len(e), strings.Join(lines, "\n  "))
}

// Validate statically checks t without touching the network. Every violation is collected; a nil
// result means the template is acceptable for execution.
func Validate(t *Template) ValidationErrors {
	v := &validator{tmpl: t, aliases: map[string]int{}}
	v.run()

	if len(v.errs) == 0 {
		return nil
	}

	return v.errs
}

type validator struct {
	tmpl    *Template
	aliases map[string]int // alias -> index of the defining operation
	errs    ValidationErrors
}

func (v *validator) addf(op int, field, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{Operation: op, Field: field, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) run() {
	if v.tmpl.Version != SupportedVersion {
		v.addf(-1, "version", "unsupported version %d (want %d)", v.tmpl.Version, SupportedVersion)
	}

	for _, name := range slices.Sorted(maps.Keys(v.tmpl.Vars)) {
		if !varNamePattern.MatchString(name) {
			v.addf(-1, "vars."+name, "invalid variable name (must match %s)", varNamePattern)
		}
	}

	for i, op := range v.tmpl.Operations {
		v.operation(i, op)
	}
}

func (v *validator) operation(i int, op Operation) {
	switch {
	case op.Action == "":
		v.addf(i, "action", "action is required")
	case op.Entity == "":
		v.addf(i, "entity", "entity is required")
	case !Supports(op.Action, op.Entity):
		v.addf(i, "", "action %q is not supported for entity %q", op.Action, op.Entity)
	}

	if op.Action == ActionCreate && len(op.Repeat) == 0 {
		for _, f := range RequiredCreateFields(op.Entity) {
			if _, ok := op.Fields[f]; !ok {
				v.addf(i, "fields."+f, "required to create %s", op.Entity)
			}
		}
	}

	if RequiresID(op.Action) && !op.HasID() {
		v.addf(i, "id", "id is required for %s", op.Action)
	}

	// References are checked against aliases defined before this operation, so the alias is
	// registered only afterwards; that also rejects self references.
	v.references(i, op)
	v.variables(i, op)
	v.fields(i, op)

	if op.Alias != "" {
		switch prev, dup := v.aliases[op.Alias]; {
		case !aliasPattern.MatchString(op.Alias):
			v.addf(i, "alias", "invalid alias %q (must match %s)", op.Alias, aliasPattern)
		case dup:
			v.addf(i, "alias", "duplicate alias %q (first defined by operations[%d])", op.Alias, prev)
		default:
			v.aliases[op.Alias] = i
		}
	}
}

// references checks every $ref reachable from op, including those carried in by the values of
// the variables op uses, since those are only substituted at run time.
func (v *validator) references(i int, op Operation) {
	for _, part := range op.parts() {
		v.refs(i, part.name, "", part.value)

		seen := map[string]bool{}
		for _, name := range resolver.FindVars(part.value) {
			value, ok := v.tmpl.Vars[name]
			if !ok || seen[name] {
				continue
			}
			seen[name] = true
			v.refs(i, part.name, fmt.Sprintf("$var(%s): ", name), value)
		}
	}
}

func (v *validator) refs(i int, field, prefix string, value any) {
	for _, expr := range resolver.FindRefs(value) {
		alias := resolver.RefAlias(expr)
		if _, ok := v.aliases[alias]; !ok {
			v.addf(i, field, "%s$ref(%s): alias %q is not defined by an earlier operation", prefix, expr, alias)
		}
	}
}

func (v *validator) variables(i int, op Operation) {
	for _, part := range op.parts() {
		for _, name := range resolver.FindVars(part.value) {
			if _, ok := v.tmpl.Vars[name]; !ok {
				v.addf(i, part.name, "$var(%s): variable is not declared", name)
			}
		}
	}
}

func (v *validator) fields(i int, op Operation) {
	target := FieldEntity(op.Action, op.Entity)
	if !target.Valid() {
		return
	}

	for _, k := range slices.Sorted(maps.Keys(op.Fields)) {
		if !KnownField(target, k) {
			v.addf(i, "fields."+k, "unknown field for %s", target)
		}
	}
	for n, entry := range op.Repeat {
		for _, k := range slices.Sorted(maps.Keys(entry)) {
			if !KnownField(target, k) {
				v.addf(i, fmt.Sprintf("repeat[%d].%s", n, k), "unknown field for %s", target)
			}
		}
	}
}

type part struct {
	name  string
	value any
}

// parts returns the pieces of an operation that may carry expressions.
func (o Operation) parts() []part {
	parts := []part{{"id", o.ID}, {"fields", o.Fields}}
	for n, entry := range o.Repeat {
		parts = append(parts, part{fmt.Sprintf("repeat[%d]", n), entry})
	}

	return parts
}
