package resolver

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrUnknownVariable is returned when a $var() names a variable that has no binding.
var ErrUnknownVariable = errors.New("unknown variable")

// SubstituteVars replaces every $var(name) in value with the binding from vars.
// Every unresolvable name is reported; the returned error wraps ErrUnknownVariable.
func SubstituteVars(value any, vars map[string]any) (any, error) {
	return transform(value, func(s string) (any, error) {
		return substitute(s, varPattern, func(name string) (any, error) {
			v, ok := vars[name]
			if !ok {
				return nil, fmt.Errorf("$var(%s): %w", name, ErrUnknownVariable)
			}

			return v, nil
		})
	})
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
