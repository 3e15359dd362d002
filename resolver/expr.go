// Package resolver substitutes $var() and $ref() expressions embedded in template values.
//
// A value tree is anything produced by decoding YAML or JSON: maps with string keys, slices,
// and scalars. Both substitutions share the same rules:
//
//   - A string that is exactly one expression is replaced by the bound value verbatim, so the
//     value keeps its type (numbers stay numbers, objects stay objects).
//   - An expression embedded in a longer string is replaced by the stringified bound value.
//
// Neither operation mutates its input; maps and slices are rebuilt on the way out.
package resolver

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	refPattern = regexp.MustCompile(`\$ref\(([^()]*)\)`)
	varPattern = regexp.MustCompile(`\$var\(([^()]*)\)`)
)

// FindRefs returns the expression of every $ref() found in value, in walk order.
// For `$ref(epic.0.id)` the returned expression is `epic.0.id`.
func FindRefs(value any) []string {
	return find(value, refPattern)
}

// FindVars returns the name of every $var() found in value, in walk order.
func FindVars(value any) []string {
	return find(value, varPattern)
}

// RefAlias returns the alias part of a reference expression: the segment before the first dot.
func RefAlias(expr string) string {
	alias, _, _ := strings.Cut(expr, ".")

	return alias
}

func find(value any, pattern *regexp.Regexp) []string {
	var found []string
	walkStrings(value, func(s string) {
		for _, m := range pattern.FindAllStringSubmatch(s, -1) {
			found = append(found, strings.TrimSpace(m[1]))
		}
	})

	return found
}

// walkStrings calls fn for every string leaf, visiting map keys in sorted order so callers get a
// deterministic sequence.
func walkStrings(value any, fn func(string)) {
	switch v := value.(type) {
	case string:
		fn(v)
	case map[string]any:
		for _, k := range sortedKeys(v) {
			walkStrings(v[k], fn)
		}
	case []any:
		for _, item := range v {
			walkStrings(item, fn)
		}
	case []map[string]any:
		for _, item := range v {
			walkStrings(item, fn)
		}
	}
}

// transform rebuilds value, replacing every string leaf with the result of fn.
// All errors are collected rather than returned on first failure.
func transform(value any, fn func(string) (any, error)) (any, error) {
	switch v := value.(type) {
	case string:
		return fn(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		var errs []error
		for _, k := range sortedKeys(v) {
			nv, err := transform(v[k], fn)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out[k] = nv
		}

		return out, errors.Join(errs...)
	case []any:
		out := make([]any, len(v))
		var errs []error
		for i, item := range v {
			nv, err := transform(item, fn)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out[i] = nv
		}

		return out, errors.Join(errs...)
	default:
		return value, nil
	}
}

// substitute replaces the expressions matched by pattern in s using lookup.
func substitute(s string, pattern *regexp.Regexp, lookup func(name string) (any, error)) (any, error) {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return s, nil
	}
	if m[0] == s {
		return lookup(strings.TrimSpace(m[1]))
	}

	var errs []error
	out := pattern.ReplaceAllStringFunc(s, func(tok string) string {
		name := strings.TrimSpace(pattern.FindStringSubmatch(tok)[1])
		v, err := lookup(name)
		if err != nil {
			errs = append(errs, err)
			return tok
		}

		return Stringify(v)
	})
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return out, nil
}

// Stringify renders a value tree leaf the way it appears when inlined into a longer string.
// Integral numbers print without a fractional part, null renders as the empty string and
// objects or arrays render as compact JSON.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}

		return string(b)
	}
}
