package resolver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnknownAlias is returned when a $ref() names an alias with no stored result.
	ErrUnknownAlias = errors.New("unknown alias")
	// ErrIndexOutOfRange is returned when a numeric segment indexes past the end of an array.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrMissingKey is returned when an object has no value for a segment.
	ErrMissingKey = errors.New("missing key")
	// ErrNotIndexable is returned when a segment walks into a scalar or null.
	ErrNotIndexable = errors.New("value is not indexable")
)

// Store gives read access to the results of previously executed operations by alias.
type Store interface {
	Lookup(alias string) (any, bool)
}

// ResolveRefs replaces every $ref(expr) in value with the result it points to in store.
func ResolveRefs(value any, store Store) (any, error) {
	return transform(value, func(s string) (any, error) {
		return substitute(s, refPattern, func(expr string) (any, error) {
			return Resolve(expr, store)
		})
	})
}

// Resolve evaluates a single reference expression such as `story`, `story.id`, `tasks.2` or
// `tasks.2.description` against store.
func Resolve(expr string, store Store) (any, error) {
	segments := strings.Split(expr, ".")
	cur, ok := store.Lookup(segments[0])
	if !ok {
		return nil, fmt.Errorf("$ref(%s): %w %q", expr, ErrUnknownAlias, segments[0])
	}

	for i, seg := range segments[1:] {
		path := strings.Join(segments[:i+2], ".")
		switch node := cur.(type) {
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil {
				return nil, fmt.Errorf("$ref(%s): %q is not an array index", expr, seg)
			}
			if idx < 0 || idx >= len(node) {
				return nil, fmt.Errorf("$ref(%s): %w: %s (length %d)", expr, ErrIndexOutOfRange, path, len(node))
			}
			cur = node[idx]
		case map[string]any:
			v, found := node[seg]
			if !found {
				return nil, fmt.Errorf("$ref(%s): %w: %s", expr, ErrMissingKey, path)
			}
			cur = v
		default:
			return nil, fmt.Errorf("$ref(%s): %w: %s", expr, ErrNotIndexable, strings.Join(segments[:i+1], "."))
		}
	}

	return cur, nil
}
