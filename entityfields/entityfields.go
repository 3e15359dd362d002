// Package entityfields rewrites the authoring-friendly fields of a template operation (member
// mentions, state names, label names, file references) into the request body the API expects.
// It runs after references are resolved and before the request is sent.
package entityfields

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/google/uuid"

	"github.com/shortcut-cli/sc/lookup"
	"github.com/shortcut-cli/sc/template"
)

// NameResolver resolves a human-facing name to an id.
type NameResolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// CustomFieldResolver resolves a custom field name and value name to their ids.
type CustomFieldResolver interface {
	Resolve(ctx context.Context, field, value string) (fieldID, valueID string, err error)
}

// Lookups groups the name resolvers the rewrites depend on.
type Lookups struct {
	Members      NameResolver
	Groups       NameResolver
	Labels       NameResolver
	StoryStates  NameResolver
	EpicStates   NameResolver
	CustomFields CustomFieldResolver
}

// FromLookup wires every resolver of r into a Lookups.
func FromLookup(r *lookup.Resolvers) Lookups {
	return Lookups{
		Members:      r.Members(),
		Groups:       r.Groups(),
		Labels:       r.Labels(),
		StoryStates:  r.StoryStates(),
		EpicStates:   r.EpicStates(),
		CustomFields: r.CustomFields(),
	}
}

// ErrNoResolver is returned when a field needs a resolver that was not configured.
var ErrNoResolver = errors.New("no resolver configured")

// Resolver applies the field rewrites.
type Resolver struct {
	lookups  Lookups
	baseDir  string
	readFile func(string) ([]byte, error)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithBaseDir sets the directory relative content_file and text_file paths are read from.
func WithBaseDir(dir string) Option {
	return func(r *Resolver) {
		r.baseDir = dir
	}
}

// WithReadFile replaces the function used to read content_file and text_file.
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(r *Resolver) {
		r.readFile = fn
	}
}

// New creates a Resolver over the given lookups.
func New(lookups Lookups, opts ...Option) *Resolver {
	r := &Resolver{lookups: lookups, readFile: os.ReadFile}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve returns a copy of fields rewritten for the API. fields is not modified.
func (r *Resolver) Resolve(ctx context.Context, action template.Action, entity template.Entity, fields map[string]any) (map[string]any, error) {
	out := maps.Clone(fields)
	if out == nil {
		out = map[string]any{}
	}
	target := template.FieldEntity(action, entity)

	steps := []func(context.Context, map[string]any, template.Action, template.Entity) error{
		r.members,
		r.groups,
		r.states,
		r.labels,
		r.customFields,
		r.files,
		rename,
	}
	for _, step := range steps {
		if err := step(ctx, out, action, target); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// members rewrites owner, owners, followers, requested_by and the *_ids member lists.
func (r *Resolver) members(ctx context.Context, f map[string]any, _ template.Action, _ template.Entity) error {
	var owners []any
	if v, ok := pop(f, "owner_ids"); ok {
		ids, err := r.memberList(ctx, "owner_ids", v)
		if err != nil {
			return err
		}
		owners = append(owners, ids...)
	}
	if v, ok := pop(f, "owner"); ok {
		id, err := r.member(ctx, "owner", v)
		if err != nil {
			return err
		}
		owners = append(owners, id)
	}
	if v, ok := pop(f, "owners"); ok {
		ids, err := r.memberList(ctx, "owners", v)
		if err != nil {
			return err
		}
		owners = append(owners, ids...)
	}
	if owners != nil {
		f["owner_ids"] = owners
	}

	for _, pair := range [][2]string{{"follower_ids", "follower_ids"}, {"followers", "follower_ids"}, {"member_ids", "member_ids"}} {
		v, ok := pop(f, pair[0])
		if !ok {
			continue
		}
		ids, err := r.memberList(ctx, pair[0], v)
		if err != nil {
			return err
		}
		if prev, ok := f[pair[1]].([]any); ok {
			ids = append(prev, ids...)
		}
		f[pair[1]] = ids
	}

	if v, ok := pop(f, "requested_by"); ok {
		id, err := r.member(ctx, "requested_by", v)
		if err != nil {
			return err
		}
		f["requested_by_id"] = id
	}

	return nil
}

func (r *Resolver) member(ctx context.Context, field string, v any) (string, error) {
	return r.uuidOrName(ctx, field, r.lookups.Members, v)
}

func (r *Resolver) memberList(ctx context.Context, field string, v any) ([]any, error) {
	items, err := asList(field, v)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(items))
	for i, item := range items {
		id, err := r.member(ctx, fmt.Sprintf("%s[%d]", field, i), item)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}

	return out, nil
}

// groups rewrites group_id and group_ids mention names to group UUIDs.
func (r *Resolver) groups(ctx context.Context, f map[string]any, _ template.Action, _ template.Entity) error {
	if v, ok := f["group_id"]; ok && v != nil {
		id, err := r.uuidOrName(ctx, "group_id", r.lookups.Groups, v)
		if err != nil {
			return err
		}
		f["group_id"] = id
	}
	if v, ok := f["group_ids"]; ok {
		items, err := asList("group_ids", v)
		if err != nil {
			return err
		}
		ids := make([]any, 0, len(items))
		for i, item := range items {
			id, err := r.uuidOrName(ctx, fmt.Sprintf("group_ids[%d]", i), r.lookups.Groups, item)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		f["group_ids"] = ids
	}

	return nil
}

func (r *Resolver) uuidOrName(ctx context.Context, field string, res NameResolver, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected a name or UUID, got %T", field, v)
	}
	if _, err := uuid.Parse(s); err == nil {
		return s, nil
	}
	if res == nil {
		return "", fmt.Errorf("%s: %w", field, ErrNoResolver)
	}
	id, err := res.Resolve(ctx, s)
	if err != nil {
		return "", fmt.Errorf("%s: %w", field, err)
	}

	return id, nil
}

// states rewrites a story or epic state name to its workflow state id. Other entities carry
// literal states and are left alone.
func (r *Resolver) states(ctx context.Context, f map[string]any, _ template.Action, entity template.Entity) error {
	var (
		res   NameResolver
		field string
	)
	switch entity {
	case template.EntityStory:
		res, field = r.lookups.StoryStates, "workflow_state_id"
	case template.EntityEpic:
		res, field = r.lookups.EpicStates, "epic_state_id"
	default:
		return nil
	}

	v, ok := pop(f, "state")
	if !ok {
		return nil
	}
	id, err := r.numericOrName(ctx, "state", res, v)
	if err != nil {
		return err
	}
	f[field] = id

	return nil
}

func (r *Resolver) numericOrName(ctx context.Context, field string, res NameResolver, v any) (any, error) {
	if n, ok := numericID(v); ok {
		return n, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%s: expected a name or numeric id, got %T", field, v)
	}
	if res == nil {
		return nil, fmt.Errorf("%s: %w", field, ErrNoResolver)
	}
	id, err := res.Resolve(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}

	return toID(id), nil
}

// labels turns label names into label params and resolves label_ids names.
func (r *Resolver) labels(ctx context.Context, f map[string]any, _ template.Action, _ template.Entity) error {
	if v, ok := f["labels"]; ok {
		items, err := asList("labels", v)
		if err != nil {
			return err
		}
		params := make([]any, 0, len(items))
		for _, item := range items {
			if name, ok := item.(string); ok {
				params = append(params, map[string]any{"name": name})
				continue
			}
			params = append(params, item)
		}
		f["labels"] = params
	}

	if v, ok := f["label_ids"]; ok {
		items, err := asList("label_ids", v)
		if err != nil {
			return err
		}
		ids := make([]any, 0, len(items))
		for i, item := range items {
			id, err := r.numericOrName(ctx, fmt.Sprintf("label_ids[%d]", i), r.lookups.Labels, item)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		f["label_ids"] = ids
	}

	return nil
}

// customFields turns a field name to value name mapping into custom field params. A list is
// assumed to already be in API form.
func (r *Resolver) customFields(ctx context.Context, f map[string]any, _ template.Action, _ template.Entity) error {
	v, ok := f["custom_fields"]
	if !ok {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	if r.lookups.CustomFields == nil {
		return fmt.Errorf("custom_fields: %w", ErrNoResolver)
	}

	params := make([]any, 0, len(m))
	for _, name := range slices.Sorted(maps.Keys(m)) {
		value, ok := m[name].(string)
		if !ok {
			return fmt.Errorf("custom_fields.%s: expected a value name, got %T", name, m[name])
		}
		fieldID, valueID, err := r.lookups.CustomFields.Resolve(ctx, name, value)
		if err != nil {
			return fmt.Errorf("custom_fields.%s: %w", name, err)
		}
		params = append(params, map[string]any{"field_id": fieldID, "value_id": valueID})
	}
	f["custom_fields"] = params

	return nil
}

// files replaces content_file and text_file with the contents of the named file.
func (r *Resolver) files(_ context.Context, f map[string]any, _ template.Action, _ template.Entity) error {
	for _, pair := range [][2]string{{"content_file", "content"}, {"text_file", "text"}} {
		v, ok := pop(f, pair[0])
		if !ok {
			continue
		}
		path, ok := v.(string)
		if !ok {
			return fmt.Errorf("%s: expected a file path, got %T", pair[0], v)
		}
		if !filepath.IsAbs(path) && r.baseDir != "" {
			path = filepath.Join(r.baseDir, path)
		}
		data, err := r.readFile(path)
		if err != nil {
			return fmt.Errorf("%s: failed to read %s: %w", pair[0], path, err)
		}
		f[pair[1]] = string(data)
	}

	return nil
}

var verbAliases = map[string]struct {
	verb string
	swap bool
}{
	"blocks":        {verb: "blocks"},
	"blocked-by":    {verb: "blocks", swap: true},
	"blocked_by":    {verb: "blocks", swap: true},
	"duplicates":    {verb: "duplicates"},
	"relates":       {verb: "relates to"},
	"relates to":    {verb: "relates to"},
	"relates-to":    {verb: "relates to"},
	"relates_to":    {verb: "relates to"},
	"duplicated-by": {verb: "duplicates", swap: true},
	"duplicated_by": {verb: "duplicates", swap: true},
}

// rename applies the per-entity renames and strips fields that travel in the request path.
func rename(_ context.Context, f map[string]any, action template.Action, entity template.Entity) error {
	switch entity {
	case template.EntityStory:
		if v, ok := pop(f, "type"); ok {
			f["story_type"] = v
		}
	case template.EntityStoryLink:
		verb, ok := f["verb"].(string)
		if !ok {
			break
		}
		alias, ok := verbAliases[verb]
		if !ok {
			break
		}
		f["verb"] = alias.verb
		if alias.swap {
			subject, hasSubject := pop(f, "subject_id")
			object, hasObject := pop(f, "object_id")
			if hasObject {
				f["subject_id"] = object
			}
			if hasSubject {
				f["object_id"] = subject
			}
		}
	case template.EntityTask:
		delete(f, "story_id")
		switch action {
		case template.ActionCheck:
			f["complete"] = true
		case template.ActionUncheck:
			f["complete"] = false
		}
	case template.EntityComment:
		delete(f, "story_id")
		delete(f, "epic_id")
	}

	return nil
}

func pop(f map[string]any, key string) (any, bool) {
	v, ok := f[key]
	if ok {
		delete(f, key)
	}

	return v, ok
}

func asList(field string, v any) ([]any, error) {
	switch l := v.(type) {
	case []any:
		return l, nil
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}

		return out, nil
	case string:
		return []any{l}, nil
	default:
		return nil, fmt.Errorf("%s: expected a list, got %T", field, v)
	}
}

// numericID reports whether v is already a numeric id.
func numericID(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n), true
		}
	case float64:
		if n == math.Trunc(n) {
			return int64(n), true
		}
	case string:
		if i, err := strconv.ParseInt(n, 10, 64); err == nil {
			return i, true
		}
	}

	return 0, false
}

// toID returns id as an integer when it is numeric, otherwise unchanged.
func toID(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}

	return id
}
