package entityfields

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortcut-cli/sc/cache"
	"github.com/shortcut-cli/sc/lookup"
	"github.com/shortcut-cli/sc/template"
)

const aliceUUID = "5f9c1c1e-1a2b-4c3d-8e9f-0a1b2c3d4e5f"

type fakeNames map[string]string

func (f fakeNames) Resolve(_ context.Context, name string) (string, error) {
	if id, ok := f[name]; ok {
		return id, nil
	}

	return "", lookup.ErrNotFound
}

type fakeCustomFields map[string][2]string

func (f fakeCustomFields) Resolve(_ context.Context, field, value string) (string, string, error) {
	ids, ok := f[field+"/"+value]
	if !ok {
		return "", "", lookup.ErrNotFound
	}

	return ids[0], ids[1], nil
}

func newTestResolver(opts ...Option) *Resolver {
	return New(Lookups{
		Members:      fakeNames{"alice": aliceUUID, "@bob": "uuid-bob"},
		Groups:       fakeNames{"core": "uuid-core"},
		Labels:       fakeNames{"bug": "7"},
		StoryStates:  fakeNames{"In Progress": "500001"},
		EpicStates:   fakeNames{"to do": "30"},
		CustomFields: fakeCustomFields{"Priority/High": {"field-1", "value-1"}},
	}, opts...)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		action template.Action
		entity template.Entity
		fields map[string]any
		want   map[string]any
	}{
		{
			name:   "story ownership and state",
			action: template.ActionCreate,
			entity: template.EntityStory,
			fields: map[string]any{
				"name":         "Login",
				"owner":        "alice",
				"owners":       []any{"@bob"},
				"followers":    []any{aliceUUID},
				"requested_by": "@bob",
				"state":        "In Progress",
				"type":         "feature",
			},
			want: map[string]any{
				"name":              "Login",
				"owner_ids":         []any{aliceUUID, "uuid-bob"},
				"follower_ids":      []any{aliceUUID},
				"requested_by_id":   "uuid-bob",
				"workflow_state_id": int64(500001),
				"story_type":        "feature",
			},
		},
		{
			name:   "numeric story state passes through",
			action: template.ActionUpdate,
			entity: template.EntityStory,
			fields: map[string]any{"state": float64(500002)},
			want:   map[string]any{"workflow_state_id": int64(500002)},
		},
		{
			name:   "epic state and groups",
			action: template.ActionCreate,
			entity: template.EntityEpic,
			fields: map[string]any{"name": "Auth", "state": "to do", "group_ids": []any{"core", aliceUUID}},
			want:   map[string]any{"name": "Auth", "epic_state_id": int64(30), "group_ids": []any{"uuid-core", aliceUUID}},
		},
		{
			name:   "labels and label ids",
			action: template.ActionCreate,
			entity: template.EntityStory,
			fields: map[string]any{"name": "x", "labels": []any{"backend"}, "label_ids": []any{"bug", 9}},
			want: map[string]any{
				"name":      "x",
				"labels":    []any{map[string]any{"name": "backend"}},
				"label_ids": []any{int64(7), int64(9)},
			},
		},
		{
			name:   "custom fields",
			action: template.ActionUpdate,
			entity: template.EntityStory,
			fields: map[string]any{"custom_fields": map[string]any{"Priority": "High"}},
			want: map[string]any{
				"custom_fields": []any{map[string]any{"field_id": "field-1", "value_id": "value-1"}},
			},
		},
		{
			name:   "group members",
			action: template.ActionCreate,
			entity: template.EntityGroup,
			fields: map[string]any{"name": "Core", "group_id": "core", "member_ids": []any{"alice"}},
			want:   map[string]any{"name": "Core", "group_id": "uuid-core", "member_ids": []any{aliceUUID}},
		},
		{
			name:   "blocked-by swaps subject and object",
			action: template.ActionLink,
			entity: template.EntityStoryLink,
			fields: map[string]any{"subject_id": 1, "object_id": 2, "verb": "blocked-by"},
			want:   map[string]any{"subject_id": 2, "object_id": 1, "verb": "blocks"},
		},
		{
			name:   "blocked-by with only a subject",
			action: template.ActionLink,
			entity: template.EntityStoryLink,
			fields: map[string]any{"subject_id": 5, "verb": "blocked-by"},
			want:   map[string]any{"object_id": 5, "verb": "blocks"},
		},
		{
			name:   "relates alias",
			action: template.ActionLink,
			entity: template.EntityStoryLink,
			fields: map[string]any{"subject_id": 1, "object_id": 2, "verb": "relates-to"},
			want:   map[string]any{"subject_id": 1, "object_id": 2, "verb": "relates to"},
		},
		{
			name:   "check task",
			action: template.ActionCheck,
			entity: template.EntityTask,
			fields: map[string]any{"story_id": 12},
			want:   map[string]any{"complete": true},
		},
		{
			name:   "uncheck task",
			action: template.ActionUncheck,
			entity: template.EntityTask,
			fields: map[string]any{"story_id": 12},
			want:   map[string]any{"complete": false},
		},
		{
			name:   "comment strips parent ids",
			action: template.ActionComment,
			entity: template.EntityStory,
			fields: map[string]any{"text": "hi", "story_id": 12, "epic_id": 3},
			want:   map[string]any{"text": "hi"},
		},
		{
			name:   "objective state is literal",
			action: template.ActionUpdate,
			entity: template.EntityObjective,
			fields: map[string]any{"state": "in progress"},
			want:   map[string]any{"state": "in progress"},
		},
		{
			name:   "nil fields",
			action: template.ActionDelete,
			entity: template.EntityLabel,
			want:   map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := newTestResolver().Resolve(context.Background(), tt.action, tt.entity, tt.fields)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_DoesNotModifyInput(t *testing.T) {
	t.Parallel()

	fields := map[string]any{"name": "Login", "owner": "alice"}
	_, err := newTestResolver().Resolve(context.Background(), template.ActionCreate, template.EntityStory, fields)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Login", "owner": "alice"}, fields)
}

func TestResolve_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		entity  template.Entity
		fields  map[string]any
		wantErr string
		wantIs  error
	}{
		{
			name:    "unknown member",
			entity:  template.EntityStory,
			fields:  map[string]any{"owners": []any{"alice", "carol"}},
			wantErr: "owners[1]: not found",
			wantIs:  lookup.ErrNotFound,
		},
		{
			name:    "unknown state",
			entity:  template.EntityStory,
			fields:  map[string]any{"state": "Shipped"},
			wantErr: "state: not found",
			wantIs:  lookup.ErrNotFound,
		},
		{
			name:    "unknown custom field value",
			entity:  template.EntityStory,
			fields:  map[string]any{"custom_fields": map[string]any{"Priority": "Low"}},
			wantErr: "custom_fields.Priority: not found",
			wantIs:  lookup.ErrNotFound,
		},
		{
			name:    "owner of wrong type",
			entity:  template.EntityStory,
			fields:  map[string]any{"owner": 42},
			wantErr: "owner: expected a name or UUID, got int",
		},
		{
			name:    "missing content file",
			entity:  template.EntityDocument,
			fields:  map[string]any{"content_file": "does-not-exist.md"},
			wantErr: "content_file: failed to read",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := newTestResolver(WithBaseDir(t.TempDir())).Resolve(context.Background(), template.ActionCreate, tt.entity, tt.fields)
			require.ErrorContains(t, err, tt.wantErr)
			if tt.wantIs != nil {
				require.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestResolve_Files(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("# Notes\n"), 0o600))

	r := newTestResolver(WithBaseDir(dir))

	got, err := r.Resolve(context.Background(), template.ActionCreate, template.EntityDocument,
		map[string]any{"name": "Notes", "content_file": "notes.md"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Notes", "content": "# Notes\n"}, got)

	got, err = r.Resolve(context.Background(), template.ActionComment, template.EntityStory,
		map[string]any{"text_file": filepath.Join(dir, "notes.md")})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"text": "# Notes\n"}, got)
}

func TestResolve_FilesWithReadFile(t *testing.T) {
	t.Parallel()

	var paths []string
	readFile := func(path string) ([]byte, error) {
		paths = append(paths, path)
		if filepath.Base(path) == "gone.md" {
			return nil, os.ErrNotExist
		}

		return []byte("body of " + filepath.Base(path)), nil
	}
	r := newTestResolver(WithBaseDir(filepath.Join("templates", "sprint")), WithReadFile(readFile))

	got, err := r.Resolve(context.Background(), template.ActionCreate, template.EntityDocument,
		map[string]any{"name": "Plan", "content_file": "plan.md"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Plan", "content": "body of plan.md"}, got)

	abs := filepath.Join(string(filepath.Separator), "shared", "note.md")
	got, err = r.Resolve(context.Background(), template.ActionComment, template.EntityEpic,
		map[string]any{"text_file": abs})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"text": "body of note.md"}, got)

	_, err = r.Resolve(context.Background(), template.ActionCreate, template.EntityDocument,
		map[string]any{"name": "Gone", "content_file": "gone.md"})
	require.ErrorIs(t, err, os.ErrNotExist)

	assert.Equal(t, []string{
		filepath.Join("templates", "sprint", "plan.md"),
		abs,
		filepath.Join("templates", "sprint", "gone.md"),
	}, paths)
}

func TestResolve_NoResolver(t *testing.T) {
	t.Parallel()

	_, err := New(Lookups{}).Resolve(context.Background(), template.ActionCreate, template.EntityStory,
		map[string]any{"owner": "alice"})
	require.ErrorIs(t, err, ErrNoResolver)

	got, err := New(Lookups{}).Resolve(context.Background(), template.ActionCreate, template.EntityStory,
		map[string]any{"owner": aliceUUID})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"owner_ids": []any{aliceUUID}}, got)
}

func TestFromLookup_Offline(t *testing.T) {
	t.Parallel()

	store := cache.NewMemoryStore()
	require.NoError(t, store.Put(cache.KindMember, "alice", aliceUUID))
	r := New(FromLookup(lookup.New(nil, store, lookup.Offline())))

	got, err := r.Resolve(context.Background(), template.ActionCreate, template.EntityStory,
		map[string]any{"owner": "@alice", "requested_by": "carol", "state": "Done"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"owner_ids":         []any{aliceUUID},
		"requested_by_id":   "carol",
		"workflow_state_id": "Done",
	}, got)
}
