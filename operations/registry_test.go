package operations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortcut-cli/sc/template"
)

func TestRouteRegistry_Retrieve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		action template.Action
		entity template.Entity
		id     any
		fields map[string]any
		want   string
	}{
		{name: "create story", action: template.ActionCreate, entity: template.EntityStory, want: "POST /stories"},
		{name: "create category", action: template.ActionCreate, entity: template.EntityCategory, want: "POST /categories"},
		{name: "update epic", action: template.ActionUpdate, entity: template.EntityEpic, id: float64(12), want: "PUT /epics/12"},
		{name: "update group by uuid", action: template.ActionUpdate, entity: template.EntityGroup, id: "5f9c1c1e-1a2b-4c3d-8e9f-0a1b2c3d4e5f", want: "PUT /groups/5f9c1c1e-1a2b-4c3d-8e9f-0a1b2c3d4e5f"},
		{name: "delete document", action: template.ActionDelete, entity: template.EntityDocument, id: "doc-1", want: "DELETE /documents/doc-1"},
		{name: "create task", action: template.ActionCreate, entity: template.EntityTask, fields: map[string]any{"story_id": 5}, want: "POST /stories/5/tasks"},
		{name: "delete task", action: template.ActionDelete, entity: template.EntityTask, id: 3, fields: map[string]any{"story_id": 5}, want: "DELETE /stories/5/tasks/3"},
		{name: "check task", action: template.ActionCheck, entity: template.EntityTask, id: 3, fields: map[string]any{"story_id": 5}, want: "PUT /stories/5/tasks/3"},
		{name: "uncheck task", action: template.ActionUncheck, entity: template.EntityTask, id: 3, fields: map[string]any{"story_id": 5}, want: "PUT /stories/5/tasks/3"},
		{name: "comment story", action: template.ActionComment, entity: template.EntityStory, id: 5, want: "POST /stories/5/comments"},
		{name: "comment epic", action: template.ActionComment, entity: template.EntityEpic, id: 8, want: "POST /epics/8/comments"},
		{name: "link", action: template.ActionLink, entity: template.EntityStoryLink, want: "POST /story-links"},
		{name: "unlink", action: template.ActionUnlink, entity: template.EntityStoryLink, id: 44, want: "DELETE /story-links/44"},
		{name: "delete story link", action: template.ActionDelete, entity: template.EntityStoryLink, id: 44, want: "DELETE /story-links/44"},
	}

	r := NewRouteRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req, err := r.Retrieve(tt.action, tt.entity, tt.id, tt.fields)
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.String())
		})
	}
}

func TestRouteRegistry_CoversSupportedPairs(t *testing.T) {
	t.Parallel()

	r := NewRouteRegistry()
	for _, action := range template.Actions {
		for _, entity := range template.Entities {
			_, err := r.Retrieve(action, entity, 1, map[string]any{"story_id": 1})
			if template.Supports(action, entity) {
				assert.NoError(t, err, "%s %s", action, entity)
			} else {
				assert.ErrorIs(t, err, ErrUnsupportedOperation, "%s %s", action, entity)
			}
		}
	}
}

func TestRouteRegistry_Errors(t *testing.T) {
	t.Parallel()

	r := NewRouteRegistry()

	_, err := r.Retrieve(template.ActionUpdate, template.EntityStory, nil, nil)
	require.EqualError(t, err, "id is required to build the request path")

	_, err = r.Retrieve(template.ActionCheck, template.EntityTask, 3, map[string]any{})
	require.EqualError(t, err, "fields.story_id is required to build the request path")

	_, err = r.Retrieve(template.ActionDelete, template.EntityGroup, 3, nil)
	require.ErrorIs(t, err, ErrUnsupportedOperation)
	require.EqualError(t, err, "delete group: unsupported operation")
}
