package operations

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shortcut-cli/sc/resolver"
	"github.com/shortcut-cli/sc/template"
)

// ErrUnsupportedOperation is returned when no route exists for an action and entity pair.
var ErrUnsupportedOperation = errors.New("unsupported operation")

// Request is the method and path an operation is sent to.
type Request struct {
	Method string
	Path   string
}

// String returns "METHOD path".
func (r Request) String() string {
	return r.Method + " " + r.Path
}

// routeFunc builds the request path from the operation id and its resolved fields.
type routeFunc func(id any, fields map[string]any) (Request, error)

type routeKey struct {
	action template.Action
	entity template.Entity
}

// RouteRegistry maps action and entity pairs to API routes.
type RouteRegistry struct {
	routes map[routeKey]routeFunc
}

var plurals = map[template.Entity]string{
	template.EntityStory:     "stories",
	template.EntityEpic:      "epics",
	template.EntityIteration: "iterations",
	template.EntityLabel:     "labels",
	template.EntityObjective: "objectives",
	template.EntityMilestone: "milestones",
	template.EntityCategory:  "categories",
	template.EntityGroup:     "groups",
	template.EntityDocument:  "documents",
	template.EntityProject:   "projects",
}

// NewRouteRegistry creates a registry holding the route of every supported pair.
func NewRouteRegistry() *RouteRegistry {
	r := &RouteRegistry{routes: map[routeKey]routeFunc{}}

	for entity, plural := range plurals {
		r.register(template.ActionCreate, entity, collection(http.MethodPost, "/"+plural))
		r.register(template.ActionUpdate, entity, member(http.MethodPut, "/"+plural))
		if entity != template.EntityGroup {
			r.register(template.ActionDelete, entity, member(http.MethodDelete, "/"+plural))
		}
	}
	r.register(template.ActionCreate, template.EntityTask, task(http.MethodPost, false))
	r.register(template.ActionDelete, template.EntityTask, task(http.MethodDelete, true))
	r.register(template.ActionCheck, template.EntityTask, task(http.MethodPut, true))
	r.register(template.ActionUncheck, template.EntityTask, task(http.MethodPut, true))

	r.register(template.ActionComment, template.EntityStory, comment("/stories"))
	r.register(template.ActionComment, template.EntityEpic, comment("/epics"))

	r.register(template.ActionLink, template.EntityStoryLink, collection(http.MethodPost, "/story-links"))
	r.register(template.ActionUnlink, template.EntityStoryLink, member(http.MethodDelete, "/story-links"))
	r.register(template.ActionDelete, template.EntityStoryLink, member(http.MethodDelete, "/story-links"))

	return r
}

func (r *RouteRegistry) register(action template.Action, entity template.Entity, fn routeFunc) {
	r.routes[routeKey{action: action, entity: entity}] = fn
}

// Retrieve returns the request for an operation. It returns ErrUnsupportedOperation when the
// pair has no route.
func (r *RouteRegistry) Retrieve(action template.Action, entity template.Entity, id any, fields map[string]any) (Request, error) {
	fn, ok := r.routes[routeKey{action: action, entity: entity}]
	if !ok {
		return Request{}, fmt.Errorf("%s %s: %w", action, entity, ErrUnsupportedOperation)
	}

	return fn(id, fields)
}

func collection(method, path string) routeFunc {
	return func(any, map[string]any) (Request, error) {
		return Request{Method: method, Path: path}, nil
	}
}

func member(method, path string) routeFunc {
	return func(id any, _ map[string]any) (Request, error) {
		s, err := pathID("id", id)
		if err != nil {
			return Request{}, err
		}

		return Request{Method: method, Path: path + "/" + s}, nil
	}
}

func comment(parent string) routeFunc {
	return func(id any, _ map[string]any) (Request, error) {
		s, err := pathID("id", id)
		if err != nil {
			return Request{}, err
		}

		return Request{Method: http.MethodPost, Path: parent + "/" + s + "/comments"}, nil
	}
}

// task routes are nested under the parent story, which is taken from fields.story_id.
func task(method string, withID bool) routeFunc {
	return func(id any, fields map[string]any) (Request, error) {
		story, err := pathID("fields.story_id", fields["story_id"])
		if err != nil {
			return Request{}, err
		}
		path := "/stories/" + story + "/tasks"
		if withID {
			s, err := pathID("id", id)
			if err != nil {
				return Request{}, err
			}
			path += "/" + s
		}

		return Request{Method: method, Path: path}, nil
	}
}

func pathID(field string, v any) (string, error) {
	s := resolver.Stringify(v)
	if s == "" {
		return "", fmt.Errorf("%s is required to build the request path", field)
	}

	return url.PathEscape(s), nil
}
