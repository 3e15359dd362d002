package template

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Action is the verb an Operation performs against an Entity.
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionComment Action = "comment"
	ActionLink    Action = "link"
	ActionUnlink  Action = "unlink"
	ActionCheck   Action = "check"
	ActionUncheck Action = "uncheck"
)

// Actions lists every action in the template vocabulary.
var Actions = []Action{
	ActionCreate, ActionUpdate, ActionDelete, ActionComment,
	ActionLink, ActionUnlink, ActionCheck, ActionUncheck,
}

// Valid reports whether a is part of the vocabulary.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionComment,
		ActionLink, ActionUnlink, ActionCheck, ActionUncheck:
		return true
	default:
		return false
	}
}

// Title returns the capitalized action name, e.g. "Create".
func (a Action) Title() string {
	if a == "" {
		return ""
	}

	return strings.ToUpper(string(a[:1])) + string(a[1:])
}

// PastTense returns the verb used when reporting a finished action, e.g. "Created".
func (a Action) PastTense() string {
	switch a {
	case ActionCreate:
		return "Created"
	case ActionUpdate:
		return "Updated"
	case ActionDelete:
		return "Deleted"
	case ActionComment:
		return "Commented on"
	case ActionLink:
		return "Linked"
	case ActionUnlink:
		return "Unlinked"
	case ActionCheck:
		return "Checked"
	case ActionUncheck:
		return "Unchecked"
	default:
		return a.Title()
	}
}

// UnmarshalYAML rejects actions outside the vocabulary, reporting the offending line.
func (a *Action) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v := Action(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return fmt.Errorf("line %d: unknown action %q (want one of %s)", node.Line, s, joinValues(Actions))
	}
	*a = v

	return nil
}

// Entity is the kind of object an Operation acts on.
type Entity string

const (
	EntityStory     Entity = "story"
	EntityEpic      Entity = "epic"
	EntityIteration Entity = "iteration"
	EntityLabel     Entity = "label"
	EntityObjective Entity = "objective"
	EntityMilestone Entity = "milestone"
	EntityCategory  Entity = "category"
	EntityGroup     Entity = "group"
	EntityDocument  Entity = "document"
	EntityProject   Entity = "project"
	EntityTask      Entity = "task"
	EntityComment   Entity = "comment"
	EntityStoryLink Entity = "story_link"
)

// Entities lists every entity in the template vocabulary.
var Entities = []Entity{
	EntityStory, EntityEpic, EntityIteration, EntityLabel, EntityObjective, EntityMilestone,
	EntityCategory, EntityGroup, EntityDocument, EntityProject, EntityTask, EntityComment,
	EntityStoryLink,
}

// Valid reports whether e is part of the vocabulary.
func (e Entity) Valid() bool {
	switch e {
	case EntityStory, EntityEpic, EntityIteration, EntityLabel, EntityObjective, EntityMilestone,
		EntityCategory, EntityGroup, EntityDocument, EntityProject, EntityTask, EntityComment,
		EntityStoryLink:
		return true
	default:
		return false
	}
}

// UnmarshalYAML rejects entities outside the vocabulary, reporting the offending line.
func (e *Entity) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v := Entity(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return fmt.Errorf("line %d: unknown entity %q (want one of %s)", node.Line, s, joinValues(Entities))
	}
	*e = v

	return nil
}

// ErrorPolicy decides whether a failed operation halts the run.
type ErrorPolicy string

const (
	// ErrorPolicyUnset defers to the enclosing policy.
	ErrorPolicyUnset ErrorPolicy = ""
	// ErrorPolicyStop halts the run at the first failed operation.
	ErrorPolicyStop ErrorPolicy = "stop"
	// ErrorPolicyContinue records the failure and moves on.
	ErrorPolicyContinue ErrorPolicy = "continue"
)

// UnmarshalYAML accepts "stop" and "continue".
func (p *ErrorPolicy) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v := ErrorPolicy(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case ErrorPolicyStop, ErrorPolicyContinue:
		*p = v
		return nil
	default:
		return fmt.Errorf("line %d: unknown on_error policy %q (want stop or continue)", node.Line, s)
	}
}

func joinValues[T ~string](vals []T) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = string(v)
	}

	return strings.Join(parts, ", ")
}
