package shortcut

import (
	"context"
)

// Member is a workspace member as returned by GET /members.
type Member struct {
	ID       string        `json:"id"`
	Disabled bool          `json:"disabled"`
	Profile  MemberProfile `json:"profile"`
}

// MemberProfile holds the human-facing identifiers of a member.
type MemberProfile struct {
	Name         string `json:"name"`
	MentionName  string `json:"mention_name"`
	EmailAddress string `json:"email_address"`
}

// Group is a team as returned by GET /groups.
type Group struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MentionName string `json:"mention_name"`
	Archived    bool   `json:"archived"`
}

// Label is a label as returned by GET /labels.
type Label struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Workflow is a story workflow with its states.
type Workflow struct {
	ID     int64           `json:"id"`
	Name   string          `json:"name"`
	States []WorkflowState `json:"states"`
}

// WorkflowState is a single state of a story or epic workflow.
type WorkflowState struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// EpicWorkflow is the workspace-wide epic workflow.
type EpicWorkflow struct {
	ID         int64           `json:"id"`
	EpicStates []WorkflowState `json:"epic_states"`
}

// CustomField is a workspace custom field and its enumerated values.
type CustomField struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Values []CustomFieldValue `json:"values"`
}

// CustomFieldValue is one allowed value of a CustomField.
type CustomFieldValue struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// ListMembers returns every member of the workspace.
func (c *Client) ListMembers(ctx context.Context) ([]Member, error) {
	var out []Member
	if err := c.get(ctx, "/members", &out); err != nil {
		return nil, err
	}

	return out, nil
}

// ListGroups returns every group of the workspace.
func (c *Client) ListGroups(ctx context.Context) ([]Group, error) {
	var out []Group
	if err := c.get(ctx, "/groups", &out); err != nil {
		return nil, err
	}

	return out, nil
}

// ListLabels returns every label of the workspace.
func (c *Client) ListLabels(ctx context.Context) ([]Label, error) {
	var out []Label
	if err := c.get(ctx, "/labels", &out); err != nil {
		return nil, err
	}

	return out, nil
}

// ListWorkflows returns every story workflow.
func (c *Client) ListWorkflows(ctx context.Context) ([]Workflow, error) {
	var out []Workflow
	if err := c.get(ctx, "/workflows", &out); err != nil {
		return nil, err
	}

	return out, nil
}

// GetEpicWorkflow returns the epic workflow.
func (c *Client) GetEpicWorkflow(ctx context.Context) (*EpicWorkflow, error) {
	var out EpicWorkflow
	if err := c.get(ctx, "/epic-workflow", &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// ListCustomFields returns every custom field with its values.
func (c *Client) ListCustomFields(ctx context.Context) ([]CustomField, error) {
	var out []CustomField
	if err := c.get(ctx, "/custom-fields", &out); err != nil {
		return nil, err
	}

	return out, nil
}
