package escalate

import "github.com/haldesk/haldesk/pkg/protocol"

// ActionFactory creates escalate actions.
type ActionFactory struct{}

// NewActionFactory creates a new escalate factory.
func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

// Create creates a new escalate action from the given configuration.
func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config)
}

// ID returns the unique identifier for the action.
func (f *ActionFactory) ID() string {
	return "escalate"
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"priority_step": map[string]any{
				"type":        "integer",
				"description": "How much to raise the priority by.",
				"default":     1,
				"minimum":     1,
			},
			"max_priority": map[string]any{
				"type":        "integer",
				"description": "Cap applied after the bump. Zero means uncapped.",
			},
			"assignee_id": map[string]any{
				"type":        "string",
				"description": "Optional escalation target to reassign the ticket to.",
			},
		},
		"additionalProperties": false,
	}
}
