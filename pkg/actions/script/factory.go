package script

import "github.com/haldesk/haldesk/pkg/protocol"

// ActionFactory creates script actions.
type ActionFactory struct{}

// NewActionFactory creates a new script factory.
func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

// Create creates a new script action from the given configuration.
func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config)
}

// ID returns the unique identifier for the action.
func (f *ActionFactory) ID() string {
	return "script"
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"expression": map[string]any{
				"type":        "string",
				"description": "Expression evaluated against ticket, user and context data.",
			},
		},
		"required":             []string{"expression"},
		"additionalProperties": false,
	}
}
