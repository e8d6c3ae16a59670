package updatefield

import "github.com/haldesk/haldesk/pkg/protocol"

// ActionFactory creates update_field actions.
type ActionFactory struct{}

// NewActionFactory creates a new update_field factory.
func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

// Create creates a new update_field action from the given configuration.
func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config)
}

// ID returns the unique identifier for the action.
func (f *ActionFactory) ID() string {
	return "update_field"
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"field_name": map[string]any{
				"type":        "string",
				"description": "Name of the ticket field to write.",
			},
			"field_value": map[string]any{
				"description": "Value to write. String values support templating.",
			},
		},
		"required":             []string{"field_name", "field_value"},
		"additionalProperties": false,
	}
}
