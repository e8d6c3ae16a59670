package comment

import "github.com/haldesk/haldesk/pkg/protocol"

// ActionFactory creates create_comment actions.
type ActionFactory struct{}

// NewActionFactory creates a new create_comment factory.
func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

// Create creates a new create_comment action from the given configuration.
func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config)
}

// ID returns the unique identifier for the action.
func (f *ActionFactory) ID() string {
	return "create_comment"
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"content": map[string]any{
				"type":        "string",
				"description": "Comment body. Supports templating.",
			},
			"is_internal": map[string]any{
				"type":        "boolean",
				"description": "Internal comments are hidden from the ticket's requester.",
				"default":     false,
			},
		},
		"required":             []string{"content"},
		"additionalProperties": false,
	}
}
