package webhook

import "github.com/haldesk/haldesk/pkg/protocol"

// ActionFactory creates webhook actions.
type ActionFactory struct{}

// NewActionFactory creates a new webhook factory.
func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

// Create creates a new webhook action from the given configuration.
func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config)
}

// ID returns the unique identifier for the action.
func (f *ActionFactory) ID() string {
	return "webhook"
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "Endpoint that receives the JSON transition payload via POST.",
			},
			"headers": map[string]any{
				"type":                 "object",
				"description":          "Extra HTTP headers to send.",
				"additionalProperties": map[string]any{"type": "string"},
			},
			"timeout_seconds": map[string]any{
				"type":        "number",
				"description": "Request timeout in seconds.",
				"default":     10,
				"minimum":     1,
			},
		},
		"required":             []string{"url"},
		"additionalProperties": false,
	}
}
