package updatesla

import "github.com/haldesk/haldesk/pkg/protocol"

// ActionFactory creates update_sla actions.
type ActionFactory struct{}

// NewActionFactory creates a new update_sla factory.
func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

// Create creates a new update_sla action from the given configuration.
func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config)
}

// ID returns the unique identifier for the action.
func (f *ActionFactory) ID() string {
	return "update_sla"
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sla_hours": map[string]any{
				"type":             "number",
				"description":      "Hours from now until the new SLA due date.",
				"exclusiveMinimum": 0,
			},
			"mark_breached": map[string]any{
				"type":        "boolean",
				"description": "Also flag the ticket's SLA as breached.",
				"default":     false,
			},
		},
		"anyOf": []map[string]any{
			{"required": []string{"sla_hours"}},
			{"required": []string{"mark_breached"}},
		},
		"additionalProperties": false,
	}
}
