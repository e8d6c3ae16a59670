package logevent

import (
	"github.com/haldesk/haldesk/pkg/eventbus"
	"github.com/haldesk/haldesk/pkg/protocol"
)

// ActionFactory creates log_event actions bound to an event bus.
type ActionFactory struct {
	bus eventbus.EventBus
}

// NewActionFactory creates a new log_event factory.
func NewActionFactory(bus eventbus.EventBus) *ActionFactory {
	return &ActionFactory{bus: bus}
}

// Create creates a new log_event action from the given configuration.
func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config, f.bus)
}

// ID returns the unique identifier for the action.
func (f *ActionFactory) ID() string {
	return "log_event"
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"event_name": map[string]any{
				"type":        "string",
				"description": "Name of the event to publish.",
			},
			"payload": map[string]any{
				"type":        "object",
				"description": "Extra fields attached to the event. String values support templating.",
			},
		},
		"required":             []string{"event_name"},
		"additionalProperties": false,
	}
}
