package notifyaction

import (
	"github.com/haldesk/haldesk/pkg/notify"
	"github.com/haldesk/haldesk/pkg/persistence"
	"github.com/haldesk/haldesk/pkg/protocol"
)

// ActionFactory creates notify actions.
type ActionFactory struct {
	notifier notify.Notifier
	users    persistence.Users
}

// NewActionFactory creates a factory bound to the delivery channel and the
// user directory.
func NewActionFactory(notifier notify.Notifier, users persistence.Users) *ActionFactory {
	return &ActionFactory{notifier: notifier, users: users}
}

// Create creates a new notify action from the given configuration.
func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config, f.notifier, f.users)
}

// ID returns the unique identifier for the action.
func (f *ActionFactory) ID() string {
	return "notify"
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"recipients": map[string]any{
				"type":        "array",
				"description": "User IDs or the symbolic names 'assignee' and 'creator'.",
				"items":       map[string]any{"type": "string"},
				"minItems":    1,
			},
			"subject": map[string]any{
				"type":        "string",
				"description": "Message subject. Supports {{ticket.*}}, {{user.*}}, {{context.*}} and {{now}} placeholders.",
			},
			"message": map[string]any{
				"type":        "string",
				"description": "Message body. Supports the same placeholders as subject.",
			},
		},
		"required":             []string{"recipients"},
		"additionalProperties": false,
	}
}
