package sendemail

import (
	"github.com/haldesk/haldesk/pkg/notify"
	"github.com/haldesk/haldesk/pkg/persistence"
	"github.com/haldesk/haldesk/pkg/protocol"
)

// ActionFactory creates send_email actions bound to an email channel.
type ActionFactory struct {
	notifier notify.Notifier
	users    persistence.Users
}

// NewActionFactory creates a new send_email factory.
func NewActionFactory(notifier notify.Notifier, users persistence.Users) *ActionFactory {
	return &ActionFactory{notifier: notifier, users: users}
}

// Create creates a new send_email action from the given configuration.
func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config, f.notifier, f.users)
}

// ID returns the unique identifier for the action.
func (f *ActionFactory) ID() string {
	return "send_email"
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"to": map[string]any{
				"type":        "array",
				"description": "Email addresses, user IDs, or the symbolic names assignee and creator.",
				"items":       map[string]any{"type": "string"},
				"minItems":    1,
			},
			"subject": map[string]any{
				"type":        "string",
				"description": "Email subject. Supports templating.",
			},
			"body": map[string]any{
				"type":        "string",
				"description": "Email body. Supports templating.",
			},
		},
		"required":             []string{"to", "subject"},
		"additionalProperties": false,
	}
}
