package sendtelegram

import (
	"github.com/haldesk/haldesk/pkg/notify"
	"github.com/haldesk/haldesk/pkg/persistence"
	"github.com/haldesk/haldesk/pkg/protocol"
)

// ActionFactory creates send_telegram actions bound to a telegram channel.
type ActionFactory struct {
	notifier notify.Notifier
	users    persistence.Users
}

// NewActionFactory creates a new send_telegram factory.
func NewActionFactory(notifier notify.Notifier, users persistence.Users) *ActionFactory {
	return &ActionFactory{notifier: notifier, users: users}
}

// Create creates a new send_telegram action from the given configuration.
func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config, f.notifier, f.users)
}

// ID returns the unique identifier for the action.
func (f *ActionFactory) ID() string {
	return "send_telegram"
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "Message body. Supports templating.",
			},
			"recipients": map[string]any{
				"type":        "array",
				"description": "User IDs or the symbolic names assignee and creator. Defaults to the assignee.",
				"items":       map[string]any{"type": "string"},
			},
		},
		"required":             []string{"message"},
		"additionalProperties": false,
	}
}
