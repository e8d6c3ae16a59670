package assign

import (
	"github.com/haldesk/haldesk/pkg/persistence"
	"github.com/haldesk/haldesk/pkg/protocol"
)

// ActionFactory creates assignment actions.
type ActionFactory struct {
	tickets persistence.Tickets
	users   persistence.Users
}

// NewActionFactory creates a factory bound to the ticket and user stores the
// assignment rules consult.
func NewActionFactory(tickets persistence.Tickets, users persistence.Users) *ActionFactory {
	return &ActionFactory{tickets: tickets, users: users}
}

// Create creates a new assignment action from the given configuration.
func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config, f.tickets, f.users)
}

// ID returns the unique identifier for the action.
func (f *ActionFactory) ID() string {
	return "assign"
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"assignee_id": map[string]any{
				"type":        "string",
				"description": "Explicit user ID to assign the ticket to.",
			},
			"rule": map[string]any{
				"type":        "string",
				"description": "Named assignment rule used when no explicit assignee is set.",
				"enum":        []string{RuleRoundRobin, RuleLeastAssigned, RuleCreator, RuleCurrentUser},
			},
		},
		"additionalProperties": false,
	}
}
