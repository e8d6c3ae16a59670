// Package escalate implements the escalate action: it bumps the ticket's
// priority and optionally reassigns it to an escalation target.
package escalate

import (
	"context"
	"log/slog"

	"github.com/haldesk/haldesk/pkg/models"
)

const defaultPriorityStep = 1

// Action raises a ticket's priority.
type Action struct {
	ID           string
	PriorityStep int
	MaxPriority  int
	AssigneeID   string
}

// NewAction creates an escalate action from configuration.
func NewAction(config map[string]any) (*Action, error) {
	actionID, _ := config["id"].(string)

	step := defaultPriorityStep
	if value, ok := config["priority_step"].(float64); ok && value > 0 {
		step = int(value)
	}

	maxPriority := 0
	if value, ok := config["max_priority"].(float64); ok {
		maxPriority = int(value)
	}

	assigneeID, _ := config["assignee_id"].(string)

	return &Action{
		ID:           actionID,
		PriorityStep: step,
		MaxPriority:  maxPriority,
		AssigneeID:   assigneeID,
	}, nil
}

// Execute bumps the priority (capped at max_priority when set) and applies
// the optional escalation assignee.
func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (models.ActionResult, error) {
	ticket := executionCtx.Ticket
	oldPriority := ticket.Priority

	ticket.Priority += a.PriorityStep
	if a.MaxPriority > 0 && ticket.Priority > a.MaxPriority {
		ticket.Priority = a.MaxPriority
	}

	data := map[string]any{
		"old_priority": oldPriority,
		"new_priority": ticket.Priority,
	}

	if a.AssigneeID != "" {
		assignee := a.AssigneeID
		ticket.AssignedToID = &assignee
		data["assignee_id"] = assignee
	}

	logger.InfoContext(ctx, "ticket escalated",
		"module", "escalate_action",
		"ticket_id", ticket.ID,
		"priority", ticket.Priority,
	)

	return models.ActionResult{Success: true, Message: "ticket escalated", Data: data}, nil
}
