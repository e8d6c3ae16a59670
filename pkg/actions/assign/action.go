// Package assign implements the assignment action: it resolves a target user
// either directly or via a named rule and moves the ticket to them.
package assign

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/haldesk/haldesk/pkg/models"
	"github.com/haldesk/haldesk/pkg/persistence"
)

// Assignment rules.
const (
	RuleRoundRobin    = "round_robin"
	RuleLeastAssigned = "least_assigned"
	RuleCreator       = "creator"
	RuleCurrentUser   = "current_user"
)

var (
	// ErrNoTarget is returned when neither an assignee nor a rule resolves.
	ErrNoTarget = errors.New("no assignment target could be resolved")
	// ErrUnknownRule is returned for an unrecognized assignment rule.
	ErrUnknownRule = errors.New("unknown assignment rule")
)

// Action assigns the ticket to a user.
type Action struct {
	ID         string
	AssigneeID string
	Rule       string

	tickets persistence.Tickets
	users   persistence.Users
}

// NewAction creates an assignment action from configuration.
func NewAction(config map[string]any, tickets persistence.Tickets, users persistence.Users) (*Action, error) {
	actionID, _ := config["id"].(string)
	assigneeID, _ := config["assignee_id"].(string)
	rule, _ := config["rule"].(string)

	if assigneeID == "" && rule == "" {
		return nil, fmt.Errorf("assign action: %w", ErrNoTarget)
	}

	return &Action{
		ID:         actionID,
		AssigneeID: assigneeID,
		Rule:       rule,
		tickets:    tickets,
		users:      users,
	}, nil
}

// Execute resolves the target user and mutates the ticket's assignee. The
// orchestrator persists the ticket inside the transition's transaction.
func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (models.ActionResult, error) {
	logger = logger.With("module", "assign_action")

	targetID, err := a.resolveTarget(ctx, executionCtx)
	if err != nil {
		return models.ActionResult{Success: false, Message: err.Error()}, err
	}

	var previous string
	if executionCtx.Ticket.AssignedToID != nil {
		previous = *executionCtx.Ticket.AssignedToID
	}

	executionCtx.Ticket.AssignedToID = &targetID

	logger.InfoContext(ctx, "ticket reassigned",
		"ticket_id", executionCtx.Ticket.ID,
		"assignee_id", targetID,
	)

	return models.ActionResult{
		Success: true,
		Message: fmt.Sprintf("assigned to %s", targetID),
		Data: map[string]any{
			"assignee_id":          targetID,
			"previous_assignee_id": previous,
		},
	}, nil
}

func (a *Action) resolveTarget(ctx context.Context, executionCtx models.ExecutionContext) (string, error) {
	if a.AssigneeID != "" {
		return a.AssigneeID, nil
	}

	switch a.Rule {
	case RuleRoundRobin:
		agents, err := a.users.ActiveAgents(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to list active agents: %w", err)
		}

		if len(agents) == 0 {
			return "", ErrNoTarget
		}

		// ActiveAgents orders oldest-login-first.
		return agents[0].ID, nil
	case RuleLeastAssigned:
		agents, err := a.users.ActiveAgents(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to list active agents: %w", err)
		}

		if len(agents) == 0 {
			return "", ErrNoTarget
		}

		counts, err := a.tickets.ActiveTicketCounts(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to count active tickets: %w", err)
		}

		best := agents[0]
		for _, agent := range agents[1:] {
			if counts[agent.ID] < counts[best.ID] {
				best = agent
			}
		}

		return best.ID, nil
	case RuleCreator:
		if executionCtx.Ticket.CreatedBy == "" {
			return "", ErrNoTarget
		}

		return executionCtx.Ticket.CreatedBy, nil
	case RuleCurrentUser:
		if executionCtx.User == nil {
			return "", ErrNoTarget
		}

		return executionCtx.User.ID, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownRule, a.Rule)
	}
}
