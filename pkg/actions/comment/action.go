// Package comment implements the create_comment action: it queues an
// optionally internal comment with templated content on the ticket.
package comment

import (
	"context"
	"errors"
	"log/slog"

	"github.com/haldesk/haldesk/pkg/models"
	"github.com/haldesk/haldesk/pkg/template"
)

// ErrContentRequired is returned when the configuration has no content.
var ErrContentRequired = errors.New("create_comment action requires content")

// Action creates a comment on the ticket.
type Action struct {
	ID         string
	Content    string
	IsInternal bool
}

// NewAction creates a create_comment action from configuration.
func NewAction(config map[string]any) (*Action, error) {
	actionID, _ := config["id"].(string)

	content, _ := config["content"].(string)
	if content == "" {
		return nil, ErrContentRequired
	}

	isInternal, _ := config["is_internal"].(bool)

	return &Action{ID: actionID, Content: content, IsInternal: isInternal}, nil
}

// Execute queues the rendered comment on the execution context's effect log;
// the orchestrator persists it inside the transition's transaction.
func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (models.ActionResult, error) {
	content := template.Render(a.Content, &executionCtx)

	userID := ""
	if executionCtx.User != nil {
		userID = executionCtx.User.ID
	}

	executionCtx.Effects.QueueComment(&models.Comment{
		TicketID:   executionCtx.Ticket.ID,
		UserID:     userID,
		Content:    content,
		IsInternal: a.IsInternal,
	})

	logger.InfoContext(ctx, "comment queued",
		"module", "create_comment_action",
		"ticket_id", executionCtx.Ticket.ID,
		"internal", a.IsInternal,
	)

	return models.ActionResult{
		Success: true,
		Message: "comment created",
		Data:    map[string]any{"content": content, "is_internal": a.IsInternal},
	}, nil
}
