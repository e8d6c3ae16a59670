// Package script implements the script action: it evaluates a restricted
// expression against the transition context and records the result. The
// expression language has no side effects; it can read ticket, user and
// context data but never mutate them.
package script

import (
	"context"
	"errors"
	"log/slog"

	"github.com/haldesk/haldesk/pkg/expr"
	"github.com/haldesk/haldesk/pkg/models"
)

// ErrExpressionRequired is returned when the configuration has no expression.
var ErrExpressionRequired = errors.New("script action requires expression")

// Action evaluates a configured expression.
type Action struct {
	ID         string
	Expression string

	program *expr.Program
}

// NewAction creates a script action from configuration. The expression is
// parsed eagerly so configuration errors surface before any transition runs.
func NewAction(config map[string]any) (*Action, error) {
	actionID, _ := config["id"].(string)

	expression, _ := config["expression"].(string)
	if expression == "" {
		return nil, ErrExpressionRequired
	}

	program, err := expr.Parse(expression)
	if err != nil {
		return nil, err
	}

	return &Action{ID: actionID, Expression: expression, program: program}, nil
}

// Execute evaluates the expression against the transition's template data.
// Evaluation errors are recorded as a failed result, not a pipeline error.
func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (models.ActionResult, error) {
	value, err := a.program.Eval(executionCtx.TemplateData())
	if err != nil {
		logger.WarnContext(ctx, "script evaluation failed",
			"module", "script_action",
			"ticket_id", executionCtx.Ticket.ID,
			"error", err,
		)

		return models.ActionResult{Success: false, Message: "script failed: " + err.Error()}, nil
	}

	logger.InfoContext(ctx, "script evaluated",
		"module", "script_action",
		"ticket_id", executionCtx.Ticket.ID,
	)

	return models.ActionResult{
		Success: true,
		Message: "script evaluated",
		Data:    map[string]any{"result": value},
	}, nil
}
