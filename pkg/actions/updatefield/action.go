// Package updatefield implements the update_field action: it writes a literal
// or templated value into a named ticket field.
package updatefield

import (
	"context"
	"errors"
	"log/slog"

	"github.com/haldesk/haldesk/pkg/expr"
	"github.com/haldesk/haldesk/pkg/models"
	"github.com/haldesk/haldesk/pkg/template"
)

// ErrFieldNameRequired is returned when the configuration names no field.
var ErrFieldNameRequired = errors.New("update_field action requires field_name")

// Action writes a value into one ticket field.
type Action struct {
	ID         string
	FieldName  string
	FieldValue any
}

// NewAction creates an update_field action from configuration.
func NewAction(config map[string]any) (*Action, error) {
	actionID, _ := config["id"].(string)

	fieldName, _ := config["field_name"].(string)
	if fieldName == "" {
		return nil, ErrFieldNameRequired
	}

	return &Action{
		ID:         actionID,
		FieldName:  fieldName,
		FieldValue: config["field_value"],
	}, nil
}

// Execute mutates the ticket field and records the old and new values.
// String values pass through the template renderer first.
func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (models.ActionResult, error) {
	oldValue, _ := expr.Lookup(executionCtx.Ticket.Snapshot(), a.FieldName)

	newValue := a.FieldValue
	if str, ok := a.FieldValue.(string); ok {
		newValue = template.Render(str, &executionCtx)
	}

	executionCtx.Ticket.SetField(a.FieldName, newValue)

	logger.InfoContext(ctx, "ticket field updated",
		"module", "update_field_action",
		"ticket_id", executionCtx.Ticket.ID,
		"field", a.FieldName,
	)

	return models.ActionResult{
		Success: true,
		Message: "field " + a.FieldName + " updated",
		Data: map[string]any{
			"field_name": a.FieldName,
			"old_value":  oldValue,
			"new_value":  newValue,
		},
	}, nil
}
