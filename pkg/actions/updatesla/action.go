// Package updatesla implements the update_sla action: it moves the ticket's
// SLA due date relative to the current time and can flag the SLA as breached.
package updatesla

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/haldesk/haldesk/pkg/models"
)

// Configuration errors.
var (
	ErrSLAHoursInvalid = errors.New("update_sla action requires sla_hours greater than zero")
	ErrTargetRequired  = errors.New("update_sla action requires sla_hours or mark_breached")
)

// Action adjusts a ticket's SLA tracking fields. SLAHours zero means the due
// date is left alone and only the breached flag is applied.
type Action struct {
	ID           string
	SLAHours     float64
	MarkBreached bool

	now func() time.Time
}

// NewAction creates an update_sla action from configuration.
func NewAction(config map[string]any) (*Action, error) {
	actionID, _ := config["id"].(string)

	hours, hasHours := config["sla_hours"].(float64)
	if hasHours && hours <= 0 {
		return nil, ErrSLAHoursInvalid
	}

	markBreached, _ := config["mark_breached"].(bool)
	_, hasBreached := config["mark_breached"]

	if !hasHours && !hasBreached {
		return nil, ErrTargetRequired
	}

	return &Action{
		ID:           actionID,
		SLAHours:     hours,
		MarkBreached: markBreached,
		now:          time.Now,
	}, nil
}

// Execute recomputes the due date from now plus sla_hours and applies the
// breached flag when configured.
func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (models.ActionResult, error) {
	ticket := executionCtx.Ticket

	data := map[string]any{}

	if a.SLAHours > 0 {
		if ticket.SLADueAt != nil {
			data["old_due_at"] = ticket.SLADueAt.Format(time.RFC3339)
		}

		dueAt := a.now().UTC().Add(time.Duration(a.SLAHours * float64(time.Hour)))
		ticket.SLADueAt = &dueAt
		data["new_due_at"] = dueAt.Format(time.RFC3339)
	}

	if a.MarkBreached {
		ticket.SLABreached = true
		data["breached"] = true
	}

	logger.InfoContext(ctx, "sla updated",
		"module", "update_sla_action",
		"ticket_id", ticket.ID,
		"due_at", ticket.SLADueAt,
		"breached", ticket.SLABreached,
	)

	return models.ActionResult{Success: true, Message: "sla updated", Data: data}, nil
}
