// Package logevent implements the log_event action: it publishes a named
// ticket event on the workflow event bus for downstream consumers.
package logevent

import (
	"context"
	"errors"
	"log/slog"

	"github.com/haldesk/haldesk/pkg/eventbus"
	"github.com/haldesk/haldesk/pkg/events"
	"github.com/haldesk/haldesk/pkg/models"
	"github.com/haldesk/haldesk/pkg/template"
)

// ErrEventNameRequired is returned when the configuration has no event_name.
var ErrEventNameRequired = errors.New("log_event action requires event_name")

// Action publishes a structured ticket event.
type Action struct {
	ID        string
	EventName string
	Payload   map[string]any

	bus eventbus.EventBus
}

// NewAction creates a log_event action from configuration.
func NewAction(config map[string]any, bus eventbus.EventBus) (*Action, error) {
	actionID, _ := config["id"].(string)

	eventName, _ := config["event_name"].(string)
	if eventName == "" {
		return nil, ErrEventNameRequired
	}

	payload, _ := config["payload"].(map[string]any)

	return &Action{ID: actionID, EventName: eventName, Payload: payload, bus: bus}, nil
}

// Execute renders the payload's string values and publishes the event keyed
// by ticket ID.
func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (models.ActionResult, error) {
	payload := make(map[string]any, len(a.Payload))
	for key, value := range a.Payload {
		if text, ok := value.(string); ok {
			payload[key] = template.Render(text, &executionCtx)

			continue
		}

		payload[key] = value
	}

	userID := ""
	if executionCtx.User != nil {
		userID = executionCtx.User.ID
	}

	event := events.TicketEvent{
		BaseEvent: events.NewBaseEvent(events.TicketEventLogged),
		Name:      a.EventName,
		TicketID:  executionCtx.Ticket.ID,
		UserID:    userID,
		Payload:   payload,
	}

	if err := a.bus.Publish(ctx, executionCtx.Ticket.ID, event); err != nil {
		logger.ErrorContext(ctx, "failed to publish ticket event",
			"module", "log_event_action",
			"event_name", a.EventName,
			"error", err,
		)

		return models.ActionResult{Success: false, Message: "event publish failed: " + err.Error()}, nil
	}

	logger.InfoContext(ctx, "ticket event published",
		"module", "log_event_action",
		"event_name", a.EventName,
		"ticket_id", executionCtx.Ticket.ID,
	)

	return models.ActionResult{
		Success: true,
		Message: "event logged",
		Data:    map[string]any{"event_name": a.EventName},
	}, nil
}
