// Package notifyaction implements the notify action: it fans a templated
// message out to a list of recipients over the configured delivery channel.
package notifyaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/haldesk/haldesk/pkg/models"
	"github.com/haldesk/haldesk/pkg/notify"
	"github.com/haldesk/haldesk/pkg/persistence"
	"github.com/haldesk/haldesk/pkg/template"
)

// Symbolic recipients resolved against the transition context.
const (
	RecipientAssignee = "assignee"
	RecipientCreator  = "creator"
)

// ErrNoRecipients is returned when the recipients list is empty.
var ErrNoRecipients = errors.New("notify action requires at least one recipient")

// Action delivers a templated message to each configured recipient.
type Action struct {
	ID         string
	Recipients []string
	Subject    string
	Message    string

	notifier notify.Notifier
	users    persistence.Users
}

// NewAction creates a notify action from configuration.
func NewAction(config map[string]any, notifier notify.Notifier, users persistence.Users) (*Action, error) {
	actionID, _ := config["id"].(string)
	subject, _ := config["subject"].(string)
	message, _ := config["message"].(string)

	recipients := stringList(config["recipients"])
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	return &Action{
		ID:         actionID,
		Recipients: recipients,
		Subject:    subject,
		Message:    message,
		notifier:   notifier,
		users:      users,
	}, nil
}

// Execute delivers to every recipient and reports an aggregate result: the
// action succeeds if at least one recipient was reached.
func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (models.ActionResult, error) {
	logger = logger.With("module", "notify_action")

	message := notify.Message{
		Subject: template.Render(a.Subject, &executionCtx),
		Body:    template.Render(a.Message, &executionCtx),
	}

	outcomes := make(map[string]any, len(a.Recipients))
	delivered := 0

	for _, recipient := range a.Recipients {
		user, err := a.resolveRecipient(ctx, recipient, executionCtx)
		if err != nil {
			outcomes[recipient] = map[string]any{"success": false, "error": err.Error()}

			continue
		}

		if err := a.notifier.Notify(ctx, user, message); err != nil {
			logger.WarnContext(ctx, "notification delivery failed",
				"recipient", recipient,
				"error", err,
			)
			outcomes[recipient] = map[string]any{"success": false, "error": err.Error()}

			continue
		}

		delivered++
		outcomes[recipient] = map[string]any{"success": true}
	}

	return models.ActionResult{
		Success: delivered > 0,
		Message: fmt.Sprintf("delivered to %d of %d recipients", delivered, len(a.Recipients)),
		Data:    outcomes,
	}, nil
}

func (a *Action) resolveRecipient(ctx context.Context, recipient string, executionCtx models.ExecutionContext) (*models.User, error) {
	userID := recipient

	switch recipient {
	case RecipientAssignee:
		if executionCtx.Ticket.AssignedToID == nil || *executionCtx.Ticket.AssignedToID == "" {
			return nil, fmt.Errorf("%w: ticket has no assignee", notify.ErrNoRecipient)
		}

		userID = *executionCtx.Ticket.AssignedToID
	case RecipientCreator:
		userID = executionCtx.Ticket.CreatedBy
	}

	user, err := a.users.UserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", notify.ErrNoRecipient, err)
	}

	return user, nil
}

func stringList(value any) []string {
	var list []string

	switch items := value.(type) {
	case []string:
		list = append(list, items...)
	case []any:
		for _, item := range items {
			if str, ok := item.(string); ok {
				list = append(list, str)
			}
		}
	}

	return list
}
