// Package sendtelegram implements the send_telegram action: it renders a
// message and delivers it over the telegram channel to the ticket's assignee,
// its creator, or explicit user IDs.
package sendtelegram

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

// ErrMessageRequired is returned when the configuration has no message.
var ErrMessageRequired = errors.New("send_telegram action requires message")

// Action sends a rendered telegram message to each recipient.
type Action struct {
	ID         string
	Recipients []string
	Message    string

	notifier notify.Notifier
	users    persistence.Users
}

// NewAction creates a send_telegram action from configuration. When no
// recipients are configured the message goes to the ticket's assignee.
func NewAction(config map[string]any, notifier notify.Notifier, users persistence.Users) (*Action, error) {
	actionID, _ := config["id"].(string)

	message, _ := config["message"].(string)
	if message == "" {
		return nil, ErrMessageRequired
	}

	recipients := stringList(config["recipients"])
	if len(recipients) == 0 {
		recipients = []string{"assignee"}
	}

	return &Action{
		ID:         actionID,
		Recipients: recipients,
		Message:    message,
		notifier:   notifier,
		users:      users,
	}, nil
}

// Execute delivers to every recipient; the action succeeds when at least one
// delivery went through.
func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (models.ActionResult, error) {
	logger = logger.With("module", "send_telegram_action")

	message := notify.Message{Body: template.Render(a.Message, &executionCtx)}

	outcomes := make(map[string]any, len(a.Recipients))
	delivered := 0

	for _, recipient := range a.Recipients {
		user, err := a.resolveRecipient(ctx, recipient, executionCtx)
		if err != nil {
			outcomes[recipient] = map[string]any{"success": false, "error": err.Error()}

			continue
		}

		if err := a.notifier.Notify(ctx, user, message); err != nil {
			logger.WarnContext(ctx, "telegram delivery failed",
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
		Message: fmt.Sprintf("messaged %d of %d recipients", delivered, len(a.Recipients)),
		Data:    outcomes,
	}, nil
}

func (a *Action) resolveRecipient(ctx context.Context, recipient string, executionCtx models.ExecutionContext) (*models.User, error) {
	userID := recipient

	switch recipient {
	case "assignee":
		if executionCtx.Ticket.AssignedToID == nil || *executionCtx.Ticket.AssignedToID == "" {
			return nil, fmt.Errorf("%w: ticket has no assignee", notify.ErrNoRecipient)
		}

		userID = *executionCtx.Ticket.AssignedToID
	case "creator":
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
