// Package sendemail implements the send_email action: it renders a subject
// and body and delivers them over the email channel. Addresses in the "to"
// list may be literal email addresses or the symbolic names "assignee" and
// "creator", which resolve against the ticket.
package sendemail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/haldesk/haldesk/pkg/models"
	"github.com/haldesk/haldesk/pkg/notify"
	"github.com/haldesk/haldesk/pkg/persistence"
	"github.com/haldesk/haldesk/pkg/template"
)

// Configuration errors.
var (
	ErrToRequired      = errors.New("send_email action requires a to list")
	ErrSubjectRequired = errors.New("send_email action requires subject")
)

// Action sends a rendered email to each address in To.
type Action struct {
	ID      string
	To      []string
	Subject string
	Body    string

	notifier notify.Notifier
	users    persistence.Users
}

// NewAction creates a send_email action from configuration.
func NewAction(config map[string]any, notifier notify.Notifier, users persistence.Users) (*Action, error) {
	actionID, _ := config["id"].(string)

	to := stringList(config["to"])
	if len(to) == 0 {
		return nil, ErrToRequired
	}

	subject, _ := config["subject"].(string)
	if subject == "" {
		return nil, ErrSubjectRequired
	}

	body, _ := config["body"].(string)

	return &Action{
		ID:       actionID,
		To:       to,
		Subject:  subject,
		Body:     body,
		notifier: notifier,
		users:    users,
	}, nil
}

// Execute delivers to every address; the action succeeds when at least one
// delivery went through.
func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (models.ActionResult, error) {
	logger = logger.With("module", "send_email_action")

	message := notify.Message{
		Subject: template.Render(a.Subject, &executionCtx),
		Body:    template.Render(a.Body, &executionCtx),
	}

	outcomes := make(map[string]any, len(a.To))
	delivered := 0

	for _, address := range a.To {
		recipient, err := a.resolveRecipient(ctx, address, executionCtx)
		if err != nil {
			outcomes[address] = map[string]any{"success": false, "error": err.Error()}

			continue
		}

		if err := a.notifier.Notify(ctx, recipient, message); err != nil {
			logger.WarnContext(ctx, "email delivery failed",
				"to", address,
				"error", err,
			)
			outcomes[address] = map[string]any{"success": false, "error": err.Error()}

			continue
		}

		delivered++
		outcomes[address] = map[string]any{"success": true}
	}

	return models.ActionResult{
		Success: delivered > 0,
		Message: fmt.Sprintf("emailed %d of %d recipients", delivered, len(a.To)),
		Data:    outcomes,
	}, nil
}

func (a *Action) resolveRecipient(ctx context.Context, address string, executionCtx models.ExecutionContext) (*models.User, error) {
	if strings.Contains(address, "@") {
		return &models.User{Email: address}, nil
	}

	userID := address

	switch address {
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
