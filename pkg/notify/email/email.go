// Package email delivers notifications over SMTP.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/haldesk/haldesk/pkg/models"
	"github.com/haldesk/haldesk/pkg/notify"
)

// Notifier sends notification messages as plain-text email.
type Notifier struct {
	addr   string
	from   string
	auth   smtp.Auth
	send   func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
	logger *slog.Logger
}

// New creates an SMTP notifier. auth may be nil for unauthenticated relays.
func New(addr, from string, auth smtp.Auth, logger *slog.Logger) *Notifier {
	return &Notifier{
		addr:   addr,
		from:   from,
		auth:   auth,
		send:   smtp.SendMail,
		logger: logger,
	}
}

// Notify sends the message to the recipient's email address.
func (n *Notifier) Notify(ctx context.Context, recipient *models.User, message notify.Message) error {
	if recipient == nil || recipient.Email == "" {
		return fmt.Errorf("%w: no email address for user", notify.ErrNoRecipient)
	}

	var payload strings.Builder

	payload.WriteString("From: " + n.from + "\r\n")
	payload.WriteString("To: " + recipient.Email + "\r\n")
	payload.WriteString("Subject: " + message.Subject + "\r\n")
	payload.WriteString("\r\n")
	payload.WriteString(message.Body)
	payload.WriteString("\r\n")

	err := n.send(n.addr, n.auth, n.from, []string{recipient.Email}, []byte(payload.String()))
	if err != nil {
		n.logger.ErrorContext(ctx, "email delivery failed",
			"recipient", recipient.Email,
			"error", err,
		)

		return fmt.Errorf("%w: %w", notify.ErrDeliveryFailed, err)
	}

	return nil
}
