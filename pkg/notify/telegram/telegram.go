// Package telegram delivers notifications through the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/haldesk/haldesk/pkg/models"
	"github.com/haldesk/haldesk/pkg/notify"
)

// Notifier sends notification messages to a user's Telegram chat.
type Notifier struct {
	bot    *bot.Bot
	logger *slog.Logger
}

// New creates a Telegram notifier from a bot token.
func New(token string, logger *slog.Logger) (*Notifier, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &Notifier{bot: b, logger: logger}, nil
}

// Notify sends the message to the recipient's Telegram chat. A recipient
// without a chat ID cannot be reached over this channel.
func (n *Notifier) Notify(ctx context.Context, recipient *models.User, message notify.Message) error {
	if recipient == nil || recipient.TelegramChatID == 0 {
		return fmt.Errorf("%w: no telegram chat for user", notify.ErrNoRecipient)
	}

	text := message.Body
	if message.Subject != "" {
		text = message.Subject + "\n\n" + message.Body
	}

	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: recipient.TelegramChatID,
		Text:   text,
	})
	if err != nil {
		n.logger.ErrorContext(ctx, "telegram delivery failed",
			"chat_id", recipient.TelegramChatID,
			"error", err,
		)

		return fmt.Errorf("%w: %w", notify.ErrDeliveryFailed, err)
	}

	return nil
}
