package cmd

import (
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/haldesk/haldesk/pkg/eventbus"
)

// NewEventBus creates the event bus transition events are published on.
func NewEventBus(provider string, logger *slog.Logger) eventbus.EventBus {
	switch provider {
	case "", "gochannel":
		return eventbus.NewGoChannelEventBus(watermill.NewSlogLogger(logger))
	default:
		panic("Unsupported event bus provider: " + provider)
	}
}
