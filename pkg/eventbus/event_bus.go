// Package eventbus publishes workflow events over a watermill pubsub.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/haldesk/haldesk/pkg/events"
)

// EventHandler consumes one decoded event.
type EventHandler func(ctx context.Context, event events.Event) error

// EventBus publishes and subscribes to workflow events.
type EventBus interface {
	Publish(ctx context.Context, key string, event events.Event) error
	Subscribe(ctx context.Context) error
	Handle(eventType events.EventType, handler EventHandler)
	Close() error
}

// WatermillEventBus is the watermill-backed implementation.
type WatermillEventBus struct {
	publisher     message.Publisher
	subscriber    message.Subscriber
	subscriptions map[events.EventType]EventHandler
}

// NewWatermillEventBus wraps an existing publisher/subscriber pair.
func NewWatermillEventBus(pub message.Publisher, sub message.Subscriber) *WatermillEventBus {
	return &WatermillEventBus{
		publisher:     pub,
		subscriber:    sub,
		subscriptions: make(map[events.EventType]EventHandler),
	}
}

// NewGoChannelEventBus creates a bus backed by watermill's in-process pubsub.
func NewGoChannelEventBus(logger watermill.LoggerAdapter) *WatermillEventBus {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: 1000,
			Persistent:          false,
		},
		logger,
	)

	return NewWatermillEventBus(pubSub, pubSub)
}

// Publish serializes the event and publishes it on the workflow topic.
func (eb *WatermillEventBus) Publish(_ context.Context, key string, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage("msg-"+watermill.NewULID(), payload)
	msg.Metadata.Set(events.EventMetadataKey, key)
	msg.Metadata.Set(events.EventTypeMetadataKey, string(event.GetType()))

	return eb.publisher.Publish(events.Topic, msg)
}

// Handle registers a handler for one event type. Registration must happen
// before Subscribe.
func (eb *WatermillEventBus) Handle(eventType events.EventType, handler EventHandler) {
	eb.subscriptions[eventType] = handler
}

// Subscribe starts consuming the workflow topic and dispatching to handlers.
func (eb *WatermillEventBus) Subscribe(ctx context.Context) error {
	messages, err := eb.subscriber.Subscribe(ctx, events.Topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", events.Topic, err)
	}

	go func() {
		for msg := range messages {
			eventType := events.EventType(msg.Metadata.Get(events.EventTypeMetadataKey))

			handler, exists := eb.subscriptions[eventType]
			if !exists {
				msg.Ack()

				continue
			}

			var event events.Event

			switch eventType {
			case events.TransitionExecutedEvent:
				event = &events.TransitionExecuted{}
			case events.TransitionFailedEvent:
				event = &events.TransitionFailed{}
			case events.TicketEventLogged:
				event = &events.TicketEvent{}
			default:
				msg.Ack()

				continue
			}

			if err := json.Unmarshal(msg.Payload, event); err != nil {
				msg.Nack()

				continue
			}

			if err := handler(ctx, event); err != nil {
				msg.Nack()

				continue
			}

			msg.Ack()
		}
	}()

	return nil
}

// Close shuts the underlying publisher down.
func (eb *WatermillEventBus) Close() error {
	if closer, ok := eb.publisher.(interface{ Close() error }); ok {
		return closer.Close()
	}

	return nil
}
