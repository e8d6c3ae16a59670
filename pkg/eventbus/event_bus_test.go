package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haldesk/haldesk/pkg/eventbus"
	"github.com/haldesk/haldesk/pkg/events"
)

func TestPublishSubscribeRoundTrip(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bus := eventbus.NewGoChannelEventBus(watermill.NopLogger{})
	defer func() {
		_ = bus.Close()
	}()

	received := make(chan *events.TransitionExecuted, 1)

	bus.Handle(events.TransitionExecutedEvent, func(_ context.Context, event events.Event) error {
		if executed, ok := event.(*events.TransitionExecuted); ok {
			received <- executed
		}

		return nil
	})
	require.NoError(t, bus.Subscribe(ctx))

	err := bus.Publish(ctx, "ticket-1", events.TransitionExecuted{
		BaseEvent:      events.NewBaseEvent(events.TransitionExecutedEvent),
		TicketID:       "ticket-1",
		WorkflowTypeID: "type-1",
		TransitionID:   "transition-1",
		FromStatusID:   "status-open",
		ToStatusID:     "status-done",
		UserID:         "agent-1",
		DurationMS:     12,
	})
	require.NoError(t, err)

	select {
	case event := <-received:
		assert.Equal(t, "ticket-1", event.TicketID)
		assert.Equal(t, "status-done", event.ToStatusID)
		assert.Equal(t, int64(12), event.DurationMS)
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestUnhandledEventTypesAreAcked(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bus := eventbus.NewGoChannelEventBus(watermill.NopLogger{})
	defer func() {
		_ = bus.Close()
	}()

	received := make(chan *events.TicketEvent, 1)

	// Only ticket events are handled; the failed-transition event must not
	// block the stream.
	bus.Handle(events.TicketEventLogged, func(_ context.Context, event events.Event) error {
		if ticketEvent, ok := event.(*events.TicketEvent); ok {
			received <- ticketEvent
		}

		return nil
	})
	require.NoError(t, bus.Subscribe(ctx))

	require.NoError(t, bus.Publish(ctx, "ticket-1", events.TransitionFailed{
		BaseEvent: events.NewBaseEvent(events.TransitionFailedEvent),
		TicketID:  "ticket-1",
		Reason:    "conditions not met",
	}))

	require.NoError(t, bus.Publish(ctx, "ticket-1", events.TicketEvent{
		BaseEvent: events.NewBaseEvent(events.TicketEventLogged),
		Name:      "ticket.flagged",
		TicketID:  "ticket-1",
	}))

	select {
	case event := <-received:
		assert.Equal(t, "ticket.flagged", event.Name)
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}
