package logevent_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haldesk/haldesk/pkg/actions/logevent"
	"github.com/haldesk/haldesk/pkg/eventbus"
	"github.com/haldesk/haldesk/pkg/events"
	"github.com/haldesk/haldesk/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestLogEventPublishesTicketEvent(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bus := eventbus.NewGoChannelEventBus(watermill.NopLogger{})
	defer func() {
		_ = bus.Close()
	}()

	received := make(chan *events.TicketEvent, 1)

	bus.Handle(events.TicketEventLogged, func(_ context.Context, event events.Event) error {
		if ticketEvent, ok := event.(*events.TicketEvent); ok {
			received <- ticketEvent
		}

		return nil
	})
	require.NoError(t, bus.Subscribe(ctx))

	action, err := logevent.NewAction(map[string]any{
		"event_name": "ticket.resolved",
		"payload": map[string]any{
			"note":  "closed by {{user.name}}",
			"count": float64(1),
		},
	}, bus)
	require.NoError(t, err)

	executionCtx := models.ExecutionContext{
		Ticket:  &models.Ticket{ID: "ticket-1"},
		User:    &models.User{ID: "agent-1", Name: "Greta", Role: "agent"},
		Effects: &models.EffectLog{},
	}

	result, err := action.Execute(ctx, executionCtx, testLogger())
	require.NoError(t, err)
	assert.True(t, result.Success)

	select {
	case event := <-received:
		assert.Equal(t, "ticket.resolved", event.Name)
		assert.Equal(t, "ticket-1", event.TicketID)
		assert.Equal(t, "agent-1", event.UserID)
		assert.Equal(t, "closed by Greta", event.Payload["note"])
		assert.Equal(t, float64(1), event.Payload["count"])
	case <-ctx.Done():
		t.Fatal("timed out waiting for ticket event")
	}
}

func TestLogEventRequiresEventName(t *testing.T) {
	t.Parallel()

	bus := eventbus.NewGoChannelEventBus(watermill.NopLogger{})
	defer func() {
		_ = bus.Close()
	}()

	_, err := logevent.NewAction(map[string]any{}, bus)
	assert.ErrorIs(t, err, logevent.ErrEventNameRequired)
}
