package notifyaction_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	notifyaction "github.com/haldesk/haldesk/pkg/actions/notify"
	"github.com/haldesk/haldesk/pkg/models"
	"github.com/haldesk/haldesk/pkg/notify"
	"github.com/haldesk/haldesk/pkg/persistence/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func seededStore() *memory.Persistence {
	store := memory.NewPersistence()
	store.PutUser(&models.User{ID: "agent-1", Name: "Greta", Role: "agent", IsActive: true})
	store.PutUser(&models.User{ID: "client-1", Name: "Carl", Role: "client", IsActive: true})

	return store
}

func executionContext() models.ExecutionContext {
	assignee := "agent-1"

	return models.ExecutionContext{
		Ticket: &models.Ticket{
			ID:           "ticket-1",
			Subject:      "Printer jam",
			AssignedToID: &assignee,
			CreatedBy:    "client-1",
		},
		User:    &models.User{ID: "agent-1", Name: "Greta", Role: "agent"},
		Effects: &models.EffectLog{},
	}
}

func TestNotifyResolvesSymbolicRecipients(t *testing.T) {
	t.Parallel()

	store := seededStore()
	recorder := notify.NewRecorder()

	action, err := notifyaction.NewAction(map[string]any{
		"recipients": []any{notifyaction.RecipientAssignee, notifyaction.RecipientCreator},
		"subject":    "Update on {{ticket.id}}",
		"message":    "Handled by {{user.name}}",
	}, recorder, store.Users())
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), executionContext(), testLogger())
	require.NoError(t, err)
	assert.True(t, result.Success)

	deliveries := recorder.Deliveries()
	require.Len(t, deliveries, 2)
	assert.Equal(t, "agent-1", deliveries[0].Recipient.ID)
	assert.Equal(t, "client-1", deliveries[1].Recipient.ID)
	assert.Equal(t, "Update on ticket-1", deliveries[0].Message.Subject)
	assert.Equal(t, "Handled by Greta", deliveries[0].Message.Body)
}

func TestNotifyUnresolvableRecipientDoesNotAbort(t *testing.T) {
	t.Parallel()

	store := seededStore()
	recorder := notify.NewRecorder()

	action, err := notifyaction.NewAction(map[string]any{
		"recipients": []any{"missing-user", "agent-1"},
		"message":    "hello",
	}, recorder, store.Users())
	require.NoError(t, err)

	// One recipient resolving is enough for the action to succeed.
	result, err := action.Execute(context.Background(), executionContext(), testLogger())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, recorder.Deliveries(), 1)
}

func TestNotifyAllDeliveriesFailing(t *testing.T) {
	t.Parallel()

	store := seededStore()
	recorder := notify.NewRecorder()
	recorder.FailNext()

	action, err := notifyaction.NewAction(map[string]any{
		"recipients": []any{"agent-1"},
		"message":    "hello",
	}, recorder, store.Users())
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), executionContext(), testLogger())
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestNotifyAssigneeWithUnassignedTicket(t *testing.T) {
	t.Parallel()

	store := seededStore()
	recorder := notify.NewRecorder()

	action, err := notifyaction.NewAction(map[string]any{
		"recipients": []any{notifyaction.RecipientAssignee},
		"message":    "hello",
	}, recorder, store.Users())
	require.NoError(t, err)

	executionCtx := executionContext()
	executionCtx.Ticket.AssignedToID = nil

	result, err := action.Execute(context.Background(), executionCtx, testLogger())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, recorder.Deliveries())
}

func TestNotifyRequiresRecipients(t *testing.T) {
	t.Parallel()

	store := seededStore()

	_, err := notifyaction.NewAction(map[string]any{"message": "hello"}, notify.NewRecorder(), store.Users())
	assert.ErrorIs(t, err, notifyaction.ErrNoRecipients)
}
