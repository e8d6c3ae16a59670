package sendtelegram_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haldesk/haldesk/pkg/actions/sendtelegram"
	"github.com/haldesk/haldesk/pkg/models"
	"github.com/haldesk/haldesk/pkg/notify"
	"github.com/haldesk/haldesk/pkg/persistence/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
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

func TestSendTelegramDefaultsToAssignee(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()
	store.PutUser(&models.User{ID: "agent-1", Name: "Greta", Role: "agent", TelegramChatID: 42, IsActive: true})
	recorder := notify.NewRecorder()

	action, err := sendtelegram.NewAction(map[string]any{
		"message": "{{ticket.subject}} needs attention",
	}, recorder, store.Users())
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), executionContext(), testLogger())
	require.NoError(t, err)
	assert.True(t, result.Success)

	deliveries := recorder.Deliveries()
	require.Len(t, deliveries, 1)
	assert.Equal(t, "agent-1", deliveries[0].Recipient.ID)
	assert.Equal(t, "Printer jam needs attention", deliveries[0].Message.Body)
}

func TestSendTelegramExplicitRecipients(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()
	store.PutUser(&models.User{ID: "client-1", Name: "Carl", Role: "client", TelegramChatID: 7, IsActive: true})
	recorder := notify.NewRecorder()

	action, err := sendtelegram.NewAction(map[string]any{
		"message":    "update",
		"recipients": []any{"creator"},
	}, recorder, store.Users())
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), executionContext(), testLogger())
	require.NoError(t, err)
	assert.True(t, result.Success)

	deliveries := recorder.Deliveries()
	require.Len(t, deliveries, 1)
	assert.Equal(t, "client-1", deliveries[0].Recipient.ID)
}

func TestSendTelegramUnassignedTicket(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()
	recorder := notify.NewRecorder()

	action, err := sendtelegram.NewAction(map[string]any{"message": "update"}, recorder, store.Users())
	require.NoError(t, err)

	executionCtx := executionContext()
	executionCtx.Ticket.AssignedToID = nil

	result, err := action.Execute(context.Background(), executionCtx, testLogger())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, recorder.Deliveries())
}

func TestSendTelegramRequiresMessage(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()

	_, err := sendtelegram.NewAction(map[string]any{}, notify.NewRecorder(), store.Users())
	assert.ErrorIs(t, err, sendtelegram.ErrMessageRequired)
}
