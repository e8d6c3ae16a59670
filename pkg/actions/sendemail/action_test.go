package sendemail_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haldesk/haldesk/pkg/actions/sendemail"
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

func TestSendEmailToLiteralAddress(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()
	recorder := notify.NewRecorder()

	action, err := sendemail.NewAction(map[string]any{
		"to":      []any{"ops@example.com"},
		"subject": "Ticket {{ticket.id}} moved",
		"body":    "Subject: {{ticket.subject}}",
	}, recorder, store.Users())
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), executionContext(), testLogger())
	require.NoError(t, err)
	assert.True(t, result.Success)

	deliveries := recorder.Deliveries()
	require.Len(t, deliveries, 1)
	assert.Equal(t, "ops@example.com", deliveries[0].Recipient.Email)
	assert.Equal(t, "Ticket ticket-1 moved", deliveries[0].Message.Subject)
	assert.Equal(t, "Subject: Printer jam", deliveries[0].Message.Body)
}

func TestSendEmailToAssignee(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()
	store.PutUser(&models.User{ID: "agent-1", Name: "Greta", Email: "greta@example.com", Role: "agent", IsActive: true})
	recorder := notify.NewRecorder()

	action, err := sendemail.NewAction(map[string]any{
		"to":      []any{"assignee"},
		"subject": "heads up",
	}, recorder, store.Users())
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), executionContext(), testLogger())
	require.NoError(t, err)
	assert.True(t, result.Success)

	deliveries := recorder.Deliveries()
	require.Len(t, deliveries, 1)
	assert.Equal(t, "greta@example.com", deliveries[0].Recipient.Email)
}

func TestSendEmailConfigErrors(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()
	recorder := notify.NewRecorder()

	_, err := sendemail.NewAction(map[string]any{"subject": "x"}, recorder, store.Users())
	assert.ErrorIs(t, err, sendemail.ErrToRequired)

	_, err = sendemail.NewAction(map[string]any{"to": []any{"ops@example.com"}}, recorder, store.Users())
	assert.ErrorIs(t, err, sendemail.ErrSubjectRequired)
}
