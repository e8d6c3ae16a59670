package comment_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haldesk/haldesk/pkg/actions/comment"
	"github.com/haldesk/haldesk/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestCommentIsQueuedWithRenderedContent(t *testing.T) {
	t.Parallel()

	action, err := comment.NewAction(map[string]any{
		"content":     "Resolved by {{user.name}} on {{ticket.id}}",
		"is_internal": true,
	})
	require.NoError(t, err)

	executionCtx := models.ExecutionContext{
		Ticket:  &models.Ticket{ID: "ticket-1", Subject: "Printer jam"},
		User:    &models.User{ID: "agent-1", Name: "Greta", Role: "agent"},
		Effects: &models.EffectLog{},
	}

	result, err := action.Execute(context.Background(), executionCtx, testLogger())
	require.NoError(t, err)
	assert.True(t, result.Success)

	require.Len(t, executionCtx.Effects.Comments, 1)
	queued := executionCtx.Effects.Comments[0]
	assert.Equal(t, "Resolved by Greta on ticket-1", queued.Content)
	assert.Equal(t, "ticket-1", queued.TicketID)
	assert.Equal(t, "agent-1", queued.UserID)
	assert.True(t, queued.IsInternal)
}

func TestCommentWithoutActingUser(t *testing.T) {
	t.Parallel()

	action, err := comment.NewAction(map[string]any{"content": "automated note"})
	require.NoError(t, err)

	executionCtx := models.ExecutionContext{
		Ticket:  &models.Ticket{ID: "ticket-1"},
		Effects: &models.EffectLog{},
	}

	_, err = action.Execute(context.Background(), executionCtx, testLogger())
	require.NoError(t, err)

	require.Len(t, executionCtx.Effects.Comments, 1)
	assert.Empty(t, executionCtx.Effects.Comments[0].UserID)
}

func TestCommentRequiresContent(t *testing.T) {
	t.Parallel()

	_, err := comment.NewAction(map[string]any{})
	assert.ErrorIs(t, err, comment.ErrContentRequired)
}
