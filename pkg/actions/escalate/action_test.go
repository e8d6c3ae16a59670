package escalate_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haldesk/haldesk/pkg/actions/escalate"
	"github.com/haldesk/haldesk/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func executionContext(priority int) models.ExecutionContext {
	return models.ExecutionContext{
		Ticket:  &models.Ticket{ID: "ticket-1", Priority: priority},
		Effects: &models.EffectLog{},
	}
}

func TestEscalateDefaultStep(t *testing.T) {
	t.Parallel()

	action, err := escalate.NewAction(map[string]any{})
	require.NoError(t, err)

	executionCtx := executionContext(2)

	result, err := action.Execute(context.Background(), executionCtx, testLogger())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, executionCtx.Ticket.Priority)
}

func TestEscalateRespectsCap(t *testing.T) {
	t.Parallel()

	action, err := escalate.NewAction(map[string]any{
		"priority_step": float64(3),
		"max_priority":  float64(5),
	})
	require.NoError(t, err)

	executionCtx := executionContext(4)

	_, err = action.Execute(context.Background(), executionCtx, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 5, executionCtx.Ticket.Priority)
}

func TestEscalateReassigns(t *testing.T) {
	t.Parallel()

	action, err := escalate.NewAction(map[string]any{"assignee_id": "lead-1"})
	require.NoError(t, err)

	executionCtx := executionContext(1)

	result, err := action.Execute(context.Background(), executionCtx, testLogger())
	require.NoError(t, err)

	require.NotNil(t, executionCtx.Ticket.AssignedToID)
	assert.Equal(t, "lead-1", *executionCtx.Ticket.AssignedToID)

	data, ok := result.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1, data["old_priority"])
	assert.Equal(t, 2, data["new_priority"])
}
