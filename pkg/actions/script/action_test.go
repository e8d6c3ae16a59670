package script_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haldesk/haldesk/pkg/actions/script"
	"github.com/haldesk/haldesk/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func executionContext() models.ExecutionContext {
	return models.ExecutionContext{
		Ticket:  &models.Ticket{ID: "ticket-1", Priority: 4},
		User:    &models.User{ID: "agent-1", Role: "agent"},
		Effects: &models.EffectLog{},
	}
}

func TestScriptEvaluatesExpression(t *testing.T) {
	t.Parallel()

	action, err := script.NewAction(map[string]any{
		"expression": `ticket.priority >= 3 and user.role == "agent"`,
	})
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), executionContext(), testLogger())
	require.NoError(t, err)
	assert.True(t, result.Success)

	data, ok := result.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, data["result"])
}

func TestScriptParseErrorSurfacesAtConstruction(t *testing.T) {
	t.Parallel()

	_, err := script.NewAction(map[string]any{"expression": "ticket.priority >="})
	assert.Error(t, err)
}

func TestScriptEvaluationErrorIsFailedResult(t *testing.T) {
	t.Parallel()

	// Comparing a string against a number fails at evaluation, not at parse.
	action, err := script.NewAction(map[string]any{"expression": "user.role > 3"})
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), executionContext(), testLogger())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "script failed")
}

func TestScriptRequiresExpression(t *testing.T) {
	t.Parallel()

	_, err := script.NewAction(map[string]any{})
	assert.ErrorIs(t, err, script.ErrExpressionRequired)
}
