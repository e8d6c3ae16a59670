package updatefield_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haldesk/haldesk/pkg/actions/updatefield"
	"github.com/haldesk/haldesk/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func executionContext() models.ExecutionContext {
	return models.ExecutionContext{
		Ticket: &models.Ticket{
			ID:       "ticket-1",
			Subject:  "Printer jam",
			Priority: 3,
			Fields:   map[string]any{"customer_tier": "gold"},
		},
		User:    &models.User{ID: "agent-1", Name: "Greta", Role: "agent"},
		Effects: &models.EffectLog{},
	}
}

func TestUpdateCustomField(t *testing.T) {
	t.Parallel()

	action, err := updatefield.NewAction(map[string]any{
		"field_name":  "customer_tier",
		"field_value": "platinum",
	})
	require.NoError(t, err)

	executionCtx := executionContext()

	result, err := action.Execute(context.Background(), executionCtx, testLogger())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "platinum", executionCtx.Ticket.Fields["customer_tier"])

	data, ok := result.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "gold", data["old_value"])
	assert.Equal(t, "platinum", data["new_value"])
}

func TestUpdateWellKnownAttribute(t *testing.T) {
	t.Parallel()

	action, err := updatefield.NewAction(map[string]any{
		"field_name":  "priority",
		"field_value": float64(5),
	})
	require.NoError(t, err)

	executionCtx := executionContext()

	_, err = action.Execute(context.Background(), executionCtx, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 5, executionCtx.Ticket.Priority)
}

func TestStringValuesAreTemplated(t *testing.T) {
	t.Parallel()

	action, err := updatefield.NewAction(map[string]any{
		"field_name":  "resolution_note",
		"field_value": "handled by {{user.name}}",
	})
	require.NoError(t, err)

	executionCtx := executionContext()

	_, err = action.Execute(context.Background(), executionCtx, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "handled by Greta", executionCtx.Ticket.Fields["resolution_note"])
}

func TestFieldNameRequired(t *testing.T) {
	t.Parallel()

	_, err := updatefield.NewAction(map[string]any{"field_value": "x"})
	assert.ErrorIs(t, err, updatefield.ErrFieldNameRequired)
}
