package assign_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haldesk/haldesk/pkg/actions/assign"
	"github.com/haldesk/haldesk/pkg/models"
	"github.com/haldesk/haldesk/pkg/persistence/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func executionContext() models.ExecutionContext {
	return models.ExecutionContext{
		Ticket:  &models.Ticket{ID: "ticket-1", CreatedBy: "client-1", CurrentStatusID: "status-open"},
		User:    &models.User{ID: "agent-2", Role: "agent"},
		Effects: &models.EffectLog{},
	}
}

func TestExplicitAssignee(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()

	action, err := assign.NewAction(map[string]any{"assignee_id": "agent-9"}, store.Tickets(), store.Users())
	require.NoError(t, err)

	executionCtx := executionContext()

	result, err := action.Execute(context.Background(), executionCtx, testLogger())
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.NotNil(t, executionCtx.Ticket.AssignedToID)
	assert.Equal(t, "agent-9", *executionCtx.Ticket.AssignedToID)
}

func TestRoundRobinPicksOldestLogin(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()
	earlier := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	later := time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)

	store.PutUser(&models.User{ID: "agent-busy", Role: "agent", IsActive: true, LastLoginAt: &later})
	store.PutUser(&models.User{ID: "agent-idle", Role: "agent", IsActive: true, LastLoginAt: &earlier})

	action, err := assign.NewAction(map[string]any{"rule": assign.RuleRoundRobin}, store.Tickets(), store.Users())
	require.NoError(t, err)

	executionCtx := executionContext()

	result, err := action.Execute(context.Background(), executionCtx, testLogger())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "agent-idle", *executionCtx.Ticket.AssignedToID)
}

func TestLeastAssignedPicksLightestLoad(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()
	ctx := context.Background()

	store.PutUser(&models.User{ID: "agent-1", Role: "agent", IsActive: true})
	store.PutUser(&models.User{ID: "agent-2", Role: "agent", IsActive: true})

	busy := "agent-1"
	for range 2 {
		require.NoError(t, store.Tickets().SaveTicket(ctx, &models.Ticket{
			Subject:         "load",
			CurrentStatusID: "status-open",
			AssignedToID:    &busy,
		}))
	}

	action, err := assign.NewAction(map[string]any{"rule": assign.RuleLeastAssigned}, store.Tickets(), store.Users())
	require.NoError(t, err)

	executionCtx := executionContext()

	_, err = action.Execute(ctx, executionCtx, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "agent-2", *executionCtx.Ticket.AssignedToID)
}

func TestCreatorAndCurrentUserRules(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()

	creator, err := assign.NewAction(map[string]any{"rule": assign.RuleCreator}, store.Tickets(), store.Users())
	require.NoError(t, err)

	executionCtx := executionContext()
	_, err = creator.Execute(context.Background(), executionCtx, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "client-1", *executionCtx.Ticket.AssignedToID)

	current, err := assign.NewAction(map[string]any{"rule": assign.RuleCurrentUser}, store.Tickets(), store.Users())
	require.NoError(t, err)

	executionCtx = executionContext()
	_, err = current.Execute(context.Background(), executionCtx, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "agent-2", *executionCtx.Ticket.AssignedToID)

	// System-triggered transitions have no acting user.
	executionCtx = executionContext()
	executionCtx.User = nil

	result, err := current.Execute(context.Background(), executionCtx, testLogger())
	require.ErrorIs(t, err, assign.ErrNoTarget)
	assert.False(t, result.Success)
}

func TestUnknownRule(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()

	action, err := assign.NewAction(map[string]any{"rule": "alphabetical"}, store.Tickets(), store.Users())
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), executionContext(), testLogger())
	assert.ErrorIs(t, err, assign.ErrUnknownRule)
}

func TestConfigRequiresTarget(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()

	_, err := assign.NewAction(map[string]any{}, store.Tickets(), store.Users())
	assert.ErrorIs(t, err, assign.ErrNoTarget)
}

func TestRoundRobinWithoutAgents(t *testing.T) {
	t.Parallel()

	store := memory.NewPersistence()

	action, err := assign.NewAction(map[string]any{"rule": assign.RuleRoundRobin}, store.Tickets(), store.Users())
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), executionContext(), testLogger())
	assert.ErrorIs(t, err, assign.ErrNoTarget)
}
