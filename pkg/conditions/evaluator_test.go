package conditions_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haldesk/haldesk/pkg/conditions"
	"github.com/haldesk/haldesk/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func executionContext() *models.ExecutionContext {
	assignee := "agent-1"

	return &models.ExecutionContext{
		Ticket: &models.Ticket{
			ID:              "ticket-1",
			Subject:         "VPN keeps disconnecting",
			Priority:        4,
			CurrentStatusID: "status-open",
			AssignedToID:    &assignee,
			Fields:          map[string]any{"customer_tier": "gold"},
			CreatedAt:       time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC),
		},
		User:    &models.User{ID: "agent-1", Name: "Greta", Role: "agent"},
		Context: map[string]any{"channel": "phone"},
	}
}

func TestEvaluateFieldConditions(t *testing.T) {
	t.Parallel()

	evaluator := conditions.NewEvaluator(testLogger())
	ctx := context.Background()

	tests := []struct {
		name      string
		fieldName string
		operator  models.ConditionOperator
		expected  string
		want      bool
	}{
		{"equals string", "customer_tier", models.OpEquals, `"gold"`, true},
		{"equals raw literal fallback", "customer_tier", models.OpEquals, "gold", true},
		{"not equals", "customer_tier", models.OpNotEquals, `"silver"`, true},
		{"numeric greater or equal", "priority", models.OpGreaterOrEqual, "3", true},
		{"numeric less than fails", "priority", models.OpLessThan, "3", false},
		{"between", "priority", models.OpBetween, "[3, 5]", true},
		{"between outside", "priority", models.OpBetween, "[5, 9]", false},
		{"contains", "subject", models.OpContains, `"vpn"`, true},
		{"starts with", "subject", models.OpStartsWith, `"vpn"`, true},
		{"ends with", "subject", models.OpEndsWith, `"disconnecting"`, true},
		{"in list", "customer_tier", models.OpIn, `["gold", "platinum"]`, true},
		{"not in list", "customer_tier", models.OpNotIn, `["silver"]`, true},
		{"regex", "subject", models.OpRegex, `"^VPN"`, true},
		{"is empty on missing field", "nonexistent", models.OpIsEmpty, "", true},
		{"is not empty", "customer_tier", models.OpIsNotEmpty, "", true},
		{"context fallback", "channel", models.OpEquals, `"phone"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			condition := &models.WorkflowCondition{
				ConditionType: models.ConditionField,
				FieldName:     tt.fieldName,
				Operator:      tt.operator,
				ExpectedValue: tt.expected,
			}

			assert.Equal(t, tt.want, evaluator.Evaluate(ctx, condition, executionContext()))
		})
	}
}

func TestEvaluateRoleCondition(t *testing.T) {
	t.Parallel()

	evaluator := conditions.NewEvaluator(testLogger())
	ctx := context.Background()

	equals := &models.WorkflowCondition{
		ConditionType: models.ConditionRole,
		Operator:      models.OpEquals,
		ExpectedValue: `"agent"`,
	}
	assert.True(t, evaluator.Evaluate(ctx, equals, executionContext()))

	inList := &models.WorkflowCondition{
		ConditionType: models.ConditionRole,
		Operator:      models.OpIn,
		ExpectedValue: `["agent", "admin"]`,
	}
	assert.True(t, evaluator.Evaluate(ctx, inList, executionContext()))

	// No acting user fails closed.
	executionCtx := executionContext()
	executionCtx.User = nil
	assert.False(t, evaluator.Evaluate(ctx, equals, executionCtx))
}

func TestEvaluateTimeCondition(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC)
	evaluator := conditions.NewEvaluatorAt(testLogger(), func() time.Time { return now })
	ctx := context.Background()

	// Ticket was created 60 minutes before "now".
	condition := &models.WorkflowCondition{
		ConditionType: models.ConditionTime,
		Operator:      models.OpGreaterOrEqual,
		ExpectedValue: "30",
	}
	assert.True(t, evaluator.Evaluate(ctx, condition, executionContext()))

	condition.ExpectedValue = "120"
	assert.False(t, evaluator.Evaluate(ctx, condition, executionContext()))
}

func TestEvaluateSLACondition(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC)
	evaluator := conditions.NewEvaluatorAt(testLogger(), func() time.Time { return now })
	ctx := context.Background()

	condition := &models.WorkflowCondition{
		ConditionType: models.ConditionSLA,
		ExpectedValue: "true",
	}

	executionCtx := executionContext()
	assert.False(t, evaluator.Evaluate(ctx, condition, executionCtx))

	overdue := now.Add(-time.Hour)
	executionCtx.Ticket.SLADueAt = &overdue
	assert.True(t, evaluator.Evaluate(ctx, condition, executionCtx))

	executionCtx.Ticket.SLADueAt = nil
	executionCtx.Ticket.SLABreached = true
	assert.True(t, evaluator.Evaluate(ctx, condition, executionCtx))
}

func TestEvaluateAssignmentCondition(t *testing.T) {
	t.Parallel()

	evaluator := conditions.NewEvaluator(testLogger())
	ctx := context.Background()

	isNotEmpty := &models.WorkflowCondition{
		ConditionType: models.ConditionAssignment,
		Operator:      models.OpIsNotEmpty,
	}
	assert.True(t, evaluator.Evaluate(ctx, isNotEmpty, executionContext()))

	executionCtx := executionContext()
	executionCtx.Ticket.AssignedToID = nil

	isEmpty := &models.WorkflowCondition{
		ConditionType: models.ConditionAssignment,
		Operator:      models.OpIsEmpty,
	}
	assert.True(t, evaluator.Evaluate(ctx, isEmpty, executionCtx))

	equals := &models.WorkflowCondition{
		ConditionType: models.ConditionAssignment,
		Operator:      models.OpEquals,
		ExpectedValue: "agent-1",
	}
	assert.True(t, evaluator.Evaluate(ctx, equals, executionContext()))
}

func TestEvaluateCustomCondition(t *testing.T) {
	t.Parallel()

	evaluator := conditions.NewEvaluator(testLogger())
	ctx := context.Background()

	condition := &models.WorkflowCondition{
		ConditionType: models.ConditionCustom,
		ExpectedValue: `ticket.priority >= 3 and user.role == "agent"`,
	}
	assert.True(t, evaluator.Evaluate(ctx, condition, executionContext()))

	// A broken expression fails closed instead of erroring out.
	condition.ExpectedValue = `ticket.priority >=`
	assert.False(t, evaluator.Evaluate(ctx, condition, executionContext()))
}

func TestEvaluateGroups(t *testing.T) {
	t.Parallel()

	evaluator := conditions.NewEvaluator(testLogger())
	ctx := context.Background()

	conds := []*models.WorkflowCondition{
		{ID: "c1", ConditionType: models.ConditionField, FieldName: "priority", Operator: models.OpGreaterOrEqual, ExpectedValue: "5", ConditionGroup: 0},
		{ID: "c2", ConditionType: models.ConditionField, FieldName: "priority", Operator: models.OpLessOrEqual, ExpectedValue: "9", ConditionGroup: 0},
		{ID: "c3", ConditionType: models.ConditionRole, Operator: models.OpIn, ExpectedValue: `["agent"]`, ConditionGroup: 1},
	}

	// Group 0 passes via c2 (OR within group), group 1 passes via c3.
	result := evaluator.EvaluateGroups(ctx, conds, executionContext())
	assert.True(t, result.Passed)
	assert.Empty(t, result.FailedGroups)
	assert.False(t, result.Results["c1"])
	assert.True(t, result.Results["c2"])
	assert.True(t, result.Results["c3"])

	// Making every group-1 condition fail fails the whole set.
	executionCtx := executionContext()
	executionCtx.User.Role = "client"

	result = evaluator.EvaluateGroups(ctx, conds, executionCtx)
	assert.False(t, result.Passed)
	assert.Equal(t, []int{1}, result.FailedGroups)
}

func TestEvaluateGroupsEmptySetPasses(t *testing.T) {
	t.Parallel()

	evaluator := conditions.NewEvaluator(testLogger())

	result := evaluator.EvaluateGroups(context.Background(), nil, executionContext())
	require.True(t, result.Passed)
	assert.Empty(t, result.Results)
}

func TestEvaluateUnknownTypeFailsClosed(t *testing.T) {
	t.Parallel()

	evaluator := conditions.NewEvaluator(testLogger())

	condition := &models.WorkflowCondition{ConditionType: "mystery"}
	assert.False(t, evaluator.Evaluate(context.Background(), condition, executionContext()))
}
