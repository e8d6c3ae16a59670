package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haldesk/haldesk/pkg/models"
)

func TestWorkflowTypeValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		typeName    string
		displayName map[string]string
		wantErr     error
	}{
		{"valid", "incident_report", map[string]string{"en": "Incident Report"}, nil},
		{"uppercase rejected", "Incident", map[string]string{"en": "Incident"}, models.ErrTypeNameInvalid},
		{"leading digit rejected", "1incident", map[string]string{"en": "Incident"}, models.ErrTypeNameInvalid},
		{"hyphen rejected", "incident-report", map[string]string{"en": "Incident"}, models.ErrTypeNameInvalid},
		{"empty name rejected", "", map[string]string{"en": "Incident"}, models.ErrTypeNameInvalid},
		{"missing display name", "incident", nil, models.ErrDisplayNameMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			workflowType := &models.WorkflowType{Name: tt.typeName, DisplayName: tt.displayName}

			err := workflowType.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestWorkflowTypeLabel(t *testing.T) {
	t.Parallel()

	workflowType := &models.WorkflowType{
		Name:        "incident",
		DisplayName: map[string]string{"en": "Incident", "de": "Vorfall"},
	}

	assert.Equal(t, "Vorfall", workflowType.Label("de"))
	assert.Contains(t, []string{"Incident", "Vorfall"}, workflowType.Label("fr"))

	workflowType.DisplayName = nil
	assert.Equal(t, "incident", workflowType.Label("en"))
}

func TestStatusCategoryValid(t *testing.T) {
	t.Parallel()

	for _, category := range []models.StatusCategory{
		models.CategoryOpen, models.CategoryActive, models.CategoryPending,
		models.CategoryResolved, models.CategoryClosed,
	} {
		assert.True(t, category.Valid(), string(category))
	}

	assert.False(t, models.StatusCategory("archived").Valid())
}

func TestWorkflowStatusValidate(t *testing.T) {
	t.Parallel()

	status := &models.WorkflowStatus{
		WorkflowTypeID: "type-1",
		Name:           "open",
		DisplayName:    map[string]string{"en": "Open"},
		Category:       models.CategoryOpen,
	}
	require.NoError(t, status.Validate())

	status.Category = "bogus"
	assert.ErrorIs(t, status.Validate(), models.ErrStatusCategoryInvalid)

	status.Category = models.CategoryOpen
	status.DisplayName = map[string]string{}
	assert.ErrorIs(t, status.Validate(), models.ErrDisplayNameMissing)
}

func TestWorkflowTransitionValidate(t *testing.T) {
	t.Parallel()

	transition := &models.WorkflowTransition{
		WorkflowTypeID: "type-1",
		ToStatusID:     "status-done",
		Name:           "resolve",
		DisplayName:    map[string]string{"en": "Resolve"},
	}
	require.NoError(t, transition.Validate())

	transition.ToStatusID = ""
	assert.ErrorIs(t, transition.Validate(), models.ErrTransitionTargetMissing)

	transition.ToStatusID = "status-done"
	transition.Conditions = []*models.WorkflowCondition{
		{ConditionType: models.ConditionField},
	}
	assert.ErrorIs(t, transition.Validate(), models.ErrConditionFieldRequired)

	transition.Conditions = nil
	transition.Actions = []*models.WorkflowAction{
		{ActionType: models.ActionWebhook, Config: map[string]any{}},
	}
	assert.True(t, models.IsConfigError(transition.Validate()))
}

func TestTransitionRoleAllowed(t *testing.T) {
	t.Parallel()

	transition := &models.WorkflowTransition{}
	assert.True(t, transition.RoleAllowed("client"), "empty allowed set is unrestricted")

	transition.AllowedRoles = []string{"agent", "admin"}
	assert.True(t, transition.RoleAllowed("agent"))
	assert.False(t, transition.RoleAllowed("client"))
}

func TestWorkflowActionValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		actionType models.ActionType
		config     map[string]any
		valid      bool
	}{
		{"assign with assignee", models.ActionAssign, map[string]any{"assignee_id": "agent-1"}, true},
		{"assign with rule", models.ActionAssign, map[string]any{"rule": "round_robin"}, true},
		{"assign missing both", models.ActionAssign, map[string]any{}, false},
		{"notify with recipients", models.ActionNotify, map[string]any{"recipients": []any{"assignee"}}, true},
		{"notify empty recipients", models.ActionNotify, map[string]any{"recipients": []any{}}, false},
		{"update_field complete", models.ActionUpdateField, map[string]any{"field_name": "priority", "field_value": 5}, true},
		{"update_field missing value", models.ActionUpdateField, map[string]any{"field_name": "priority"}, false},
		{"webhook with url", models.ActionWebhook, map[string]any{"url": "https://example.com/hook"}, true},
		{"webhook missing url", models.ActionWebhook, map[string]any{}, false},
		{"create_comment with content", models.ActionCreateComment, map[string]any{"content": "done"}, true},
		{"escalate needs nothing", models.ActionEscalate, map[string]any{}, true},
		{"update_sla with hours", models.ActionUpdateSLA, map[string]any{"sla_hours": 4}, true},
		{"update_sla mark breached", models.ActionUpdateSLA, map[string]any{"mark_breached": true}, true},
		{"update_sla missing both", models.ActionUpdateSLA, map[string]any{}, false},
		{"log_event with name", models.ActionLogEvent, map[string]any{"event_name": "ticket.resolved"}, true},
		{"script with expression", models.ActionScript, map[string]any{"expression": "ticket.priority >= 3"}, true},
		{"send_email complete", models.ActionSendEmail, map[string]any{"to": []any{"assignee"}, "subject": "hi"}, true},
		{"send_email missing subject", models.ActionSendEmail, map[string]any{"to": []any{"assignee"}}, false},
		{"send_telegram with message", models.ActionSendTelegram, map[string]any{"message": "ping"}, true},
		{"unknown type", models.ActionType("teleport"), map[string]any{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			action := &models.WorkflowAction{ActionType: tt.actionType, Config: tt.config}

			err := action.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestConditionParsedExpectedValue(t *testing.T) {
	t.Parallel()

	condition := &models.WorkflowCondition{ExpectedValue: "5"}
	assert.Equal(t, float64(5), condition.ParsedExpectedValue())

	condition.ExpectedValue = `["a", "b"]`
	assert.Equal(t, []any{"a", "b"}, condition.ParsedExpectedValue())

	condition.ExpectedValue = "gold"
	assert.Equal(t, "gold", condition.ParsedExpectedValue(), "invalid JSON falls back to the raw literal")
}

func TestTicketSnapshot(t *testing.T) {
	t.Parallel()

	assignee := "agent-1"
	due := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	ticket := &models.Ticket{
		ID:              "ticket-1",
		Subject:         "Printer jam",
		Priority:        3,
		CurrentStatusID: "status-open",
		AssignedToID:    &assignee,
		SLADueAt:        &due,
		Fields:          map[string]any{"customer_tier": "gold"},
	}

	snapshot := ticket.Snapshot()
	assert.Equal(t, "ticket-1", snapshot["id"])
	assert.Equal(t, 3, snapshot["priority"])
	assert.Equal(t, "agent-1", snapshot["assigned_to_id"])
	assert.Equal(t, due, snapshot["sla_due_at"])
	assert.Equal(t, "gold", snapshot["customer_tier"])

	ticket.AssignedToID = nil
	_, present := ticket.Snapshot()["assigned_to_id"]
	assert.False(t, present)
}

func TestTicketSetField(t *testing.T) {
	t.Parallel()

	ticket := &models.Ticket{}

	ticket.SetField("subject", "New subject")
	assert.Equal(t, "New subject", ticket.Subject)

	ticket.SetField("priority", float64(5))
	assert.Equal(t, 5, ticket.Priority)

	ticket.SetField("assigned_to_id", "agent-2")
	require.NotNil(t, ticket.AssignedToID)
	assert.Equal(t, "agent-2", *ticket.AssignedToID)

	ticket.SetField("customer_tier", "silver")
	assert.Equal(t, "silver", ticket.Fields["customer_tier"])

	// A type mismatch on a well-known attribute is ignored.
	ticket.SetField("priority", "not a number")
	assert.Equal(t, 5, ticket.Priority)
}

func TestUserSnapshotNilSafe(t *testing.T) {
	t.Parallel()

	var user *models.User

	assert.Empty(t, user.Snapshot())

	user = &models.User{ID: "agent-1", Name: "Greta", Role: "agent", IsActive: true}
	snapshot := user.Snapshot()
	assert.Equal(t, "Greta", snapshot["name"])
	assert.Equal(t, true, snapshot["is_active"])
}
