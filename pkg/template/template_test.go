package template_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haldesk/haldesk/pkg/models"
	"github.com/haldesk/haldesk/pkg/template"
)

func testExecutionContext() *models.ExecutionContext {
	return &models.ExecutionContext{
		Ticket: &models.Ticket{
			ID:       "ticket-1",
			Subject:  "Printer is on fire",
			Priority: 4,
			Fields:   map[string]any{"customer_tier": "gold"},
		},
		User:    &models.User{ID: "agent-1", Name: "Greta", Role: "agent"},
		Context: map[string]any{"reason": "hardware"},
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ticket attribute", "subject: {{ticket.subject}}", "subject: Printer is on fire"},
		{"ticket custom field", "tier={{ticket.customer_tier}}", "tier=gold"},
		{"numeric field", "p{{ticket.priority}}", "p4"},
		{"user attribute", "by {{user.name}} ({{user.role}})", "by Greta (agent)"},
		{"context value", "because {{context.reason}}", "because hardware"},
		{"whitespace inside braces", "{{ ticket.subject }}", "Printer is on fire"},
		{"unresolved path stays visible", "{{ticket.nope}}", "{{ticket.nope}}"},
		{"no placeholders", "plain text", "plain text"},
		{"multiple placeholders", "{{ticket.id}}/{{user.id}}", "ticket-1/agent-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, template.Render(tt.input, testExecutionContext()))
		})
	}
}

func TestRenderNow(t *testing.T) {
	t.Parallel()

	rendered := template.Render("at {{now}}", testExecutionContext())
	require.NotEqual(t, "at {{now}}", rendered)

	_, err := time.Parse(time.RFC3339, rendered[len("at "):])
	assert.NoError(t, err)
}

func TestRenderWithNilUser(t *testing.T) {
	t.Parallel()

	executionCtx := testExecutionContext()
	executionCtx.User = nil

	// A nil user resolves to an empty snapshot, not a panic.
	assert.Equal(t, "{{user.name}}", template.Render("{{user.name}}", executionCtx))
}
