package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haldesk/haldesk/pkg/expr"
)

func evalData() map[string]any {
	return map[string]any{
		"ticket": map[string]any{
			"priority": float64(4),
			"subject":  "VPN keeps disconnecting",
			"fields": map[string]any{
				"customer_tier": "gold",
			},
		},
		"user": map[string]any{
			"role": "agent",
		},
	}
}

func TestEvalBool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   bool
	}{
		{"numeric comparison", "ticket.priority >= 3", true},
		{"numeric comparison false", "ticket.priority > 4", false},
		{"string equality", `user.role == "agent"`, true},
		{"inequality", `user.role != "client"`, true},
		{"and short-circuit", `ticket.priority >= 3 and user.role == "agent"`, true},
		{"or", `user.role == "admin" or user.role == "agent"`, true},
		{"not", `not (user.role == "client")`, true},
		{"grouping", `ticket.priority >= 5 or (user.role == "agent" and ticket.priority >= 3)`, true},
		{"contains", `ticket.subject contains "vpn"`, true},
		{"matches", `ticket.subject matches "^VPN"`, true},
		{"in list", `user.role in ["agent", "admin"]`, true},
		{"in list false", `user.role in ["client"]`, false},
		{"nested field", `ticket.fields.customer_tier == "gold"`, true},
		{"missing path is null", "ticket.fields.missing == null", true},
		{"boolean literal", "true and ticket.priority >= 1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			program, err := expr.Parse(tt.source)
			require.NoError(t, err)

			got, err := program.EvalBool(evalData())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalRawResult(t *testing.T) {
	t.Parallel()

	program, err := expr.Parse("ticket.priority")
	require.NoError(t, err)

	result, err := program.Eval(evalData())
	require.NoError(t, err)
	assert.InDelta(t, 4.0, result, 0.001)
}

func TestEvalBoolRejectsNonBoolean(t *testing.T) {
	t.Parallel()

	program, err := expr.Parse("ticket.priority")
	require.NoError(t, err)

	_, err = program.EvalBool(evalData())
	require.ErrorIs(t, err, expr.ErrNotBoolean)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"unterminated string", `user.role == "agent`},
		{"missing parenthesis", `(user.role == "agent"`},
		{"trailing garbage", `user.role == "agent" user`},
		{"unterminated list", `user.role in ["agent"`},
		{"lone equals", `user.role = "agent"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := expr.Parse(tt.source)
			assert.Error(t, err)
		})
	}
}

func TestComparisonTypeError(t *testing.T) {
	t.Parallel()

	program, err := expr.Parse(`user.role > 3`)
	require.NoError(t, err)

	_, err = program.EvalBool(evalData())
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	t.Parallel()

	value, ok := expr.Lookup(evalData(), "ticket.fields.customer_tier")
	require.True(t, ok)
	assert.Equal(t, "gold", value)

	_, ok = expr.Lookup(evalData(), "ticket.subject.deeper")
	assert.False(t, ok)
}
