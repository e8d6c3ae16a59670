package registry

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/haldesk/haldesk/pkg/models"
	"github.com/haldesk/haldesk/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAction struct {
	config map[string]any
}

func (a *stubAction) Execute(context.Context, models.ExecutionContext, *slog.Logger) (models.ActionResult, error) {
	return models.ActionResult{Success: true}, nil
}

type stubFactory struct{}

func (f *stubFactory) Create(config map[string]any) (protocol.Action, error) {
	return &stubAction{config: config}, nil
}

func (f *stubFactory) ID() string { return "stub" }

func (f *stubFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"target": map[string]any{"type": "string"},
		},
		"required":             []string{"target"},
		"additionalProperties": false,
	}
}

func newTestRegistry() *Registry {
	reg := NewRegistry(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
	reg.RegisterAction(&stubFactory{})

	return reg
}

func TestRegistryCreateAction(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()

	action, err := reg.CreateAction("stub", "action-1", map[string]any{"target": "agent"})
	require.NoError(t, err)

	stub, ok := action.(*stubAction)
	require.True(t, ok)
	assert.Equal(t, "action-1", stub.config["id"])
	assert.Equal(t, "agent", stub.config["target"])
}

func TestRegistryCreateActionUnknownType(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()

	_, err := reg.CreateAction("missing", "action-1", map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestRegistryCreateActionInvalidConfig(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()

	_, err := reg.CreateAction("stub", "action-1", map[string]any{"unexpected": true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestRegistryValidateAction(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()

	require.NoError(t, reg.ValidateAction("stub", map[string]any{"target": "agent"}))
	require.Error(t, reg.ValidateAction("stub", map[string]any{}))
}

func TestRegistryAvailableActions(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()

	assert.Equal(t, []string{"stub"}, reg.AvailableActions())

	schema, err := reg.ActionSchema("stub")
	require.NoError(t, err)
	assert.Equal(t, "object", schema["type"])
}
