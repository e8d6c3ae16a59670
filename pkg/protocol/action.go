// Package protocol defines the contracts between the workflow engine and its
// pluggable action implementations.
package protocol

import (
	"context"
	"log/slog"

	"github.com/haldesk/haldesk/pkg/models"
)

// Action is one executable side effect attached to a transition. Execute
// returns a result rather than relying on the error for outcome reporting:
// the pipeline records failures and continues, so a failed notification never
// blocks a later field update.
type Action interface {
	Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (models.ActionResult, error)
}

// ActionFactory builds actions of one type from a configuration map.
type ActionFactory interface {
	Create(config map[string]any) (Action, error)
	ID() string
	Schema() map[string]any
}
