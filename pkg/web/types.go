// Package web provides the HTTP surface of the workflow engine: transition
// execution, history and statistics queries, and definition administration.
package web

import "github.com/haldesk/haldesk/pkg/workflow"

// ExecuteTransitionRequest is the request body for executing a transition.
type ExecuteTransitionRequest struct {
	UserID     string         `json:"user_id"               validate:"required"`
	Comment    string         `json:"comment,omitempty"`
	AssigneeID string         `json:"assignee_id,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

// ImportConfigurationRequest is the request body for importing an exported
// workflow definition graph as a new workflow type.
type ImportConfigurationRequest struct {
	ActorID       string                        `json:"actor_id"      validate:"required"`
	Configuration *workflow.ConfigurationExport `json:"configuration" validate:"required"`
}

// SnapshotVersionRequest is the request body for snapshotting a workflow
// type's current definition graph.
type SnapshotVersionRequest struct {
	ActorID string `json:"actor_id" validate:"required"`
}

// RestoreVersionRequest is the request body for restoring a snapshot.
type RestoreVersionRequest struct {
	ActorID string `json:"actor_id" validate:"required"`
}
