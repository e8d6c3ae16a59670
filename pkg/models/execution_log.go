package models

import "time"

// ActionResult is the outcome of one action in a transition's pipeline.
// Failures are recorded here instead of raised, so that a later action still
// runs after an earlier one fails.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// WorkflowExecutionLog is one append-only row per transition attempt, success
// or failure. Rows denormalize human-readable labels into Metadata at write
// time so the audit trail survives later definition deletes.
type WorkflowExecutionLog struct {
	ID               string                  `json:"id"`
	TicketID         string                  `json:"ticket_id"`
	WorkflowTypeID   string                  `json:"workflow_type_id"`
	FromStatusID     *string                 `json:"from_status_id,omitempty"`
	ToStatusID       *string                 `json:"to_status_id,omitempty"`
	TransitionID     *string                 `json:"transition_id,omitempty"`
	UserID           *string                 `json:"user_id,omitempty"`
	ExecutedAt       time.Time               `json:"executed_at"`
	DurationMS       int64                   `json:"duration_ms"`
	ConditionResults map[string]bool         `json:"condition_results,omitempty"`
	ActionResults    map[string]ActionResult `json:"action_results,omitempty"`
	ErrorMessage     *string                 `json:"error_message,omitempty"`
	Metadata         map[string]any          `json:"metadata,omitempty"`
}

// Succeeded reports whether the attempt committed its status mutation.
func (l *WorkflowExecutionLog) Succeeded() bool {
	return l.ErrorMessage == nil
}
