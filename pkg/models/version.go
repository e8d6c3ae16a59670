package models

import (
	"encoding/json"
	"time"
)

// WorkflowVersion is an immutable snapshot of a workflow type's full
// definition graph, serialized into Configuration. Restoring a version
// rebuilds statuses and transitions from the blob.
type WorkflowVersion struct {
	ID             string          `json:"id"`
	WorkflowTypeID string          `json:"workflow_type_id"`
	Version        int             `json:"version"`
	Configuration  json.RawMessage `json:"configuration"`
	CreatedBy      string          `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
}
