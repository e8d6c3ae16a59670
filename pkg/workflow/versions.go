package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/haldesk/haldesk/pkg/models"
	"github.com/haldesk/haldesk/pkg/persistence"
)

// SnapshotVersion serializes the type's current definition graph into a new
// immutable WorkflowVersion. Version numbers increase monotonically per type.
func (o *Orchestrator) SnapshotVersion(ctx context.Context, workflowTypeID, actorID string) (*models.WorkflowVersion, error) {
	export, err := o.ExportConfiguration(ctx, workflowTypeID)
	if err != nil {
		return nil, err
	}

	configuration, err := json.Marshal(export)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize configuration: %w", err)
	}

	existing, err := o.persistence.Definitions().VersionsForType(ctx, workflowTypeID)
	if err != nil {
		return nil, err
	}

	next := 1
	for _, version := range existing {
		if version.Version >= next {
			next = version.Version + 1
		}
	}

	version := &models.WorkflowVersion{
		WorkflowTypeID: workflowTypeID,
		Version:        next,
		Configuration:  configuration,
		CreatedBy:      actorID,
	}

	if err := o.persistence.Definitions().SaveVersion(ctx, version); err != nil {
		return nil, err
	}

	o.logger.InfoContext(ctx, "configuration snapshot created",
		"workflow_type_id", workflowTypeID,
		"version", next,
	)

	return version, nil
}

// RestoreVersion writes a snapshot's statuses and transitions back over the
// live definitions of its workflow type. Definitions created after the
// snapshot keep existing; restore upserts, it does not prune.
func (o *Orchestrator) RestoreVersion(ctx context.Context, versionID, actorID string) (*models.WorkflowType, error) {
	definitions := o.persistence.Definitions()

	version, err := definitions.VersionByID(ctx, versionID)
	if err != nil {
		if persistence.IsNotFound(err) {
			return nil, fmt.Errorf("%w: version %s", ErrNotFound, versionID)
		}

		return nil, err
	}

	var export ConfigurationExport
	if err := json.Unmarshal(version.Configuration, &export); err != nil {
		return nil, fmt.Errorf("%w: corrupt version configuration: %w", ErrConfiguration, err)
	}

	if export.Type == nil || export.Type.ID != version.WorkflowTypeID {
		return nil, fmt.Errorf("%w: version does not match its workflow type", ErrConfiguration)
	}

	if err := definitions.SaveWorkflowType(ctx, export.Type); err != nil {
		return nil, err
	}

	for _, status := range export.Statuses {
		if err := definitions.SaveStatus(ctx, status); err != nil {
			return nil, err
		}
	}

	for _, transition := range export.Transitions {
		if err := definitions.SaveTransition(ctx, transition); err != nil {
			return nil, err
		}
	}

	o.logger.InfoContext(ctx, "configuration restored",
		"workflow_type_id", version.WorkflowTypeID,
		"version", version.Version,
		"actor_id", actorID,
	)

	return export.Type, nil
}
