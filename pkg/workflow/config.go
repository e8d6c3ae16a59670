package workflow

import (
	"context"
	"fmt"

	"github.com/haldesk/haldesk/pkg/models"
	"github.com/haldesk/haldesk/pkg/persistence"
)

// ConfigurationExport is the portable form of one workflow type's full
// definition graph, consumed by administrative tooling.
type ConfigurationExport struct {
	Type        *models.WorkflowType         `json:"type"`
	Statuses    []*models.WorkflowStatus     `json:"statuses"`
	Transitions []*models.WorkflowTransition `json:"transitions"`
}

// ExportConfiguration serializes a workflow type with all of its statuses and
// transitions, including conditions and actions.
func (o *Orchestrator) ExportConfiguration(ctx context.Context, workflowTypeID string) (*ConfigurationExport, error) {
	definitions := o.persistence.Definitions()

	workflowType, err := definitions.WorkflowTypeByID(ctx, workflowTypeID)
	if err != nil {
		if persistence.IsNotFound(err) {
			return nil, fmt.Errorf("%w: workflow type %s", ErrNotFound, workflowTypeID)
		}

		return nil, err
	}

	statuses, err := definitions.StatusesForType(ctx, workflowTypeID)
	if err != nil {
		return nil, err
	}

	transitions, err := definitions.TransitionsForType(ctx, workflowTypeID)
	if err != nil {
		return nil, err
	}

	// The export is detached from the live definitions: callers may edit it
	// freely before importing it elsewhere.
	export := &ConfigurationExport{
		Type:        cloneType(workflowType),
		Statuses:    make([]*models.WorkflowStatus, 0, len(statuses)),
		Transitions: make([]*models.WorkflowTransition, 0, len(transitions)),
	}

	for _, status := range statuses {
		export.Statuses = append(export.Statuses, cloneStatus(status))
	}

	for _, transition := range transitions {
		export.Transitions = append(export.Transitions, cloneTransition(transition))
	}

	return export, nil
}

func cloneType(workflowType *models.WorkflowType) *models.WorkflowType {
	clone := *workflowType
	clone.DisplayName = cloneStringMap(workflowType.DisplayName)
	clone.Description = cloneStringMap(workflowType.Description)

	return &clone
}

func cloneStatus(status *models.WorkflowStatus) *models.WorkflowStatus {
	clone := *status
	clone.DisplayName = cloneStringMap(status.DisplayName)

	if status.SLAHours != nil {
		hours := *status.SLAHours
		clone.SLAHours = &hours
	}

	if status.ResponseHours != nil {
		hours := *status.ResponseHours
		clone.ResponseHours = &hours
	}

	return &clone
}

func cloneTransition(transition *models.WorkflowTransition) *models.WorkflowTransition {
	clone := *transition
	clone.DisplayName = cloneStringMap(transition.DisplayName)

	if transition.FromStatusID != nil {
		fromID := *transition.FromStatusID
		clone.FromStatusID = &fromID
	}

	clone.AllowedRoles = append([]string(nil), transition.AllowedRoles...)

	clone.Conditions = make([]*models.WorkflowCondition, 0, len(transition.Conditions))
	for _, condition := range transition.Conditions {
		conditionClone := *condition
		clone.Conditions = append(clone.Conditions, &conditionClone)
	}

	clone.Actions = make([]*models.WorkflowAction, 0, len(transition.Actions))
	for _, action := range transition.Actions {
		actionClone := *action

		if action.Config != nil {
			actionClone.Config = make(map[string]any, len(action.Config))
			for key, value := range action.Config {
				actionClone.Config[key] = value
			}
		}

		clone.Actions = append(clone.Actions, &actionClone)
	}

	return &clone
}

func cloneStringMap(source map[string]string) map[string]string {
	if source == nil {
		return nil
	}

	clone := make(map[string]string, len(source))
	for key, value := range source {
		clone[key] = value
	}

	return clone
}

// ImportConfiguration recreates an exported definition graph as a brand new
// workflow type owned by the actor. All identifiers are reissued; status
// references inside transitions are remapped accordingly.
func (o *Orchestrator) ImportConfiguration(ctx context.Context, payload *ConfigurationExport, actorID string) (*models.WorkflowType, error) {
	if payload == nil || payload.Type == nil {
		return nil, fmt.Errorf("%w: import payload has no workflow type", ErrConfiguration)
	}

	definitions := o.persistence.Definitions()

	workflowType := *payload.Type
	workflowType.ID = ""
	workflowType.CreatedBy = actorID

	if err := workflowType.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	if err := definitions.SaveWorkflowType(ctx, &workflowType); err != nil {
		return nil, err
	}

	statusIDs := make(map[string]string, len(payload.Statuses))

	for _, exported := range payload.Statuses {
		status := *exported
		oldID := status.ID
		status.ID = ""
		status.WorkflowTypeID = workflowType.ID

		if err := definitions.SaveStatus(ctx, &status); err != nil {
			return nil, err
		}

		statusIDs[oldID] = status.ID
	}

	for _, exported := range payload.Transitions {
		transition := *exported
		transition.ID = ""
		transition.WorkflowTypeID = workflowType.ID

		if transition.FromStatusID != nil {
			mapped, ok := statusIDs[*transition.FromStatusID]
			if !ok {
				return nil, fmt.Errorf("%w: transition %s references unknown source status", ErrConfiguration, exported.Name)
			}

			transition.FromStatusID = &mapped
		}

		mapped, ok := statusIDs[transition.ToStatusID]
		if !ok {
			return nil, fmt.Errorf("%w: transition %s references unknown target status", ErrConfiguration, exported.Name)
		}

		transition.ToStatusID = mapped

		transition.Conditions = make([]*models.WorkflowCondition, 0, len(exported.Conditions))
		for _, exportedCondition := range exported.Conditions {
			condition := *exportedCondition
			condition.ID = ""
			condition.TransitionID = ""
			transition.Conditions = append(transition.Conditions, &condition)
		}

		transition.Actions = make([]*models.WorkflowAction, 0, len(exported.Actions))
		for _, exportedAction := range exported.Actions {
			action := *exportedAction
			action.ID = ""
			action.TransitionID = ""
			transition.Actions = append(transition.Actions, &action)
		}

		if err := definitions.SaveTransition(ctx, &transition); err != nil {
			return nil, err
		}
	}

	o.logger.InfoContext(ctx, "configuration imported",
		"workflow_type_id", workflowType.ID,
		"statuses", len(payload.Statuses),
		"transitions", len(payload.Transitions),
	)

	return &workflowType, nil
}
