package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/haldesk/haldesk/pkg/models"
	"github.com/haldesk/haldesk/pkg/persistence"
)

// rowScanner lets scan helpers work on both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// DefinitionRepository stores workflow types, statuses, transitions and
// version snapshots. Name uniqueness and the single-initial rule are enforced
// by database constraints and surfaced through mapConstraintError; endpoint
// type membership is checked before a transition is written.
type DefinitionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

const workflowTypeColumns = `
	id
  , name
  , display_name
  , description
  , icon
  , color
  , is_active
  , is_default
  , created_by
  , created_at
  , updated_at
  , deleted_at
`

func (r *DefinitionRepository) SaveWorkflowType(ctx context.Context, workflowType *models.WorkflowType) error {
	now := time.Now().UTC()

	if workflowType.CreatedAt.IsZero() {
		workflowType.CreatedAt = now
	}

	workflowType.UpdatedAt = now

	if workflowType.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate workflow type ID: %w", err)
		}

		workflowType.ID = id.String()
	}

	displayNameJSON, err := json.Marshal(workflowType.DisplayName)
	if err != nil {
		return fmt.Errorf("failed to marshal display name: %w", err)
	}

	descriptionJSON, err := json.Marshal(workflowType.Description)
	if err != nil {
		return fmt.Errorf("failed to marshal description: %w", err)
	}

	query := `
		INSERT INTO workflow_types (id, name, display_name, description, icon, color,
			is_active, is_default, created_by, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			display_name = EXCLUDED.display_name,
			description = EXCLUDED.description,
			icon = EXCLUDED.icon,
			color = EXCLUDED.color,
			is_active = EXCLUDED.is_active,
			is_default = EXCLUDED.is_default,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at
	`

	_, err = r.db.ExecContext(ctx, query,
		workflowType.ID,
		workflowType.Name,
		displayNameJSON,
		descriptionJSON,
		workflowType.Icon,
		workflowType.Color,
		workflowType.IsActive,
		workflowType.IsDefault,
		workflowType.CreatedBy,
		workflowType.CreatedAt,
		workflowType.UpdatedAt,
		workflowType.DeletedAt,
	)
	if err != nil {
		return mapConstraintError("SaveWorkflowType", workflowType.Name, err)
	}

	return nil
}

func (r *DefinitionRepository) WorkflowTypeByID(ctx context.Context, id string) (*models.WorkflowType, error) {
	query := `SELECT ` + workflowTypeColumns + ` FROM workflow_types WHERE id = $1`

	workflowType, err := scanWorkflowType(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("WorkflowTypeByID", id, persistence.ErrWorkflowTypeNotFound)
		}

		return nil, fmt.Errorf("failed to scan workflow type: %w", err)
	}

	return workflowType, nil
}

func (r *DefinitionRepository) WorkflowTypeByName(ctx context.Context, name string) (*models.WorkflowType, error) {
	query := `SELECT ` + workflowTypeColumns + ` FROM workflow_types WHERE name = $1 AND deleted_at IS NULL`

	workflowType, err := scanWorkflowType(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("WorkflowTypeByName", name, persistence.ErrWorkflowTypeNotFound)
		}

		return nil, fmt.Errorf("failed to scan workflow type: %w", err)
	}

	return workflowType, nil
}

func (r *DefinitionRepository) WorkflowTypes(ctx context.Context) ([]*models.WorkflowType, error) {
	query := `SELECT ` + workflowTypeColumns + ` FROM workflow_types WHERE deleted_at IS NULL ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow types: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	var types []*models.WorkflowType

	for rows.Next() {
		workflowType, err := scanWorkflowType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow type: %w", err)
		}

		types = append(types, workflowType)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workflow types: %w", err)
	}

	return types, nil
}

// DeactivateWorkflowType soft deletes a type. Tickets and audit rows keep
// referencing it, so the row itself stays.
func (r *DefinitionRepository) DeactivateWorkflowType(ctx context.Context, id string) error {
	query := `
		UPDATE workflow_types
		SET is_active = FALSE, deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate workflow type: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}

	if affected == 0 {
		return persistence.NewStoreError("DeactivateWorkflowType", id, persistence.ErrWorkflowTypeNotFound)
	}

	return nil
}

func scanWorkflowType(row rowScanner) (*models.WorkflowType, error) {
	var (
		workflowType    models.WorkflowType
		displayNameJSON []byte
		descriptionJSON []byte
		deletedAt       sql.NullTime
	)

	err := row.Scan(
		&workflowType.ID,
		&workflowType.Name,
		&displayNameJSON,
		&descriptionJSON,
		&workflowType.Icon,
		&workflowType.Color,
		&workflowType.IsActive,
		&workflowType.IsDefault,
		&workflowType.CreatedBy,
		&workflowType.CreatedAt,
		&workflowType.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(displayNameJSON, &workflowType.DisplayName); err != nil {
		return nil, fmt.Errorf("failed to unmarshal display name: %w", err)
	}

	if len(descriptionJSON) > 0 {
		if err := json.Unmarshal(descriptionJSON, &workflowType.Description); err != nil {
			return nil, fmt.Errorf("failed to unmarshal description: %w", err)
		}
	}

	if deletedAt.Valid {
		workflowType.DeletedAt = &deletedAt.Time
	}

	return &workflowType, nil
}

const workflowStatusColumns = `
	id
  , workflow_type_id
  , name
  , display_name
  , category
  , is_initial
  , is_final
  , sort_order
  , sla_hours
  , response_hours
  , auto_assign
  , notify_on_enter
  , notify_on_exit
  , is_active
`

func (r *DefinitionRepository) SaveStatus(ctx context.Context, status *models.WorkflowStatus) error {
	if status.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate status ID: %w", err)
		}

		status.ID = id.String()
	}

	displayNameJSON, err := json.Marshal(status.DisplayName)
	if err != nil {
		return fmt.Errorf("failed to marshal display name: %w", err)
	}

	query := `
		INSERT INTO workflow_statuses (id, workflow_type_id, name, display_name, category,
			is_initial, is_final, sort_order, sla_hours, response_hours,
			auto_assign, notify_on_enter, notify_on_exit, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			display_name = EXCLUDED.display_name,
			category = EXCLUDED.category,
			is_initial = EXCLUDED.is_initial,
			is_final = EXCLUDED.is_final,
			sort_order = EXCLUDED.sort_order,
			sla_hours = EXCLUDED.sla_hours,
			response_hours = EXCLUDED.response_hours,
			auto_assign = EXCLUDED.auto_assign,
			notify_on_enter = EXCLUDED.notify_on_enter,
			notify_on_exit = EXCLUDED.notify_on_exit,
			is_active = EXCLUDED.is_active
	`

	_, err = r.db.ExecContext(ctx, query,
		status.ID,
		status.WorkflowTypeID,
		status.Name,
		displayNameJSON,
		status.Category,
		status.IsInitial,
		status.IsFinal,
		status.SortOrder,
		status.SLAHours,
		status.ResponseHours,
		status.AutoAssign,
		status.NotifyOnEnter,
		status.NotifyOnExit,
		status.IsActive,
	)
	if err != nil {
		return mapConstraintError("SaveStatus", status.Name, err)
	}

	return nil
}

func (r *DefinitionRepository) StatusByID(ctx context.Context, id string) (*models.WorkflowStatus, error) {
	query := `SELECT ` + workflowStatusColumns + ` FROM workflow_statuses WHERE id = $1`

	status, err := scanWorkflowStatus(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("StatusByID", id, persistence.ErrStatusNotFound)
		}

		return nil, fmt.Errorf("failed to scan status: %w", err)
	}

	return status, nil
}

func (r *DefinitionRepository) StatusesForType(ctx context.Context, workflowTypeID string) ([]*models.WorkflowStatus, error) {
	query := `
		SELECT ` + workflowStatusColumns + `
		FROM workflow_statuses
		WHERE workflow_type_id = $1
		ORDER BY sort_order ASC, name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, workflowTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query statuses: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	var statuses []*models.WorkflowStatus

	for rows.Next() {
		status, err := scanWorkflowStatus(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan status: %w", err)
		}

		statuses = append(statuses, status)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statuses: %w", err)
	}

	return statuses, nil
}

func (r *DefinitionRepository) InitialStatus(ctx context.Context, workflowTypeID string) (*models.WorkflowStatus, error) {
	query := `SELECT ` + workflowStatusColumns + ` FROM workflow_statuses WHERE workflow_type_id = $1 AND is_initial`

	status, err := scanWorkflowStatus(r.db.QueryRowContext(ctx, query, workflowTypeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("InitialStatus", workflowTypeID, persistence.ErrStatusNotFound)
		}

		return nil, fmt.Errorf("failed to scan initial status: %w", err)
	}

	return status, nil
}

func scanWorkflowStatus(row rowScanner) (*models.WorkflowStatus, error) {
	var (
		status          models.WorkflowStatus
		displayNameJSON []byte
		slaHours        sql.NullInt64
		responseHours   sql.NullInt64
	)

	err := row.Scan(
		&status.ID,
		&status.WorkflowTypeID,
		&status.Name,
		&displayNameJSON,
		&status.Category,
		&status.IsInitial,
		&status.IsFinal,
		&status.SortOrder,
		&slaHours,
		&responseHours,
		&status.AutoAssign,
		&status.NotifyOnEnter,
		&status.NotifyOnExit,
		&status.IsActive,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(displayNameJSON, &status.DisplayName); err != nil {
		return nil, fmt.Errorf("failed to unmarshal display name: %w", err)
	}

	if slaHours.Valid {
		hours := int(slaHours.Int64)
		status.SLAHours = &hours
	}

	if responseHours.Valid {
		hours := int(responseHours.Int64)
		status.ResponseHours = &hours
	}

	return &status, nil
}

const workflowTransitionColumns = `
	id
  , workflow_type_id
  , from_status_id
  , to_status_id
  , name
  , display_name
  , is_automatic
  , requires_comment
  , requires_assignment
  , allowed_roles
  , sort_order
  , is_active
`

// SaveTransition writes the transition and replaces its conditions and
// actions wholesale. Endpoint statuses must belong to the transition's
// workflow type.
func (r *DefinitionRepository) SaveTransition(ctx context.Context, transition *models.WorkflowTransition) error {
	if transition.FromStatusID != nil {
		if err := r.checkStatusMembership(ctx, "SaveTransition", transition.WorkflowTypeID, *transition.FromStatusID); err != nil {
			return err
		}
	}

	if err := r.checkStatusMembership(ctx, "SaveTransition", transition.WorkflowTypeID, transition.ToStatusID); err != nil {
		return err
	}

	if transition.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate transition ID: %w", err)
		}

		transition.ID = id.String()
	}

	displayNameJSON, err := json.Marshal(transition.DisplayName)
	if err != nil {
		return fmt.Errorf("failed to marshal display name: %w", err)
	}

	allowedRoles := transition.AllowedRoles
	if allowedRoles == nil {
		allowedRoles = []string{}
	}

	allowedRolesJSON, err := json.Marshal(allowedRoles)
	if err != nil {
		return fmt.Errorf("failed to marshal allowed roles: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false

	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	query := `
		INSERT INTO workflow_transitions (id, workflow_type_id, from_status_id, to_status_id,
			name, display_name, is_automatic, requires_comment, requires_assignment,
			allowed_roles, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			from_status_id = EXCLUDED.from_status_id,
			to_status_id = EXCLUDED.to_status_id,
			name = EXCLUDED.name,
			display_name = EXCLUDED.display_name,
			is_automatic = EXCLUDED.is_automatic,
			requires_comment = EXCLUDED.requires_comment,
			requires_assignment = EXCLUDED.requires_assignment,
			allowed_roles = EXCLUDED.allowed_roles,
			sort_order = EXCLUDED.sort_order,
			is_active = EXCLUDED.is_active
	`

	_, err = tx.ExecContext(ctx, query,
		transition.ID,
		transition.WorkflowTypeID,
		transition.FromStatusID,
		transition.ToStatusID,
		transition.Name,
		displayNameJSON,
		transition.IsAutomatic,
		transition.RequiresComment,
		transition.RequiresAssignment,
		allowedRolesJSON,
		transition.SortOrder,
		transition.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to save transition: %w", err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM workflow_conditions WHERE transition_id = $1`, transition.ID)
	if err != nil {
		return fmt.Errorf("failed to clear conditions: %w", err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM workflow_actions WHERE transition_id = $1`, transition.ID)
	if err != nil {
		return fmt.Errorf("failed to clear actions: %w", err)
	}

	for _, condition := range transition.Conditions {
		condition.TransitionID = transition.ID

		if err := insertCondition(ctx, tx, condition); err != nil {
			return err
		}
	}

	for _, action := range transition.Actions {
		action.TransitionID = transition.ID

		if err := insertAction(ctx, tx, action); err != nil {
			return err
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transition save: %w", err)
	}

	committed = true

	return nil
}

func (r *DefinitionRepository) checkStatusMembership(ctx context.Context, op, workflowTypeID, statusID string) error {
	var matches bool

	query := `SELECT EXISTS (SELECT 1 FROM workflow_statuses WHERE id = $1 AND workflow_type_id = $2)`

	err := r.db.QueryRowContext(ctx, query, statusID, workflowTypeID).Scan(&matches)
	if err != nil {
		return fmt.Errorf("failed to check status membership: %w", err)
	}

	if !matches {
		return persistence.NewStoreError(op, statusID, persistence.ErrStatusTypeMismatch)
	}

	return nil
}

func insertCondition(ctx context.Context, q querier, condition *models.WorkflowCondition) error {
	if condition.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate condition ID: %w", err)
		}

		condition.ID = id.String()
	}

	query := `
		INSERT INTO workflow_conditions (id, transition_id, condition_type, field_name,
			operator, expected_value, condition_group)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := q.ExecContext(ctx, query,
		condition.ID,
		condition.TransitionID,
		condition.ConditionType,
		condition.FieldName,
		condition.Operator,
		condition.ExpectedValue,
		condition.ConditionGroup,
	)
	if err != nil {
		return fmt.Errorf("failed to insert condition: %w", err)
	}

	return nil
}

func insertAction(ctx context.Context, q querier, action *models.WorkflowAction) error {
	if action.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate action ID: %w", err)
		}

		action.ID = id.String()
	}

	configJSON, err := json.Marshal(action.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal action config: %w", err)
	}

	query := `
		INSERT INTO workflow_actions (id, transition_id, action_type, config,
			execution_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = q.ExecContext(ctx, query,
		action.ID,
		action.TransitionID,
		action.ActionType,
		configJSON,
		action.ExecutionOrder,
		action.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to insert action: %w", err)
	}

	return nil
}

func (r *DefinitionRepository) TransitionByID(ctx context.Context, id string) (*models.WorkflowTransition, error) {
	query := `SELECT ` + workflowTransitionColumns + ` FROM workflow_transitions WHERE id = $1`

	transition, err := scanWorkflowTransition(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("TransitionByID", id, persistence.ErrTransitionNotFound)
		}

		return nil, fmt.Errorf("failed to scan transition: %w", err)
	}

	if err := r.loadTransitionChildren(ctx, transition); err != nil {
		return nil, err
	}

	return transition, nil
}

func (r *DefinitionRepository) TransitionsForType(ctx context.Context, workflowTypeID string) ([]*models.WorkflowTransition, error) {
	query := `
		SELECT ` + workflowTransitionColumns + `
		FROM workflow_transitions
		WHERE workflow_type_id = $1
		ORDER BY sort_order ASC, name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, workflowTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transitions: %w", err)
	}

	var transitions []*models.WorkflowTransition

	for rows.Next() {
		transition, err := scanWorkflowTransition(rows)
		if err != nil {
			closeRows(ctx, r.logger, rows)

			return nil, fmt.Errorf("failed to scan transition: %w", err)
		}

		transitions = append(transitions, transition)
	}

	if err := rows.Err(); err != nil {
		closeRows(ctx, r.logger, rows)

		return nil, fmt.Errorf("error iterating transitions: %w", err)
	}

	closeRows(ctx, r.logger, rows)

	for _, transition := range transitions {
		if err := r.loadTransitionChildren(ctx, transition); err != nil {
			return nil, err
		}
	}

	return transitions, nil
}

func scanWorkflowTransition(row rowScanner) (*models.WorkflowTransition, error) {
	var (
		transition       models.WorkflowTransition
		fromStatusID     sql.NullString
		displayNameJSON  []byte
		allowedRolesJSON []byte
	)

	err := row.Scan(
		&transition.ID,
		&transition.WorkflowTypeID,
		&fromStatusID,
		&transition.ToStatusID,
		&transition.Name,
		&displayNameJSON,
		&transition.IsAutomatic,
		&transition.RequiresComment,
		&transition.RequiresAssignment,
		&allowedRolesJSON,
		&transition.SortOrder,
		&transition.IsActive,
	)
	if err != nil {
		return nil, err
	}

	if fromStatusID.Valid {
		transition.FromStatusID = &fromStatusID.String
	}

	if err := json.Unmarshal(displayNameJSON, &transition.DisplayName); err != nil {
		return nil, fmt.Errorf("failed to unmarshal display name: %w", err)
	}

	if err := json.Unmarshal(allowedRolesJSON, &transition.AllowedRoles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal allowed roles: %w", err)
	}

	return &transition, nil
}

func (r *DefinitionRepository) loadTransitionChildren(ctx context.Context, transition *models.WorkflowTransition) error {
	conditions, err := r.conditionsForTransition(ctx, transition.ID)
	if err != nil {
		return err
	}

	actions, err := r.actionsForTransition(ctx, transition.ID)
	if err != nil {
		return err
	}

	transition.Conditions = conditions
	transition.Actions = actions

	return nil
}

func (r *DefinitionRepository) conditionsForTransition(ctx context.Context, transitionID string) ([]*models.WorkflowCondition, error) {
	query := `
		SELECT id, transition_id, condition_type, field_name, operator, expected_value, condition_group
		FROM workflow_conditions
		WHERE transition_id = $1
		ORDER BY condition_group ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, transitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conditions: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	var conditions []*models.WorkflowCondition

	for rows.Next() {
		var condition models.WorkflowCondition

		err := rows.Scan(
			&condition.ID,
			&condition.TransitionID,
			&condition.ConditionType,
			&condition.FieldName,
			&condition.Operator,
			&condition.ExpectedValue,
			&condition.ConditionGroup,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan condition: %w", err)
		}

		conditions = append(conditions, &condition)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conditions: %w", err)
	}

	return conditions, nil
}

func (r *DefinitionRepository) actionsForTransition(ctx context.Context, transitionID string) ([]*models.WorkflowAction, error) {
	query := `
		SELECT id, transition_id, action_type, config, execution_order, is_active
		FROM workflow_actions
		WHERE transition_id = $1
		ORDER BY execution_order ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, transitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	var actions []*models.WorkflowAction

	for rows.Next() {
		var (
			action     models.WorkflowAction
			configJSON []byte
		)

		err := rows.Scan(
			&action.ID,
			&action.TransitionID,
			&action.ActionType,
			&configJSON,
			&action.ExecutionOrder,
			&action.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}

		if err := json.Unmarshal(configJSON, &action.Config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal action config: %w", err)
		}

		actions = append(actions, &action)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating actions: %w", err)
	}

	return actions, nil
}

// SaveVersion inserts a snapshot. Versions are immutable, so there is no
// upsert path.
func (r *DefinitionRepository) SaveVersion(ctx context.Context, version *models.WorkflowVersion) error {
	if version.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate version ID: %w", err)
		}

		version.ID = id.String()
	}

	if version.CreatedAt.IsZero() {
		version.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO workflow_versions (id, workflow_type_id, version, configuration, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		version.ID,
		version.WorkflowTypeID,
		version.Version,
		[]byte(version.Configuration),
		version.CreatedBy,
		version.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save version: %w", err)
	}

	return nil
}

func (r *DefinitionRepository) VersionByID(ctx context.Context, id string) (*models.WorkflowVersion, error) {
	query := `
		SELECT id, workflow_type_id, version, configuration, created_by, created_at
		FROM workflow_versions
		WHERE id = $1
	`

	var (
		version       models.WorkflowVersion
		configuration []byte
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&version.ID,
		&version.WorkflowTypeID,
		&version.Version,
		&configuration,
		&version.CreatedBy,
		&version.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("VersionByID", id, persistence.ErrVersionNotFound)
		}

		return nil, fmt.Errorf("failed to scan version: %w", err)
	}

	version.Configuration = configuration

	return &version, nil
}

func (r *DefinitionRepository) VersionsForType(ctx context.Context, workflowTypeID string) ([]*models.WorkflowVersion, error) {
	query := `
		SELECT id, workflow_type_id, version, configuration, created_by, created_at
		FROM workflow_versions
		WHERE workflow_type_id = $1
		ORDER BY version ASC
	`

	rows, err := r.db.QueryContext(ctx, query, workflowTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	var versions []*models.WorkflowVersion

	for rows.Next() {
		var (
			version       models.WorkflowVersion
			configuration []byte
		)

		err := rows.Scan(
			&version.ID,
			&version.WorkflowTypeID,
			&version.Version,
			&configuration,
			&version.CreatedBy,
			&version.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}

		version.Configuration = configuration
		versions = append(versions, &version)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating versions: %w", err)
	}

	return versions, nil
}
