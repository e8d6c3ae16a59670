package models

import "errors"

// ErrTransitionTargetMissing is returned when a transition has no target status.
var ErrTransitionTargetMissing = errors.New("transition requires a target status")

// WorkflowTransition is a directed edge between two statuses of one workflow
// type. A nil FromStatusID means the transition may fire from any status. A
// transition owns the guard conditions and side-effecting actions attached to
// it.
type WorkflowTransition struct {
	ID                 string               `json:"id"`
	WorkflowTypeID     string               `json:"workflow_type_id" validate:"required"`
	FromStatusID       *string              `json:"from_status_id,omitempty"`
	ToStatusID         string               `json:"to_status_id"     validate:"required"`
	Name               string               `json:"name"             validate:"required,min=2"`
	DisplayName        map[string]string    `json:"display_name"     validate:"required,min=1"`
	IsAutomatic        bool                 `json:"is_automatic"`
	RequiresComment    bool                 `json:"requires_comment"`
	RequiresAssignment bool                 `json:"requires_assignment"`
	AllowedRoles       []string             `json:"allowed_roles,omitempty"`
	SortOrder          int                  `json:"sort_order"`
	IsActive           bool                 `json:"is_active"`
	Conditions         []*WorkflowCondition `json:"conditions,omitempty"`
	Actions            []*WorkflowAction    `json:"actions,omitempty"`
}

// Validate checks the structural invariants of the transition itself.
// Endpoint type membership spans other rows and is enforced by the store.
func (t *WorkflowTransition) Validate() error {
	if t.ToStatusID == "" {
		return ErrTransitionTargetMissing
	}

	if len(t.DisplayName) == 0 {
		return ErrDisplayNameMissing
	}

	for _, condition := range t.Conditions {
		if err := condition.Validate(); err != nil {
			return err
		}
	}

	for _, action := range t.Actions {
		if err := action.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// RoleAllowed reports whether a role may fire this transition. An empty
// allowed-roles set means unrestricted.
func (t *WorkflowTransition) RoleAllowed(role string) bool {
	if len(t.AllowedRoles) == 0 {
		return true
	}

	for _, allowed := range t.AllowedRoles {
		if allowed == role {
			return true
		}
	}

	return false
}

// Label returns the display name for a locale with the usual fallback rules.
func (t *WorkflowTransition) Label(locale string) string {
	if name, ok := t.DisplayName[locale]; ok {
		return name
	}

	for _, name := range t.DisplayName {
		return name
	}

	return t.Name
}
