package models

import "errors"

// StatusCategory classifies a status for reporting. It never participates in
// transition logic.
type StatusCategory string

const (
	CategoryOpen     StatusCategory = "open"
	CategoryActive   StatusCategory = "active"
	CategoryPending  StatusCategory = "pending"
	CategoryResolved StatusCategory = "resolved"
	CategoryClosed   StatusCategory = "closed"
)

// ErrStatusCategoryInvalid is returned for an unknown status category.
var ErrStatusCategoryInvalid = errors.New("invalid status category")

// Valid reports whether the category is one of the known classifications.
func (c StatusCategory) Valid() bool {
	switch c {
	case CategoryOpen, CategoryActive, CategoryPending, CategoryResolved, CategoryClosed:
		return true
	default:
		return false
	}
}

// WorkflowStatus is a node in the state machine, scoped to exactly one
// workflow type. Status names are unique within their type, and at most one
// status per type may be the initial one.
type WorkflowStatus struct {
	ID             string            `json:"id"`
	WorkflowTypeID string            `json:"workflow_type_id" validate:"required"`
	Name           string            `json:"name"             validate:"required,min=2"`
	DisplayName    map[string]string `json:"display_name"     validate:"required,min=1"`
	Category       StatusCategory    `json:"category"         validate:"required"`
	IsInitial      bool              `json:"is_initial"`
	IsFinal        bool              `json:"is_final"`
	SortOrder      int               `json:"sort_order"`
	SLAHours       *int              `json:"sla_hours,omitempty"`
	ResponseHours  *int              `json:"response_hours,omitempty"`
	AutoAssign     bool              `json:"auto_assign"`
	NotifyOnEnter  bool              `json:"notify_on_enter"`
	NotifyOnExit   bool              `json:"notify_on_exit"`
	IsActive       bool              `json:"is_active"`
}

// Validate checks the structural invariants of a single status. Uniqueness
// and the single-initial rule span multiple rows and live in the store.
func (s *WorkflowStatus) Validate() error {
	if !s.Category.Valid() {
		return ErrStatusCategoryInvalid
	}

	if len(s.DisplayName) == 0 {
		return ErrDisplayNameMissing
	}

	return nil
}

// Label returns the display name for a locale with the same fallback rules as
// WorkflowType.Label.
func (s *WorkflowStatus) Label(locale string) string {
	if name, ok := s.DisplayName[locale]; ok {
		return name
	}

	for _, name := range s.DisplayName {
		return name
	}

	return s.Name
}
