// Package models defines the core domain models for the ticket workflow engine.
package models

import (
	"errors"
	"regexp"
	"time"
)

var typeNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

var (
	// ErrTypeNameInvalid is returned when a workflow type name is not identifier-safe.
	ErrTypeNameInvalid = errors.New("workflow type name must match ^[a-z][a-z0-9_]*$")
	// ErrDisplayNameMissing is returned when no locale is present in the display name map.
	ErrDisplayNameMissing = errors.New("display name must contain at least one locale")
)

// WorkflowType is a named workflow template (e.g. "incident") that owns a set
// of statuses and the legal transitions between them. Types are never hard
// deleted because tickets and execution history reference them.
type WorkflowType struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"         validate:"required,min=2"`
	DisplayName map[string]string `json:"display_name" validate:"required,min=1"`
	Description map[string]string `json:"description,omitempty"`
	Icon        string            `json:"icon,omitempty"`
	Color       string            `json:"color,omitempty"`
	IsActive    bool              `json:"is_active"`
	IsDefault   bool              `json:"is_default"`
	CreatedBy   string            `json:"created_by"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	DeletedAt   *time.Time        `json:"deleted_at,omitempty"`
}

// Validate checks the structural invariants that must hold before persisting.
func (t *WorkflowType) Validate() error {
	if !typeNamePattern.MatchString(t.Name) {
		return ErrTypeNameInvalid
	}

	if len(t.DisplayName) == 0 {
		return ErrDisplayNameMissing
	}

	return nil
}

// Label returns the display name for a locale, falling back to any available
// locale and finally the stable name.
func (t *WorkflowType) Label(locale string) string {
	if name, ok := t.DisplayName[locale]; ok {
		return name
	}

	for _, name := range t.DisplayName {
		return name
	}

	return t.Name
}
