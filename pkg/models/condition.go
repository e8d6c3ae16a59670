package models

import (
	"encoding/json"
	"errors"
)

// ConditionType discriminates how a guard condition is evaluated.
type ConditionType string

const (
	ConditionField      ConditionType = "field"
	ConditionRole       ConditionType = "role"
	ConditionTime       ConditionType = "time"
	ConditionSLA        ConditionType = "sla"
	ConditionAssignment ConditionType = "assignment"
	ConditionCustom     ConditionType = "custom"
)

// ConditionOperator is the comparison applied by a condition.
type ConditionOperator string

const (
	OpEquals         ConditionOperator = "equals"
	OpNotEquals      ConditionOperator = "not_equals"
	OpContains       ConditionOperator = "contains"
	OpNotContains    ConditionOperator = "not_contains"
	OpStartsWith     ConditionOperator = "starts_with"
	OpEndsWith       ConditionOperator = "ends_with"
	OpGreaterThan    ConditionOperator = "greater_than"
	OpLessThan       ConditionOperator = "less_than"
	OpGreaterOrEqual ConditionOperator = "greater_or_equal"
	OpLessOrEqual    ConditionOperator = "less_or_equal"
	OpIn             ConditionOperator = "in"
	OpNotIn          ConditionOperator = "not_in"
	OpRegex          ConditionOperator = "regex"
	OpIsEmpty        ConditionOperator = "is_empty"
	OpIsNotEmpty     ConditionOperator = "is_not_empty"
	OpBetween        ConditionOperator = "between"
)

var (
	// ErrConditionTypeInvalid is returned for an unknown condition type.
	ErrConditionTypeInvalid = errors.New("invalid condition type")
	// ErrConditionFieldRequired is returned when a field condition has no field name.
	ErrConditionFieldRequired = errors.New("field condition requires a non-empty field name")
)

// WorkflowCondition is a guard attached to a transition. Conditions are
// partitioned by ConditionGroup: a transition fires only if every group has
// at least one passing condition (AND across groups, OR within a group).
type WorkflowCondition struct {
	ID             string            `json:"id"`
	TransitionID   string            `json:"transition_id"`
	ConditionType  ConditionType     `json:"condition_type" validate:"required"`
	FieldName      string            `json:"field_name,omitempty"`
	Operator       ConditionOperator `json:"operator"`
	ExpectedValue  string            `json:"expected_value"`
	ConditionGroup int               `json:"condition_group"`
}

// Validate checks per-type structural requirements.
func (c *WorkflowCondition) Validate() error {
	switch c.ConditionType {
	case ConditionField:
		if c.FieldName == "" {
			return ErrConditionFieldRequired
		}
	case ConditionRole, ConditionTime, ConditionSLA, ConditionAssignment, ConditionCustom:
	default:
		return ErrConditionTypeInvalid
	}

	return nil
}

// ParsedExpectedValue returns the stored expected value parsed as JSON when
// possible, falling back to the raw string literal.
func (c *WorkflowCondition) ParsedExpectedValue() any {
	var parsed any

	if err := json.Unmarshal([]byte(c.ExpectedValue), &parsed); err != nil {
		return c.ExpectedValue
	}

	return parsed
}
