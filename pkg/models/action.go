package models

import (
	"errors"
	"fmt"
)

// ActionType discriminates the side effect an action performs.
type ActionType string

const (
	ActionAssign        ActionType = "assign"
	ActionNotify        ActionType = "notify"
	ActionUpdateField   ActionType = "update_field"
	ActionWebhook       ActionType = "webhook"
	ActionCreateComment ActionType = "create_comment"
	ActionEscalate      ActionType = "escalate"
	ActionUpdateSLA     ActionType = "update_sla"
	ActionLogEvent      ActionType = "log_event"
	ActionScript        ActionType = "script"
	ActionSendEmail     ActionType = "send_email"
	ActionSendTelegram  ActionType = "send_telegram"
)

// ErrActionTypeInvalid is returned for an unknown action type.
var ErrActionTypeInvalid = errors.New("invalid action type")

// ConfigError reports a malformed action configuration detected at
// validation time, before any execution is attempted.
type ConfigError struct {
	ActionType ActionType
	Field      string
	Message    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s action configuration: %s: %s", e.ActionType, e.Field, e.Message)
}

// IsConfigError reports whether err is an action configuration error.
func IsConfigError(err error) bool {
	var configErr *ConfigError

	return errors.As(err, &configErr)
}

// WorkflowAction is a side effect attached to a transition. Actions run in
// ascending ExecutionOrder; an individual failure never aborts the pipeline.
type WorkflowAction struct {
	ID             string         `json:"id"`
	TransitionID   string         `json:"transition_id"`
	ActionType     ActionType     `json:"action_type" validate:"required"`
	Config         map[string]any `json:"config"`
	ExecutionOrder int            `json:"execution_order" validate:"gte=0"`
	IsActive       bool           `json:"is_active"`
}

// Validate checks the configuration shape required by the action type.
func (a *WorkflowAction) Validate() error {
	switch a.ActionType {
	case ActionAssign:
		if a.configString("assignee_id") == "" && a.configString("rule") == "" {
			return &ConfigError{ActionType: a.ActionType, Field: "assignee_id", Message: "either assignee_id or rule is required"}
		}
	case ActionNotify:
		if len(a.configList("recipients")) == 0 {
			return &ConfigError{ActionType: a.ActionType, Field: "recipients", Message: "a non-empty recipients list is required"}
		}
	case ActionUpdateField:
		if a.configString("field_name") == "" {
			return &ConfigError{ActionType: a.ActionType, Field: "field_name", Message: "field_name is required"}
		}

		if _, ok := a.Config["field_value"]; !ok {
			return &ConfigError{ActionType: a.ActionType, Field: "field_value", Message: "field_value is required"}
		}
	case ActionWebhook:
		if a.configString("url") == "" {
			return &ConfigError{ActionType: a.ActionType, Field: "url", Message: "url is required"}
		}
	case ActionCreateComment:
		if a.configString("content") == "" {
			return &ConfigError{ActionType: a.ActionType, Field: "content", Message: "content is required"}
		}
	case ActionEscalate:
	case ActionUpdateSLA:
		if _, hasHours := a.Config["sla_hours"]; !hasHours {
			if _, hasBreached := a.Config["mark_breached"]; !hasBreached {
				return &ConfigError{ActionType: a.ActionType, Field: "sla_hours", Message: "either sla_hours or mark_breached is required"}
			}
		}
	case ActionLogEvent:
		if a.configString("event_name") == "" {
			return &ConfigError{ActionType: a.ActionType, Field: "event_name", Message: "event_name is required"}
		}
	case ActionScript:
		if a.configString("expression") == "" {
			return &ConfigError{ActionType: a.ActionType, Field: "expression", Message: "expression is required"}
		}
	case ActionSendEmail:
		if len(a.configList("to")) == 0 {
			return &ConfigError{ActionType: a.ActionType, Field: "to", Message: "a non-empty recipient list is required"}
		}

		if a.configString("subject") == "" {
			return &ConfigError{ActionType: a.ActionType, Field: "subject", Message: "subject is required"}
		}
	case ActionSendTelegram:
		if a.configString("message") == "" {
			return &ConfigError{ActionType: a.ActionType, Field: "message", Message: "message is required"}
		}
	default:
		return ErrActionTypeInvalid
	}

	if a.ExecutionOrder < 0 {
		return &ConfigError{ActionType: a.ActionType, Field: "execution_order", Message: "execution order must be non-negative"}
	}

	return nil
}

func (a *WorkflowAction) configString(key string) string {
	value, _ := a.Config[key].(string)

	return value
}

func (a *WorkflowAction) configList(key string) []any {
	switch value := a.Config[key].(type) {
	case []any:
		return value
	case []string:
		list := make([]any, 0, len(value))
		for _, item := range value {
			list = append(list, item)
		}

		return list
	default:
		return nil
	}
}
