package models

import "time"

// Ticket is the work item whose lifecycle the workflow governs. The engine
// only reads and mutates the narrow surface below; full ticket CRUD lives in
// an external collaborator.
type Ticket struct {
	ID              string         `json:"id"`
	Subject         string         `json:"subject"`
	Description     string         `json:"description,omitempty"`
	Priority        int            `json:"priority"`
	WorkflowTypeID  string         `json:"workflow_type_id"`
	CurrentStatusID string         `json:"current_status_id"`
	AssignedToID    *string        `json:"assigned_to_id,omitempty"`
	CreatedBy       string         `json:"created_by"`
	SLADueAt        *time.Time     `json:"sla_due_at,omitempty"`
	SLABreached     bool           `json:"sla_breached"`
	Fields          map[string]any `json:"fields,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Snapshot flattens the ticket into a map for dot-path field resolution and
// template rendering. Custom fields sit alongside the well-known attributes,
// so "priority" and "customer.segment" resolve the same way.
func (t *Ticket) Snapshot() map[string]any {
	snapshot := map[string]any{
		"id":                t.ID,
		"subject":           t.Subject,
		"description":       t.Description,
		"priority":          t.Priority,
		"workflow_type_id":  t.WorkflowTypeID,
		"current_status_id": t.CurrentStatusID,
		"created_by":        t.CreatedBy,
		"sla_breached":      t.SLABreached,
		"created_at":        t.CreatedAt,
		"updated_at":        t.UpdatedAt,
	}

	if t.AssignedToID != nil {
		snapshot["assigned_to_id"] = *t.AssignedToID
	}

	if t.SLADueAt != nil {
		snapshot["sla_due_at"] = *t.SLADueAt
	}

	for key, value := range t.Fields {
		snapshot[key] = value
	}

	return snapshot
}

// SetField writes a value into a named ticket field. Well-known attributes
// map onto the struct; anything else lands in the free-form Fields map.
func (t *Ticket) SetField(name string, value any) {
	switch name {
	case "subject":
		if s, ok := value.(string); ok {
			t.Subject = s
		}
	case "description":
		if s, ok := value.(string); ok {
			t.Description = s
		}
	case "priority":
		switch v := value.(type) {
		case int:
			t.Priority = v
		case float64:
			t.Priority = int(v)
		}
	case "assigned_to_id":
		if s, ok := value.(string); ok {
			t.AssignedToID = &s
		}
	default:
		if t.Fields == nil {
			t.Fields = make(map[string]any)
		}

		t.Fields[name] = value
	}
}

// User is the acting-user shape consumed from the external user directory.
type User struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email,omitempty"`
	Role           string     `json:"role"`
	TelegramChatID int64      `json:"telegram_chat_id,omitempty"`
	IsActive       bool       `json:"is_active"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
}

// Snapshot flattens the user for template rendering and condition lookups.
func (u *User) Snapshot() map[string]any {
	if u == nil {
		return map[string]any{}
	}

	return map[string]any{
		"id":        u.ID,
		"name":      u.Name,
		"email":     u.Email,
		"role":      u.Role,
		"is_active": u.IsActive,
	}
}

// Comment is a note on a ticket, created either by the caller's transition
// comment or by a create_comment action.
type Comment struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	UserID     string    `json:"user_id"`
	Content    string    `json:"content"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}
