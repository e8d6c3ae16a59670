// Package events defines the messages published on the engine's event bus.
package events

import "time"

// Topic is the single bus topic all workflow events travel on.
const Topic = "haldesk.workflow.events"

// Metadata keys set on published messages.
const (
	EventMetadataKey     = "event_key"
	EventTypeMetadataKey = "event_type"
)

// EventType discriminates the payload of a bus message.
type EventType string

const (
	TransitionExecutedEvent EventType = "transition.executed"
	TransitionFailedEvent   EventType = "transition.failed"
	TicketEventLogged       EventType = "ticket.event"
)

// Event is implemented by every published payload.
type Event interface {
	GetType() EventType
}

// BaseEvent carries the fields shared by all events.
type BaseEvent struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// GetType returns the event type tag.
func (e BaseEvent) GetType() EventType { return e.Type }

// NewBaseEvent stamps an event with its type and the current time.
func NewBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{Type: eventType, Timestamp: time.Now().UTC()}
}

// TransitionExecuted is published after a transition commits.
type TransitionExecuted struct {
	BaseEvent

	TicketID       string `json:"ticket_id"`
	WorkflowTypeID string `json:"workflow_type_id"`
	TransitionID   string `json:"transition_id"`
	FromStatusID   string `json:"from_status_id"`
	ToStatusID     string `json:"to_status_id"`
	UserID         string `json:"user_id,omitempty"`
	DurationMS     int64  `json:"duration_ms"`
}

// TransitionFailed is published after a transition attempt is rejected or
// rolled back.
type TransitionFailed struct {
	BaseEvent

	TicketID       string `json:"ticket_id"`
	WorkflowTypeID string `json:"workflow_type_id,omitempty"`
	TransitionID   string `json:"transition_id,omitempty"`
	UserID         string `json:"user_id,omitempty"`
	Reason         string `json:"reason"`
}

// TicketEvent is the structured record written by the log_event action.
type TicketEvent struct {
	BaseEvent

	Name     string         `json:"name"`
	TicketID string         `json:"ticket_id"`
	UserID   string         `json:"user_id,omitempty"`
	Payload  map[string]any `json:"payload,omitempty"`
}
