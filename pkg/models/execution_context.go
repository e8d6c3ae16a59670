package models

// ExecutionContext carries everything a condition or action may inspect while
// a transition executes: the ticket being moved, the acting user (nil for
// system-triggered transitions) and the caller-supplied context map.
//
// Actions mutate the Ticket in place and queue persistence side effects on
// Effects; the orchestrator applies both inside the transition's transaction.
type ExecutionContext struct {
	Ticket  *Ticket        `json:"ticket"`
	User    *User          `json:"user,omitempty"`
	Context map[string]any `json:"context,omitempty"`
	Effects *EffectLog     `json:"-"`
}

// EffectLog collects deferred side effects produced by the action pipeline.
type EffectLog struct {
	Comments []*Comment
}

// QueueComment defers a comment until the transaction commits.
func (e *EffectLog) QueueComment(comment *Comment) {
	e.Comments = append(e.Comments, comment)
}

// TemplateData exposes the context under the template root names.
func (c *ExecutionContext) TemplateData() map[string]any {
	data := map[string]any{
		"context": c.Context,
		"user":    c.User.Snapshot(),
	}

	if c.Ticket != nil {
		data["ticket"] = c.Ticket.Snapshot()
	} else {
		data["ticket"] = map[string]any{}
	}

	return data
}
