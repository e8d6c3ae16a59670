// Package workflow implements the transition orchestrator: the single entry
// point that validates a requested (ticket, transition) pair, evaluates guard
// conditions, mutates the ticket transactionally, runs the action pipeline and
// writes the audit trail.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/haldesk/haldesk/pkg/conditions"
	"github.com/haldesk/haldesk/pkg/eventbus"
	"github.com/haldesk/haldesk/pkg/events"
	"github.com/haldesk/haldesk/pkg/metrics"
	"github.com/haldesk/haldesk/pkg/models"
	"github.com/haldesk/haldesk/pkg/otelhelper"
	"github.com/haldesk/haldesk/pkg/persistence"
	"github.com/haldesk/haldesk/pkg/registry"
)

// TransitionRequest is the caller-supplied input of one transition attempt.
type TransitionRequest struct {
	Comment    string         `json:"comment,omitempty"`
	AssigneeID string         `json:"assignee_id,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

// TransitionResult is returned after a committed transition.
type TransitionResult struct {
	Ticket           *models.Ticket                 `json:"ticket"`
	Transition       *models.WorkflowTransition     `json:"transition"`
	ConditionResults map[string]bool                `json:"condition_results"`
	ActionResults    map[string]models.ActionResult `json:"action_results"`
	Log              *models.WorkflowExecutionLog   `json:"log"`
}

// Orchestrator coordinates definition lookups, condition evaluation, the
// action pipeline and audit logging around a single ticket mutation.
type Orchestrator struct {
	persistence persistence.Persistence
	registry    *registry.Registry
	evaluator   *conditions.Evaluator
	bus         eventbus.EventBus
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	logger      *slog.Logger
	now         func() time.Time
}

// NewOrchestrator creates an orchestrator. Event bus, metrics and tracer are
// optional and attached with the With* methods.
func NewOrchestrator(
	p persistence.Persistence,
	reg *registry.Registry,
	evaluator *conditions.Evaluator,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		persistence: p,
		registry:    reg,
		evaluator:   evaluator,
		logger:      logger.With("module", "workflow_orchestrator"),
		now:         time.Now,
	}
}

// WithEventBus attaches the bus transition events are published on.
func (o *Orchestrator) WithEventBus(bus eventbus.EventBus) *Orchestrator {
	o.bus = bus

	return o
}

// WithMetrics attaches Prometheus collectors.
func (o *Orchestrator) WithMetrics(m *metrics.Metrics) *Orchestrator {
	o.metrics = m

	return o
}

// WithTracer attaches a tracer for spans around the hot path.
func (o *Orchestrator) WithTracer(tracer trace.Tracer) *Orchestrator {
	o.tracer = tracer

	return o
}

// ExecuteTransition runs one transition attempt end to end. The status
// mutation, action side effects, comments and the success audit row commit in
// one transaction; a rejected or failed attempt rolls everything back and
// still writes its audit row outside the transaction.
func (o *Orchestrator) ExecuteTransition(
	ctx context.Context,
	ticketID, transitionID, userID string,
	req TransitionRequest,
) (*TransitionResult, error) {
	start := o.now()
	logger := o.logger.With("ticket_id", ticketID, "transition_id", transitionID)

	var span trace.Span
	if o.tracer != nil {
		ctx, span = otelhelper.StartSpan(ctx, o.tracer, "workflow.execute_transition",
			attribute.String(otelhelper.TicketIDKey, ticketID),
			attribute.String(otelhelper.TransitionIDKey, transitionID),
			attribute.String(otelhelper.UserIDKey, userID),
		)
		defer span.End()
	}

	// Captured by the transaction closure so the failure path can still
	// assemble an audit row after rollback.
	var (
		ticket          *models.Ticket
		transition      *models.WorkflowTransition
		user            *models.User
		fromStatusID    string
		conditionResult map[string]bool
		actionResults   map[string]models.ActionResult
		auditLog        *models.WorkflowExecutionLog
	)

	txErr := o.persistence.ExecuteInTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		var err error

		ticket, err = tx.TicketForTransition(ctx, ticketID)
		if err != nil {
			if persistence.IsNotFound(err) {
				return fmt.Errorf("%w: ticket %s", ErrNotFound, ticketID)
			}

			return err
		}

		fromStatusID = ticket.CurrentStatusID

		transition, err = o.persistence.Definitions().TransitionByID(ctx, transitionID)
		if err != nil {
			if persistence.IsNotFound(err) {
				return fmt.Errorf("%w: transition %s", ErrNotFound, transitionID)
			}

			return err
		}

		if transition.WorkflowTypeID != ticket.WorkflowTypeID || !transition.IsActive {
			return fmt.Errorf("%w: transition %s does not apply to this ticket", ErrInvalidTransition, transitionID)
		}

		if userID != "" {
			user, err = o.persistence.Users().UserByID(ctx, userID)
			if err != nil {
				if persistence.IsNotFound(err) {
					return fmt.Errorf("%w: user %s", ErrNotFound, userID)
				}

				return err
			}
		}

		role := ""
		if user != nil {
			role = user.Role
		}

		if !transition.RoleAllowed(role) {
			return fmt.Errorf("%w: role %q", ErrForbidden, role)
		}

		if transition.FromStatusID != nil && *transition.FromStatusID != ticket.CurrentStatusID {
			return fmt.Errorf("%w: ticket is in status %s", ErrInvalidTransition, ticket.CurrentStatusID)
		}

		if transition.RequiresComment && strings.TrimSpace(req.Comment) == "" {
			return fmt.Errorf("%w: comment required", ErrPreconditionFailed)
		}

		if transition.RequiresAssignment && req.AssigneeID == "" &&
			(ticket.AssignedToID == nil || *ticket.AssignedToID == "") {
			return fmt.Errorf("%w: assignment required", ErrPreconditionFailed)
		}

		target, err := o.persistence.Definitions().StatusByID(ctx, transition.ToStatusID)
		if err != nil {
			if persistence.IsNotFound(err) {
				return fmt.Errorf("%w: target status %s missing", ErrConfiguration, transition.ToStatusID)
			}

			return err
		}

		execCtx := &models.ExecutionContext{
			Ticket:  ticket,
			User:    user,
			Context: requestContext(req),
			Effects: &models.EffectLog{},
		}

		group := o.evaluator.EvaluateGroups(ctx, transition.Conditions, execCtx)
		conditionResult = group.Results

		if !group.Passed {
			return &ConditionsError{FailedGroups: group.FailedGroups, Results: group.Results}
		}

		ticket.CurrentStatusID = target.ID

		if req.AssigneeID != "" {
			assignee := req.AssigneeID
			ticket.AssignedToID = &assignee
		}

		ticket.UpdatedAt = o.now().UTC()

		actionResults = o.runActions(ctx, transition, execCtx, logger)

		if err := tx.SaveTicket(ctx, ticket); err != nil {
			return err
		}

		for _, comment := range execCtx.Effects.Comments {
			if err := tx.CreateComment(ctx, comment); err != nil {
				return err
			}
		}

		if strings.TrimSpace(req.Comment) != "" {
			err := tx.CreateComment(ctx, &models.Comment{
				TicketID: ticket.ID,
				UserID:   userID,
				Content:  req.Comment,
			})
			if err != nil {
				return err
			}
		}

		auditLog = o.buildLog(ctx, ticket, transition, user, fromStatusID, userID, conditionResult, actionResults, nil, start)

		return tx.AppendExecutionLog(ctx, auditLog)
	})

	if txErr != nil {
		o.recordFailure(ctx, failureRecord{
			ticketID:         ticketID,
			ticket:           ticket,
			transition:       transition,
			user:             user,
			fromStatusID:     fromStatusID,
			userID:           userID,
			conditionResults: conditionResult,
			actionResults:    actionResults,
			err:              txErr,
			start:            start,
		})

		if span != nil {
			otelhelper.SetError(span, txErr)
		}

		logger.WarnContext(ctx, "transition rejected", "error", txErr)

		return nil, txErr
	}

	o.observeSuccess(ctx, ticket, transition, userID, auditLog)

	logger.InfoContext(ctx, "transition executed",
		"from_status_id", fromStatusID,
		"to_status_id", ticket.CurrentStatusID,
		"duration_ms", auditLog.DurationMS,
	)

	return &TransitionResult{
		Ticket:           ticket,
		Transition:       transition,
		ConditionResults: conditionResult,
		ActionResults:    actionResults,
		Log:              auditLog,
	}, nil
}

// AvailableTransitions lists every active transition that may fire from the
// ticket's current status for the acting user. Condition failures silently
// drop a transition from the listing.
func (o *Orchestrator) AvailableTransitions(ctx context.Context, ticketID, userID string) ([]*models.WorkflowTransition, error) {
	ticket, err := o.persistence.Tickets().TicketByID(ctx, ticketID)
	if err != nil {
		if persistence.IsNotFound(err) {
			return nil, fmt.Errorf("%w: ticket %s", ErrNotFound, ticketID)
		}

		return nil, err
	}

	var user *models.User
	if userID != "" {
		user, err = o.persistence.Users().UserByID(ctx, userID)
		if err != nil {
			if persistence.IsNotFound(err) {
				return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
			}

			return nil, err
		}
	}

	transitions, err := o.persistence.Definitions().TransitionsForType(ctx, ticket.WorkflowTypeID)
	if err != nil {
		return nil, err
	}

	role := ""
	if user != nil {
		role = user.Role
	}

	execCtx := &models.ExecutionContext{
		Ticket:  ticket,
		User:    user,
		Context: map[string]any{},
		Effects: &models.EffectLog{},
	}

	available := make([]*models.WorkflowTransition, 0, len(transitions))

	for _, transition := range transitions {
		if !transition.IsActive {
			continue
		}

		if transition.FromStatusID != nil && *transition.FromStatusID != ticket.CurrentStatusID {
			continue
		}

		if !transition.RoleAllowed(role) {
			continue
		}

		if group := o.evaluator.EvaluateGroups(ctx, transition.Conditions, execCtx); !group.Passed {
			continue
		}

		available = append(available, transition)
	}

	sort.SliceStable(available, func(i, j int) bool {
		return available[i].SortOrder < available[j].SortOrder
	})

	return available, nil
}

// runActions executes the transition's active actions in ascending execution
// order. An individual failure is recorded and never aborts the pipeline.
func (o *Orchestrator) runActions(
	ctx context.Context,
	transition *models.WorkflowTransition,
	execCtx *models.ExecutionContext,
	logger *slog.Logger,
) map[string]models.ActionResult {
	active := make([]*models.WorkflowAction, 0, len(transition.Actions))

	for _, item := range transition.Actions {
		if item.IsActive {
			active = append(active, item)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].ExecutionOrder < active[j].ExecutionOrder
	})

	results := make(map[string]models.ActionResult, len(active))

	for _, item := range active {
		result := o.runAction(ctx, item, execCtx, logger)
		results[item.ID] = result

		if !result.Success && o.metrics != nil {
			o.metrics.ActionFailures.WithLabelValues(string(item.ActionType)).Inc()
		}
	}

	return results
}

func (o *Orchestrator) runAction(
	ctx context.Context,
	item *models.WorkflowAction,
	execCtx *models.ExecutionContext,
	logger *slog.Logger,
) models.ActionResult {
	logger = logger.With("action_id", item.ID, "action_type", item.ActionType)

	action, err := o.registry.CreateAction(string(item.ActionType), item.ID, item.Config)
	if err != nil {
		logger.ErrorContext(ctx, "failed to create action", "error", err)

		return models.ActionResult{Success: false, Message: "configuration error: " + err.Error()}
	}

	result, err := action.Execute(ctx, *execCtx, logger)
	if err != nil {
		logger.ErrorContext(ctx, "action failed", "error", err)

		return models.ActionResult{Success: false, Message: err.Error()}
	}

	return result
}

type failureRecord struct {
	ticketID         string
	ticket           *models.Ticket
	transition       *models.WorkflowTransition
	user             *models.User
	fromStatusID     string
	userID           string
	conditionResults map[string]bool
	actionResults    map[string]models.ActionResult
	err              error
	start            time.Time
}

// recordFailure writes the failure-path audit row outside the rolled-back
// transaction so rejected attempts stay visible.
func (o *Orchestrator) recordFailure(ctx context.Context, rec failureRecord) {
	errorMessage := rec.err.Error()

	row := &models.WorkflowExecutionLog{
		TicketID:         rec.ticketID,
		ExecutedAt:       rec.start.UTC(),
		DurationMS:       o.now().Sub(rec.start).Milliseconds(),
		ConditionResults: rec.conditionResults,
		ActionResults:    rec.actionResults,
		ErrorMessage:     &errorMessage,
		Metadata:         map[string]any{},
	}

	if rec.ticket != nil {
		row.WorkflowTypeID = rec.ticket.WorkflowTypeID
		fromID := rec.fromStatusID
		row.FromStatusID = &fromID
	}

	if rec.transition != nil {
		transitionID := rec.transition.ID
		row.TransitionID = &transitionID
		toID := rec.transition.ToStatusID
		row.ToStatusID = &toID
		row.Metadata["transition_label"] = rec.transition.Label("en")
	}

	if rec.userID != "" {
		userID := rec.userID
		row.UserID = &userID
	}

	if rec.user != nil {
		row.Metadata["user_name"] = rec.user.Name
	}

	if err := o.persistence.ExecutionLogs().Append(ctx, row); err != nil {
		o.logger.ErrorContext(ctx, "failed to append failure audit row",
			"ticket_id", rec.ticketID,
			"error", err,
		)
	}

	o.observeFailure(ctx, rec)
}

func (o *Orchestrator) observeFailure(ctx context.Context, rec failureRecord) {
	workflowTypeID := ""
	if rec.ticket != nil {
		workflowTypeID = rec.ticket.WorkflowTypeID
	}

	if o.metrics != nil {
		o.metrics.TransitionsTotal.WithLabelValues(workflowTypeID, "failure").Inc()

		if errors.Is(rec.err, ErrConditionsNotMet) {
			o.metrics.ConditionRejects.WithLabelValues(workflowTypeID).Inc()
		}
	}

	if o.bus == nil {
		return
	}

	event := events.TransitionFailed{
		BaseEvent:      events.NewBaseEvent(events.TransitionFailedEvent),
		TicketID:       rec.ticketID,
		WorkflowTypeID: workflowTypeID,
		UserID:         rec.userID,
		Reason:         rec.err.Error(),
	}

	if rec.transition != nil {
		event.TransitionID = rec.transition.ID
	}

	if err := o.bus.Publish(ctx, rec.ticketID, event); err != nil {
		o.logger.WarnContext(ctx, "failed to publish transition.failed", "error", err)
	}
}

func (o *Orchestrator) observeSuccess(ctx context.Context, ticket *models.Ticket, transition *models.WorkflowTransition, userID string, auditLog *models.WorkflowExecutionLog) {
	if o.metrics != nil {
		o.metrics.TransitionsTotal.WithLabelValues(ticket.WorkflowTypeID, "success").Inc()
		o.metrics.TransitionDuration.WithLabelValues(ticket.WorkflowTypeID).
			Observe(float64(auditLog.DurationMS) / 1000)
	}

	if o.bus == nil {
		return
	}

	fromStatusID := ""
	if auditLog.FromStatusID != nil {
		fromStatusID = *auditLog.FromStatusID
	}

	event := events.TransitionExecuted{
		BaseEvent:      events.NewBaseEvent(events.TransitionExecutedEvent),
		TicketID:       ticket.ID,
		WorkflowTypeID: ticket.WorkflowTypeID,
		TransitionID:   transition.ID,
		FromStatusID:   fromStatusID,
		ToStatusID:     ticket.CurrentStatusID,
		UserID:         userID,
		DurationMS:     auditLog.DurationMS,
	}

	if err := o.bus.Publish(ctx, ticket.ID, event); err != nil {
		o.logger.WarnContext(ctx, "failed to publish transition.executed", "error", err)
	}
}

// buildLog assembles the success audit row, denormalizing human-readable
// labels into metadata so history survives later definition deletes.
func (o *Orchestrator) buildLog(
	ctx context.Context,
	ticket *models.Ticket,
	transition *models.WorkflowTransition,
	user *models.User,
	fromStatusID, userID string,
	conditionResults map[string]bool,
	actionResults map[string]models.ActionResult,
	errorMessage *string,
	start time.Time,
) *models.WorkflowExecutionLog {
	fromID := fromStatusID
	toID := ticket.CurrentStatusID
	transitionID := transition.ID

	row := &models.WorkflowExecutionLog{
		TicketID:         ticket.ID,
		WorkflowTypeID:   ticket.WorkflowTypeID,
		FromStatusID:     &fromID,
		ToStatusID:       &toID,
		TransitionID:     &transitionID,
		ExecutedAt:       start.UTC(),
		DurationMS:       o.now().Sub(start).Milliseconds(),
		ConditionResults: conditionResults,
		ActionResults:    actionResults,
		ErrorMessage:     errorMessage,
		Metadata: map[string]any{
			"transition_label": transition.Label("en"),
		},
	}

	if userID != "" {
		id := userID
		row.UserID = &id
	}

	if user != nil {
		row.Metadata["user_name"] = user.Name
	}

	if status, err := o.persistence.Definitions().StatusByID(ctx, fromStatusID); err == nil {
		row.Metadata["from_status_label"] = status.Label("en")
	}

	if status, err := o.persistence.Definitions().StatusByID(ctx, toID); err == nil {
		row.Metadata["to_status_label"] = status.Label("en")
	}

	return row
}

// requestContext copies the caller context and extends it with the comment
// and assignee so conditions and templates can reference them.
func requestContext(req TransitionRequest) map[string]any {
	extended := make(map[string]any, len(req.Context)+2)

	for key, value := range req.Context {
		extended[key] = value
	}

	if req.Comment != "" {
		extended["comment"] = req.Comment
	}

	if req.AssigneeID != "" {
		extended["assignee_id"] = req.AssigneeID
	}

	return extended
}
