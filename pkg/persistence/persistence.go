// Package persistence provides the data storage abstraction layer for
// workflow definitions, tickets, comments, users and the execution audit log.
package persistence

import (
	"context"
	"time"

	"github.com/haldesk/haldesk/pkg/models"
)

// Definitions stores workflow types, statuses, transitions and versions.
// Referential and uniqueness invariants (single initial status per type,
// per-type status name uniqueness, same-type transition endpoints) are
// enforced here, before anything is persisted.
type Definitions interface {
	SaveWorkflowType(ctx context.Context, workflowType *models.WorkflowType) error
	WorkflowTypeByID(ctx context.Context, id string) (*models.WorkflowType, error)
	WorkflowTypeByName(ctx context.Context, name string) (*models.WorkflowType, error)
	WorkflowTypes(ctx context.Context) ([]*models.WorkflowType, error)
	DeactivateWorkflowType(ctx context.Context, id string) error

	SaveStatus(ctx context.Context, status *models.WorkflowStatus) error
	StatusByID(ctx context.Context, id string) (*models.WorkflowStatus, error)
	StatusesForType(ctx context.Context, workflowTypeID string) ([]*models.WorkflowStatus, error)
	InitialStatus(ctx context.Context, workflowTypeID string) (*models.WorkflowStatus, error)

	SaveTransition(ctx context.Context, transition *models.WorkflowTransition) error
	TransitionByID(ctx context.Context, id string) (*models.WorkflowTransition, error)
	TransitionsForType(ctx context.Context, workflowTypeID string) ([]*models.WorkflowTransition, error)

	SaveVersion(ctx context.Context, version *models.WorkflowVersion) error
	VersionByID(ctx context.Context, id string) (*models.WorkflowVersion, error)
	VersionsForType(ctx context.Context, workflowTypeID string) ([]*models.WorkflowVersion, error)
}

// Tickets is the narrow ticket-store contract the engine consumes. Full
// ticket CRUD belongs to an external collaborator.
type Tickets interface {
	TicketByID(ctx context.Context, id string) (*models.Ticket, error)
	SaveTicket(ctx context.Context, ticket *models.Ticket) error

	// ActiveTicketCounts returns, per assignee ID, how many non-closed
	// tickets they currently hold. Used by the least_assigned rule.
	ActiveTicketCounts(ctx context.Context) (map[string]int, error)
}

// Users is the user-directory contract.
type Users interface {
	UserByID(ctx context.Context, id string) (*models.User, error)

	// ActiveAgents returns active agent users ordered oldest-login-first,
	// the ordering the round_robin assignment rule relies on.
	ActiveAgents(ctx context.Context) ([]*models.User, error)
}

// Comments is the comment-store contract.
type Comments interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	CommentsForTicket(ctx context.Context, ticketID string) ([]*models.Comment, error)
}

// StatusStat aggregates transition outcomes per destination status.
type StatusStat struct {
	ToStatusID    string  `json:"to_status_id"`
	ToStatusLabel string  `json:"to_status_label,omitempty"`
	Count         int     `json:"count"`
	AvgDurationMS float64 `json:"avg_duration_ms"`
	ErrorCount    int     `json:"error_count"`
}

// SuccessRate summarizes overall transition outcomes for a workflow type.
type SuccessRate struct {
	Total     int     `json:"total"`
	Succeeded int     `json:"succeeded"`
	Failed    int     `json:"failed"`
	Rate      float64 `json:"rate"`
}

// ExecutionLogs is the append-only audit trail. Rows are never updated or
// deleted by the engine.
type ExecutionLogs interface {
	Append(ctx context.Context, log *models.WorkflowExecutionLog) error
	HistoryForTicket(ctx context.Context, ticketID string, limit, offset int) ([]*models.WorkflowExecutionLog, int, error)
	StatsForType(ctx context.Context, workflowTypeID string, from, to *time.Time) ([]StatusStat, error)
	SuccessRateForType(ctx context.Context, workflowTypeID string, from, to *time.Time) (SuccessRate, error)
}

// Transaction is the mutation surface available inside one transition's
// transaction. TicketForTransition takes the row lock that serializes
// concurrent transitions against the same ticket.
type Transaction interface {
	TicketForTransition(ctx context.Context, id string) (*models.Ticket, error)
	SaveTicket(ctx context.Context, ticket *models.Ticket) error
	CreateComment(ctx context.Context, comment *models.Comment) error
	AppendExecutionLog(ctx context.Context, log *models.WorkflowExecutionLog) error
}

// Persistence aggregates all stores and the transaction runner.
type Persistence interface {
	Definitions() Definitions
	Tickets() Tickets
	Users() Users
	Comments() Comments
	ExecutionLogs() ExecutionLogs

	// ExecuteInTransaction runs fn inside one transaction. If fn returns an
	// error every mutation performed through the Transaction is rolled back.
	ExecuteInTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
