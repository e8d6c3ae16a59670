package workflow

import (
	"context"
	"time"

	"github.com/haldesk/haldesk/pkg/models"
	"github.com/haldesk/haldesk/pkg/persistence"
)

// History returns the paginated transition history of one ticket, newest
// first, along with the total row count.
func (o *Orchestrator) History(ctx context.Context, ticketID string, limit, offset int) ([]*models.WorkflowExecutionLog, int, error) {
	return o.persistence.ExecutionLogs().HistoryForTicket(ctx, ticketID, limit, offset)
}

// TypeStats aggregates transition counts, average duration and error counts
// grouped by destination status for one workflow type over an optional range.
func (o *Orchestrator) TypeStats(ctx context.Context, workflowTypeID string, from, to *time.Time) ([]persistence.StatusStat, error) {
	return o.persistence.ExecutionLogs().StatsForType(ctx, workflowTypeID, from, to)
}

// SuccessRate computes the overall success/error rate for one workflow type
// over an optional date range.
func (o *Orchestrator) SuccessRate(ctx context.Context, workflowTypeID string, from, to *time.Time) (persistence.SuccessRate, error) {
	return o.persistence.ExecutionLogs().SuccessRateForType(ctx, workflowTypeID, from, to)
}
