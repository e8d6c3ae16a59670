package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/haldesk/haldesk/pkg/models"
	"github.com/haldesk/haldesk/pkg/persistence"
)

// ExecutionLogRepository stores the append-only transition audit trail. Rows
// are never updated or deleted.
type ExecutionLogRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *ExecutionLogRepository) Append(ctx context.Context, log *models.WorkflowExecutionLog) error {
	return insertExecutionLog(ctx, r.db, log)
}

func insertExecutionLog(ctx context.Context, q querier, log *models.WorkflowExecutionLog) error {
	if log.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate execution log ID: %w", err)
		}

		log.ID = id.String()
	}

	if log.ExecutedAt.IsZero() {
		log.ExecutedAt = time.Now().UTC()
	}

	conditionResultsJSON, err := json.Marshal(log.ConditionResults)
	if err != nil {
		return fmt.Errorf("failed to marshal condition results: %w", err)
	}

	actionResultsJSON, err := json.Marshal(log.ActionResults)
	if err != nil {
		return fmt.Errorf("failed to marshal action results: %w", err)
	}

	metadataJSON, err := json.Marshal(log.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		INSERT INTO workflow_execution_logs (id, ticket_id, workflow_type_id,
			from_status_id, to_status_id, transition_id, user_id, executed_at,
			duration_ms, condition_results, action_results, error_message, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = q.ExecContext(ctx, query,
		log.ID,
		log.TicketID,
		log.WorkflowTypeID,
		log.FromStatusID,
		log.ToStatusID,
		log.TransitionID,
		log.UserID,
		log.ExecutedAt,
		log.DurationMS,
		conditionResultsJSON,
		actionResultsJSON,
		log.ErrorMessage,
		metadataJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert execution log: %w", err)
	}

	return nil
}

// HistoryForTicket returns a page of a ticket's transition attempts, newest
// first, plus the total row count for pagination.
func (r *ExecutionLogRepository) HistoryForTicket(ctx context.Context, ticketID string, limit, offset int) ([]*models.WorkflowExecutionLog, int, error) {
	var total int

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM workflow_execution_logs WHERE ticket_id = $1`, ticketID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count execution logs: %w", err)
	}

	if limit <= 0 {
		limit = total
	}

	query := `
		SELECT id, ticket_id, workflow_type_id, from_status_id, to_status_id,
			transition_id, user_id, executed_at, duration_ms, condition_results,
			action_results, error_message, metadata
		FROM workflow_execution_logs
		WHERE ticket_id = $1
		ORDER BY executed_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, ticketID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query execution logs: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	var history []*models.WorkflowExecutionLog

	for rows.Next() {
		log, err := scanExecutionLog(rows)
		if err != nil {
			return nil, 0, err
		}

		history = append(history, log)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating execution logs: %w", err)
	}

	return history, total, nil
}

func scanExecutionLog(row rowScanner) (*models.WorkflowExecutionLog, error) {
	var (
		log                  models.WorkflowExecutionLog
		fromStatusID         sql.NullString
		toStatusID           sql.NullString
		transitionID         sql.NullString
		userID               sql.NullString
		errorMessage         sql.NullString
		conditionResultsJSON []byte
		actionResultsJSON    []byte
		metadataJSON         []byte
	)

	err := row.Scan(
		&log.ID,
		&log.TicketID,
		&log.WorkflowTypeID,
		&fromStatusID,
		&toStatusID,
		&transitionID,
		&userID,
		&log.ExecutedAt,
		&log.DurationMS,
		&conditionResultsJSON,
		&actionResultsJSON,
		&errorMessage,
		&metadataJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan execution log: %w", err)
	}

	if fromStatusID.Valid {
		log.FromStatusID = &fromStatusID.String
	}

	if toStatusID.Valid {
		log.ToStatusID = &toStatusID.String
	}

	if transitionID.Valid {
		log.TransitionID = &transitionID.String
	}

	if userID.Valid {
		log.UserID = &userID.String
	}

	if errorMessage.Valid {
		log.ErrorMessage = &errorMessage.String
	}

	if err := json.Unmarshal(conditionResultsJSON, &log.ConditionResults); err != nil {
		return nil, fmt.Errorf("failed to unmarshal condition results: %w", err)
	}

	if err := json.Unmarshal(actionResultsJSON, &log.ActionResults); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action results: %w", err)
	}

	if err := json.Unmarshal(metadataJSON, &log.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	return &log, nil
}

// StatsForType aggregates transition outcomes per destination status. Failed
// attempts with no destination group under an empty status ID.
func (r *ExecutionLogRepository) StatsForType(ctx context.Context, workflowTypeID string, from, to *time.Time) ([]persistence.StatusStat, error) {
	query := `
		SELECT COALESCE(to_status_id, '')
			 , COALESCE(MAX(metadata->>'to_status_label'), '')
			 , COUNT(*)
			 , COALESCE(AVG(duration_ms), 0)
			 , COUNT(*) FILTER (WHERE error_message IS NOT NULL)
		FROM workflow_execution_logs
		WHERE workflow_type_id = $1
		  AND ($2::timestamptz IS NULL OR executed_at >= $2)
		  AND ($3::timestamptz IS NULL OR executed_at <= $3)
		GROUP BY COALESCE(to_status_id, '')
		ORDER BY COALESCE(to_status_id, '') ASC
	`

	rows, err := r.db.QueryContext(ctx, query, workflowTypeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query execution stats: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	stats := make([]persistence.StatusStat, 0)

	for rows.Next() {
		var stat persistence.StatusStat

		err := rows.Scan(
			&stat.ToStatusID,
			&stat.ToStatusLabel,
			&stat.Count,
			&stat.AvgDurationMS,
			&stat.ErrorCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution stat: %w", err)
		}

		stats = append(stats, stat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating execution stats: %w", err)
	}

	return stats, nil
}

// SuccessRateForType summarizes how many transition attempts committed versus
// failed over an optional time range.
func (r *ExecutionLogRepository) SuccessRateForType(ctx context.Context, workflowTypeID string, from, to *time.Time) (persistence.SuccessRate, error) {
	query := `
		SELECT COUNT(*)
			 , COUNT(*) FILTER (WHERE error_message IS NULL)
			 , COUNT(*) FILTER (WHERE error_message IS NOT NULL)
		FROM workflow_execution_logs
		WHERE workflow_type_id = $1
		  AND ($2::timestamptz IS NULL OR executed_at >= $2)
		  AND ($3::timestamptz IS NULL OR executed_at <= $3)
	`

	var rate persistence.SuccessRate

	err := r.db.QueryRowContext(ctx, query, workflowTypeID, from, to).Scan(
		&rate.Total,
		&rate.Succeeded,
		&rate.Failed,
	)
	if err != nil {
		return persistence.SuccessRate{}, fmt.Errorf("failed to query success rate: %w", err)
	}

	if rate.Total > 0 {
		rate.Rate = float64(rate.Succeeded) / float64(rate.Total)
	}

	return rate, nil
}
