package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/haldesk/haldesk/pkg/models"
	"github.com/haldesk/haldesk/pkg/persistence"
)

const ticketColumns = `
	id
  , subject
  , description
  , priority
  , workflow_type_id
  , current_status_id
  , assigned_to_id
  , created_by
  , sla_due_at
  , sla_breached
  , fields
  , created_at
  , updated_at
`

// TicketRepository handles ticket-related database operations.
type TicketRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *TicketRepository) TicketByID(ctx context.Context, id string) (*models.Ticket, error) {
	return selectTicket(ctx, r.db, id, false)
}

func (r *TicketRepository) SaveTicket(ctx context.Context, ticket *models.Ticket) error {
	return saveTicket(ctx, r.db, ticket)
}

// ActiveTicketCounts counts non-closed tickets per assignee, feeding the
// least_assigned assignment rule.
func (r *TicketRepository) ActiveTicketCounts(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT t.assigned_to_id, COUNT(*)
		FROM tickets t
		JOIN workflow_statuses s ON s.id = t.current_status_id
		WHERE t.assigned_to_id IS NOT NULL
		  AND t.assigned_to_id <> ''
		  AND NOT s.is_final
		GROUP BY t.assigned_to_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticket counts: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	counts := make(map[string]int)

	for rows.Next() {
		var (
			assignee string
			count    int
		)

		if err := rows.Scan(&assignee, &count); err != nil {
			return nil, fmt.Errorf("failed to scan ticket count: %w", err)
		}

		counts[assignee] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ticket counts: %w", err)
	}

	return counts, nil
}

func selectTicket(ctx context.Context, q querier, id string, forUpdate bool) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	ticket, err := scanTicket(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("TicketByID", id, persistence.ErrTicketNotFound)
		}

		return nil, fmt.Errorf("failed to scan ticket: %w", err)
	}

	return ticket, nil
}

func scanTicket(row *sql.Row) (*models.Ticket, error) {
	var (
		ticket     models.Ticket
		assignedTo sql.NullString
		slaDueAt   sql.NullTime
		fieldsJSON []byte
	)

	err := row.Scan(
		&ticket.ID,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Priority,
		&ticket.WorkflowTypeID,
		&ticket.CurrentStatusID,
		&assignedTo,
		&ticket.CreatedBy,
		&slaDueAt,
		&ticket.SLABreached,
		&fieldsJSON,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if assignedTo.Valid && assignedTo.String != "" {
		ticket.AssignedToID = &assignedTo.String
	}

	if slaDueAt.Valid {
		ticket.SLADueAt = &slaDueAt.Time
	}

	if len(fieldsJSON) > 0 {
		if err := json.Unmarshal(fieldsJSON, &ticket.Fields); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ticket fields: %w", err)
		}
	}

	return &ticket, nil
}

func saveTicket(ctx context.Context, q querier, ticket *models.Ticket) error {
	now := time.Now().UTC()

	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = now
	}

	ticket.UpdatedAt = now

	if ticket.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate ticket ID: %w", err)
		}

		ticket.ID = id.String()
	}

	fieldsJSON, err := json.Marshal(ticket.Fields)
	if err != nil {
		return fmt.Errorf("failed to marshal ticket fields: %w", err)
	}

	query := `
		INSERT INTO tickets (id, subject, description, priority, workflow_type_id,
			current_status_id, assigned_to_id, created_by, sla_due_at, sla_breached,
			fields, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			subject = EXCLUDED.subject,
			description = EXCLUDED.description,
			priority = EXCLUDED.priority,
			current_status_id = EXCLUDED.current_status_id,
			assigned_to_id = EXCLUDED.assigned_to_id,
			sla_due_at = EXCLUDED.sla_due_at,
			sla_breached = EXCLUDED.sla_breached,
			fields = EXCLUDED.fields,
			updated_at = EXCLUDED.updated_at
	`

	_, err = q.ExecContext(ctx, query,
		ticket.ID,
		ticket.Subject,
		ticket.Description,
		ticket.Priority,
		ticket.WorkflowTypeID,
		ticket.CurrentStatusID,
		ticket.AssignedToID,
		ticket.CreatedBy,
		ticket.SLADueAt,
		ticket.SLABreached,
		fieldsJSON,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save ticket: %w", err)
	}

	return nil
}

// UserRepository reads the user directory. User management itself is an
// external collaborator; this layer never writes users.
type UserRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *UserRepository) UserByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, name, email, role, telegram_chat_id, is_active, last_login_at
		FROM users
		WHERE id = $1
	`

	var (
		user        models.User
		lastLoginAt sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.TelegramChatID,
		&user.IsActive,
		&lastLoginAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("UserByID", id, persistence.ErrUserNotFound)
		}

		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}

	return &user, nil
}

// ActiveAgents returns active agents ordered oldest-login-first, the ordering
// the round_robin assignment rule relies on.
func (r *UserRepository) ActiveAgents(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT id, name, email, role, telegram_chat_id, is_active, last_login_at
		FROM users
		WHERE is_active AND role = 'agent'
		ORDER BY last_login_at ASC NULLS FIRST
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query agents: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	var agents []*models.User

	for rows.Next() {
		var (
			user        models.User
			lastLoginAt sql.NullTime
		)

		err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.Role,
			&user.TelegramChatID,
			&user.IsActive,
			&lastLoginAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}

		if lastLoginAt.Valid {
			user.LastLoginAt = &lastLoginAt.Time
		}

		agents = append(agents, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating agents: %w", err)
	}

	return agents, nil
}

// CommentRepository handles ticket comments.
type CommentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *CommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return insertComment(ctx, r.db, comment)
}

func (r *CommentRepository) CommentsForTicket(ctx context.Context, ticketID string) ([]*models.Comment, error) {
	query := `
		SELECT id, ticket_id, user_id, content, is_internal, created_at
		FROM ticket_comments
		WHERE ticket_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	comments := make([]*models.Comment, 0)

	for rows.Next() {
		var comment models.Comment

		err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.UserID,
			&comment.Content,
			&comment.IsInternal,
			&comment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}

		comments = append(comments, &comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return comments, nil
}

func insertComment(ctx context.Context, q querier, comment *models.Comment) error {
	if comment.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate comment ID: %w", err)
		}

		comment.ID = id.String()
	}

	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO ticket_comments (id, ticket_id, user_id, content, is_internal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := q.ExecContext(ctx, query,
		comment.ID,
		comment.TicketID,
		comment.UserID,
		comment.Content,
		comment.IsInternal,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}

	return nil
}

func closeRows(ctx context.Context, logger *slog.Logger, rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logger.ErrorContext(ctx, "failed to close rows", "error", err)
	}
}
