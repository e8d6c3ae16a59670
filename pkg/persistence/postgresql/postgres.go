// Package postgresql provides the PostgreSQL persistence implementation for
// workflow definitions, tickets and the execution audit log.
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/haldesk/haldesk/pkg/persistence"
	"github.com/haldesk/haldesk/pkg/persistence/sqlbase"
)

// querier is satisfied by both *sql.DB and *sql.Tx so repositories can run
// inside or outside a transition's transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger

	definitions *DefinitionRepository
	tickets     *TicketRepository
	users       *UserRepository
	comments    *CommentRepository
	logs        *ExecutionLogRepository
}

// NewPersistence connects, migrates and returns a ready PostgreSQL layer.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:          database,
		logger:      logger,
		definitions: &DefinitionRepository{db: database, logger: logger},
		tickets:     &TicketRepository{db: database, logger: logger},
		users:       &UserRepository{db: database, logger: logger},
		comments:    &CommentRepository{db: database, logger: logger},
		logs:        &ExecutionLogRepository{db: database, logger: logger},
	}, nil
}

func (p *Persistence) Definitions() persistence.Definitions     { return p.definitions }
func (p *Persistence) Tickets() persistence.Tickets             { return p.tickets }
func (p *Persistence) Users() persistence.Users                 { return p.users }
func (p *Persistence) Comments() persistence.Comments           { return p.comments }
func (p *Persistence) ExecutionLogs() persistence.ExecutionLogs { return p.logs }

// ExecuteInTransaction runs fn inside one database transaction. The row lock
// taken by TicketForTransition serializes concurrent transitions per ticket.
func (p *Persistence) ExecuteInTransaction(ctx context.Context, fn func(ctx context.Context, tx persistence.Transaction) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	err = fn(ctx, &sqlTransaction{tx: tx})
	if err != nil {
		_ = tx.Rollback()

		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// mapConstraintError translates unique-violation errors into the store's
// sentinel errors.
func mapConstraintError(op, entity string, err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return err
	}

	switch pqErr.Constraint {
	case "workflow_types_name_key":
		return persistence.NewStoreError(op, entity, persistence.ErrDuplicateTypeName)
	case "workflow_statuses_workflow_type_id_name_key":
		return persistence.NewStoreError(op, entity, persistence.ErrDuplicateStatusName)
	case "workflow_statuses_single_initial":
		return persistence.NewStoreError(op, entity, persistence.ErrDuplicateInitialStatus)
	default:
		return err
	}
}
