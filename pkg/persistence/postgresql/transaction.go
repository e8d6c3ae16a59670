package postgresql

import (
	"context"
	"database/sql"

	"github.com/haldesk/haldesk/pkg/models"
)

// sqlTransaction is the mutation surface handed to a transition while its
// database transaction is open. All statements run on the shared *sql.Tx.
type sqlTransaction struct {
	tx *sql.Tx
}

// TicketForTransition loads the ticket with SELECT ... FOR UPDATE. The row
// lock blocks concurrent transitions against the same ticket until this
// transaction commits or rolls back.
func (t *sqlTransaction) TicketForTransition(ctx context.Context, id string) (*models.Ticket, error) {
	return selectTicket(ctx, t.tx, id, true)
}

func (t *sqlTransaction) SaveTicket(ctx context.Context, ticket *models.Ticket) error {
	return saveTicket(ctx, t.tx, ticket)
}

func (t *sqlTransaction) CreateComment(ctx context.Context, comment *models.Comment) error {
	return insertComment(ctx, t.tx, comment)
}

func (t *sqlTransaction) AppendExecutionLog(ctx context.Context, log *models.WorkflowExecutionLog) error {
	return insertExecutionLog(ctx, t.tx, log)
}
