// Package memory provides an in-memory persistence implementation used by
// tests and local development. Transactions serialize on one mutex, which
// also provides the per-ticket serialization the orchestrator relies on.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/haldesk/haldesk/pkg/models"
	"github.com/haldesk/haldesk/pkg/persistence"
)

// Persistence is the in-memory store aggregate.
type Persistence struct {
	mu sync.RWMutex
	// txMu serializes transactions; concurrent ExecuteInTransaction calls on
	// the same ticket observe each other's committed state.
	txMu sync.Mutex

	types       map[string]*models.WorkflowType
	statuses    map[string]*models.WorkflowStatus
	transitions map[string]*models.WorkflowTransition
	versions    map[string]*models.WorkflowVersion
	tickets     map[string]*models.Ticket
	users       map[string]*models.User
	comments    map[string][]*models.Comment
	logs        []*models.WorkflowExecutionLog
}

// NewPersistence creates an empty in-memory store.
func NewPersistence() *Persistence {
	return &Persistence{
		types:       make(map[string]*models.WorkflowType),
		statuses:    make(map[string]*models.WorkflowStatus),
		transitions: make(map[string]*models.WorkflowTransition),
		versions:    make(map[string]*models.WorkflowVersion),
		tickets:     make(map[string]*models.Ticket),
		users:       make(map[string]*models.User),
		comments:    make(map[string][]*models.Comment),
	}
}

func (p *Persistence) Definitions() persistence.Definitions     { return (*definitionStore)(p) }
func (p *Persistence) Tickets() persistence.Tickets             { return (*ticketStore)(p) }
func (p *Persistence) Users() persistence.Users                 { return (*userStore)(p) }
func (p *Persistence) Comments() persistence.Comments           { return (*commentStore)(p) }
func (p *Persistence) ExecutionLogs() persistence.ExecutionLogs { return (*executionLogStore)(p) }

// HealthCheck always succeeds for the in-memory store.
func (p *Persistence) HealthCheck(_ context.Context) error { return nil }

// Close is a no-op for the in-memory store.
func (p *Persistence) Close(_ context.Context) error { return nil }

// PutUser seeds a user. The Users contract itself is read-only because user
// management is an external collaborator.
func (p *Persistence) PutUser(user *models.User) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.users[user.ID] = user
}

// ExecuteInTransaction runs fn against a staged view of the store. Staged
// mutations become visible only when fn returns nil; an error discards them.
func (p *Persistence) ExecuteInTransaction(ctx context.Context, fn func(ctx context.Context, tx persistence.Transaction) error) error {
	p.txMu.Lock()
	defer p.txMu.Unlock()

	tx := &transaction{
		store:          p,
		stagedTickets:  make(map[string]*models.Ticket),
		stagedComments: nil,
		stagedLogs:     nil,
	}

	if err := fn(ctx, tx); err != nil {
		return err
	}

	tx.commit()

	return nil
}

type transaction struct {
	store          *Persistence
	stagedTickets  map[string]*models.Ticket
	stagedComments []*models.Comment
	stagedLogs     []*models.WorkflowExecutionLog
}

func (t *transaction) TicketForTransition(_ context.Context, id string) (*models.Ticket, error) {
	if staged, ok := t.stagedTickets[id]; ok {
		return staged, nil
	}

	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	ticket, ok := t.store.tickets[id]
	if !ok {
		return nil, persistence.NewStoreError("TicketForTransition", id, persistence.ErrTicketNotFound)
	}

	return copyTicket(ticket), nil
}

func (t *transaction) SaveTicket(_ context.Context, ticket *models.Ticket) error {
	ticket.UpdatedAt = time.Now().UTC()
	t.stagedTickets[ticket.ID] = ticket

	return nil
}

func (t *transaction) CreateComment(_ context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}

	comment.CreatedAt = time.Now().UTC()
	t.stagedComments = append(t.stagedComments, comment)

	return nil
}

func (t *transaction) AppendExecutionLog(_ context.Context, log *models.WorkflowExecutionLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}

	t.stagedLogs = append(t.stagedLogs, log)

	return nil
}

func (t *transaction) commit() {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	for id, ticket := range t.stagedTickets {
		t.store.tickets[id] = ticket
	}

	for _, comment := range t.stagedComments {
		t.store.comments[comment.TicketID] = append(t.store.comments[comment.TicketID], comment)
	}

	t.store.logs = append(t.store.logs, t.stagedLogs...)
}

type ticketStore Persistence

func (s *ticketStore) TicketByID(_ context.Context, id string) (*models.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ticket, ok := s.tickets[id]
	if !ok {
		return nil, persistence.NewStoreError("TicketByID", id, persistence.ErrTicketNotFound)
	}

	return copyTicket(ticket), nil
}

func (s *ticketStore) SaveTicket(_ context.Context, ticket *models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = now
	}

	ticket.UpdatedAt = now

	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}

	s.tickets[ticket.ID] = copyTicket(ticket)

	return nil
}

func (s *ticketStore) ActiveTicketCounts(_ context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)

	for _, ticket := range s.tickets {
		if ticket.AssignedToID == nil || *ticket.AssignedToID == "" {
			continue
		}

		if status, ok := s.statuses[ticket.CurrentStatusID]; ok && status.IsFinal {
			continue
		}

		counts[*ticket.AssignedToID]++
	}

	return counts, nil
}

type userStore Persistence

func (s *userStore) UserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, persistence.NewStoreError("UserByID", id, persistence.ErrUserNotFound)
	}

	return user, nil
}

func (s *userStore) ActiveAgents(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var agents []*models.User

	for _, user := range s.users {
		if user.IsActive && user.Role == "agent" {
			agents = append(agents, user)
		}
	}

	sort.Slice(agents, func(i, j int) bool {
		left, right := agents[i].LastLoginAt, agents[j].LastLoginAt
		if left == nil {
			return true
		}

		if right == nil {
			return false
		}

		return left.Before(*right)
	})

	return agents, nil
}

type commentStore Persistence

func (s *commentStore) CreateComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}

	comment.CreatedAt = time.Now().UTC()
	s.comments[comment.TicketID] = append(s.comments[comment.TicketID], comment)

	return nil
}

func (s *commentStore) CommentsForTicket(_ context.Context, ticketID string) ([]*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comments := make([]*models.Comment, len(s.comments[ticketID]))
	copy(comments, s.comments[ticketID])

	return comments, nil
}

func copyTicket(ticket *models.Ticket) *models.Ticket {
	clone := *ticket

	if ticket.AssignedToID != nil {
		assignee := *ticket.AssignedToID
		clone.AssignedToID = &assignee
	}

	if ticket.SLADueAt != nil {
		due := *ticket.SLADueAt
		clone.SLADueAt = &due
	}

	if ticket.Fields != nil {
		clone.Fields = make(map[string]any, len(ticket.Fields))
		for key, value := range ticket.Fields {
			clone.Fields[key] = value
		}
	}

	return &clone
}
