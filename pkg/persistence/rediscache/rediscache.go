// Package rediscache layers a Redis read-through cache over another
// persistence implementation. Only workflow definitions are cached: they are
// read on every transition and change rarely. Tickets, comments and the audit
// log always hit the underlying store.
package rediscache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/haldesk/haldesk/pkg/persistence"
)

// DefaultTTL bounds staleness when an invalidation is missed, e.g. after a
// write from another process.
const DefaultTTL = 5 * time.Minute

// Persistence decorates an inner persistence layer with definition caching.
type Persistence struct {
	inner       persistence.Persistence
	client      redis.UniversalClient
	logger      *slog.Logger
	definitions *cachedDefinitions
}

// NewPersistence connects to Redis and wraps inner. A zero ttl selects
// DefaultTTL.
func NewPersistence(ctx context.Context, logger *slog.Logger, inner persistence.Persistence, redisURL string, ttl time.Duration) (*Persistence, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = client.Ping(pingCtx).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	cacheLogger := logger.With("module", "rediscache")

	return &Persistence{
		inner:  inner,
		client: client,
		logger: cacheLogger,
		definitions: &cachedDefinitions{
			inner:  inner.Definitions(),
			client: client,
			logger: cacheLogger,
			ttl:    ttl,
		},
	}, nil
}

func (p *Persistence) Definitions() persistence.Definitions     { return p.definitions }
func (p *Persistence) Tickets() persistence.Tickets             { return p.inner.Tickets() }
func (p *Persistence) Users() persistence.Users                 { return p.inner.Users() }
func (p *Persistence) Comments() persistence.Comments           { return p.inner.Comments() }
func (p *Persistence) ExecutionLogs() persistence.ExecutionLogs { return p.inner.ExecutionLogs() }

// ExecuteInTransaction delegates to the inner store. Transactions only touch
// tickets, comments and the audit log, none of which are cached.
func (p *Persistence) ExecuteInTransaction(ctx context.Context, fn func(ctx context.Context, tx persistence.Transaction) error) error {
	return p.inner.ExecuteInTransaction(ctx, fn)
}

// HealthCheck verifies both the cache and the underlying store.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}

	return p.inner.HealthCheck(ctx)
}

func (p *Persistence) Close(ctx context.Context) error {
	err := p.client.Close()
	if err != nil {
		p.logger.ErrorContext(ctx, "Error closing Redis client", "error", err)
	}

	return p.inner.Close(ctx)
}
