package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/haldesk/haldesk/pkg/persistence"
	"github.com/haldesk/haldesk/pkg/persistence/memory"
	"github.com/haldesk/haldesk/pkg/persistence/postgresql"
	"github.com/haldesk/haldesk/pkg/persistence/rediscache"
)

// NewPersistence creates the persistence layer selected by the database URL
// scheme. An empty or "memory" URL selects the in-memory store. A non-empty
// cacheURL wraps the store with the Redis definition cache.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL, cacheURL string) persistence.Persistence {
	store := newStore(ctx, logger, databaseURL)

	if cacheURL == "" {
		return store
	}

	cached, err := rediscache.NewPersistence(ctx, logger, store, cacheURL, 0)
	if err != nil {
		panic(fmt.Errorf("failed to create Redis cache layer: %w", err))
	}

	return cached
}

func newStore(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		store, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to create PostgreSQL persistence: %w", err))
		}

		return store
	case "", "memory":
		return memory.NewPersistence()
	default:
		panic("Unsupported persistence provider in database URL: " + databaseURL)
	}
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return databaseURL
	}

	return provider
}
