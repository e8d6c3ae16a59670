package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/haldesk/haldesk/pkg/models"
	"github.com/haldesk/haldesk/pkg/persistence"
)

const keyPrefix = "haldesk:definitions:"

// cachedDefinitions is a read-through cache in front of another Definitions
// store. Cache failures never fail a read; the store answers instead.
type cachedDefinitions struct {
	inner  persistence.Definitions
	client redis.UniversalClient
	logger *slog.Logger
	ttl    time.Duration
}

// readThrough returns the cached value under key, or loads it from the store
// and caches it. Not-found and other store errors are returned uncached.
func readThrough[T any](ctx context.Context, c *cachedDefinitions, key string, load func(context.Context) (T, error)) (T, error) {
	var zero T

	cached, err := c.client.Get(ctx, key).Bytes()

	switch {
	case err == nil:
		var value T
		if err := json.Unmarshal(cached, &value); err == nil {
			return value, nil
		}

		c.logger.WarnContext(ctx, "Discarding undecodable cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "Cache read failed", "key", key, "error", err)
	}

	value, err := load(ctx)
	if err != nil {
		return zero, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to encode cache entry", "key", key, "error", err)

		return value, nil
	}

	if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "Cache write failed", "key", key, "error", err)
	}

	return value, nil
}

func (c *cachedDefinitions) invalidate(ctx context.Context, keys ...string) {
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.WarnContext(ctx, "Cache invalidation failed", "keys", keys, "error", err)
	}
}

func typeKey(id string) string               { return keyPrefix + "type:" + id }
func typeNameKey(name string) string         { return keyPrefix + "type_name:" + name }
func typeListKey() string                    { return keyPrefix + "types" }
func statusKey(id string) string             { return keyPrefix + "status:" + id }
func statusListKey(typeID string) string     { return keyPrefix + "statuses:" + typeID }
func initialStatusKey(typeID string) string  { return keyPrefix + "initial:" + typeID }
func transitionKey(id string) string         { return keyPrefix + "transition:" + id }
func transitionListKey(typeID string) string { return keyPrefix + "transitions:" + typeID }

func (c *cachedDefinitions) SaveWorkflowType(ctx context.Context, workflowType *models.WorkflowType) error {
	if err := c.inner.SaveWorkflowType(ctx, workflowType); err != nil {
		return err
	}

	c.invalidate(ctx, typeKey(workflowType.ID), typeNameKey(workflowType.Name), typeListKey())

	return nil
}

func (c *cachedDefinitions) WorkflowTypeByID(ctx context.Context, id string) (*models.WorkflowType, error) {
	return readThrough(ctx, c, typeKey(id), func(ctx context.Context) (*models.WorkflowType, error) {
		return c.inner.WorkflowTypeByID(ctx, id)
	})
}

func (c *cachedDefinitions) WorkflowTypeByName(ctx context.Context, name string) (*models.WorkflowType, error) {
	return readThrough(ctx, c, typeNameKey(name), func(ctx context.Context) (*models.WorkflowType, error) {
		return c.inner.WorkflowTypeByName(ctx, name)
	})
}

func (c *cachedDefinitions) WorkflowTypes(ctx context.Context) ([]*models.WorkflowType, error) {
	return readThrough(ctx, c, typeListKey(), func(ctx context.Context) ([]*models.WorkflowType, error) {
		return c.inner.WorkflowTypes(ctx)
	})
}

func (c *cachedDefinitions) DeactivateWorkflowType(ctx context.Context, id string) error {
	// Resolve the name first so its lookup key can be invalidated too.
	var nameKey string

	if workflowType, err := c.inner.WorkflowTypeByID(ctx, id); err == nil {
		nameKey = typeNameKey(workflowType.Name)
	}

	if err := c.inner.DeactivateWorkflowType(ctx, id); err != nil {
		return err
	}

	keys := []string{typeKey(id), typeListKey()}
	if nameKey != "" {
		keys = append(keys, nameKey)
	}

	c.invalidate(ctx, keys...)

	return nil
}

func (c *cachedDefinitions) SaveStatus(ctx context.Context, status *models.WorkflowStatus) error {
	if err := c.inner.SaveStatus(ctx, status); err != nil {
		return err
	}

	c.invalidate(ctx,
		statusKey(status.ID),
		statusListKey(status.WorkflowTypeID),
		initialStatusKey(status.WorkflowTypeID),
	)

	return nil
}

func (c *cachedDefinitions) StatusByID(ctx context.Context, id string) (*models.WorkflowStatus, error) {
	return readThrough(ctx, c, statusKey(id), func(ctx context.Context) (*models.WorkflowStatus, error) {
		return c.inner.StatusByID(ctx, id)
	})
}

func (c *cachedDefinitions) StatusesForType(ctx context.Context, workflowTypeID string) ([]*models.WorkflowStatus, error) {
	return readThrough(ctx, c, statusListKey(workflowTypeID), func(ctx context.Context) ([]*models.WorkflowStatus, error) {
		return c.inner.StatusesForType(ctx, workflowTypeID)
	})
}

func (c *cachedDefinitions) InitialStatus(ctx context.Context, workflowTypeID string) (*models.WorkflowStatus, error) {
	return readThrough(ctx, c, initialStatusKey(workflowTypeID), func(ctx context.Context) (*models.WorkflowStatus, error) {
		return c.inner.InitialStatus(ctx, workflowTypeID)
	})
}

func (c *cachedDefinitions) SaveTransition(ctx context.Context, transition *models.WorkflowTransition) error {
	if err := c.inner.SaveTransition(ctx, transition); err != nil {
		return err
	}

	c.invalidate(ctx,
		transitionKey(transition.ID),
		transitionListKey(transition.WorkflowTypeID),
	)

	return nil
}

func (c *cachedDefinitions) TransitionByID(ctx context.Context, id string) (*models.WorkflowTransition, error) {
	return readThrough(ctx, c, transitionKey(id), func(ctx context.Context) (*models.WorkflowTransition, error) {
		return c.inner.TransitionByID(ctx, id)
	})
}

func (c *cachedDefinitions) TransitionsForType(ctx context.Context, workflowTypeID string) ([]*models.WorkflowTransition, error) {
	return readThrough(ctx, c, transitionListKey(workflowTypeID), func(ctx context.Context) ([]*models.WorkflowTransition, error) {
		return c.inner.TransitionsForType(ctx, workflowTypeID)
	})
}

// Versions are immutable snapshots and rarely read; they bypass the cache.

func (c *cachedDefinitions) SaveVersion(ctx context.Context, version *models.WorkflowVersion) error {
	return c.inner.SaveVersion(ctx, version)
}

func (c *cachedDefinitions) VersionByID(ctx context.Context, id string) (*models.WorkflowVersion, error) {
	return c.inner.VersionByID(ctx, id)
}

func (c *cachedDefinitions) VersionsForType(ctx context.Context, workflowTypeID string) ([]*models.WorkflowVersion, error) {
	return c.inner.VersionsForType(ctx, workflowTypeID)
}
