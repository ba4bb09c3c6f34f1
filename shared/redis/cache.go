package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/amadorcf/YourBank-account-service/shared/logger"
	goredis "github.com/redis/go-redis/v9"
)

// ViewCache is a generic JSON-backed Redis cache for read model projections.
// Bind it to a specific view type T; each instance holds a Redis client and an
// optional TTL (pass 0 for keys that should not expire).
type ViewCache[T any] struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewViewCache creates a ViewCache whose keys are prefix+id.
func NewViewCache[T any](client *goredis.Client, prefix string, ttl time.Duration) *ViewCache[T] {
	return &ViewCache[T]{client: client, prefix: prefix, ttl: ttl}
}

// Get retrieves and unmarshals the value stored for id.
// Returns (nil, false) on any miss, connection failure or deserialisation error.
func (c *ViewCache[T]) Get(ctx context.Context, id string) (*T, bool) {
	data, err := c.client.Get(ctx, c.prefix+id).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			logger.Warn("view cache read failed", logger.Fields{"key": c.prefix + id, "error": err.Error()})
		}
		return nil, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		logger.Warn("view cache entry undecodable", logger.Fields{"key": c.prefix + id, "error": err.Error()})
		return nil, false
	}
	return &v, true
}

// Set marshals value and stores it under id. Failures are logged and returned so
// callers holding a newer value can evict the stale entry.
func (c *ViewCache[T]) Set(ctx context.Context, id string, value *T) error {
	data, err := json.Marshal(value)
	if err != nil {
		logger.Error("view cache marshal failed", err, logger.Fields{"key": c.prefix + id})
		return fmt.Errorf("marshal %s%s: %w", c.prefix, id, err)
	}
	if err := c.client.Set(ctx, c.prefix+id, data, c.ttl).Err(); err != nil {
		logger.Error("view cache write failed", err, logger.Fields{"key": c.prefix + id})
		return fmt.Errorf("write %s%s: %w", c.prefix, id, err)
	}
	return nil
}

// Delete removes the entry stored for id.
func (c *ViewCache[T]) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, c.prefix+id).Err(); err != nil {
		logger.Error("view cache delete failed", err, logger.Fields{"key": c.prefix + id})
		return fmt.Errorf("delete %s%s: %w", c.prefix, id, err)
	}
	return nil
}
