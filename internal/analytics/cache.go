package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	versionKey        = "cost_analysis:version"
	invalidateChannel = "cost_analysis.bump"
)

// Cache is a versioned Redis cache for cost-analysis payloads. Every key
// embeds the current version number; invalidation bumps the version so all
// previously cached payloads fall out of reach at once and expire via TTL.
// A nil client degrades to a pass-through, which keeps the analytics stack
// usable without Redis (local dev, tests).
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache wraps the given Redis client. ttl bounds how long a stale
// generation can linger after a version bump.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// Version returns the current cache generation, initialising it to 1 when
// missing or corrupted.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey).Int64()
	switch {
	case err == redis.Nil, err == nil && ver <= 0:
		if setErr := c.client.Set(ctx, versionKey, 1, 0).Err(); setErr != nil {
			return 0, setErr
		}
		return 1, nil
	case err != nil:
		return 0, err
	}
	return ver, nil
}

// BuildKey joins the parts and appends the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if !c.enabled() {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", joined, ver), nil
}

// FetchJSON returns the cached payload for key, or runs the loader and
// stores its result. dest is always populated through a JSON round trip so
// cache hits and misses produce identical values.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("analytics: cache loader required")
	}
	if c.enabled() {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			return json.Unmarshal(payload, dest)
		}
		if err != redis.Nil {
			return err
		}
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c.enabled() {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return err
		}
	}
	return json.Unmarshal(raw, dest)
}

// Invalidate bumps the version and broadcasts the new value so other
// instances converge. Purchase, product and sale writes call this through
// their invalidation port.
func (c *Cache) Invalidate(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	ver, err := c.client.Incr(ctx, versionKey).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, invalidateChannel, strconv.FormatInt(ver, 10)).Err()
}

// ListenForInvalidation follows version bump broadcasts from other
// instances until ctx is cancelled.
func (c *Cache) ListenForInvalidation(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	pubsub := c.client.Subscribe(ctx, invalidateChannel)
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if ver, err := strconv.ParseInt(msg.Payload, 10, 64); err == nil && ver > 0 {
					_ = c.client.Set(ctx, versionKey, ver, 0).Err()
					continue
				}
				_ = c.client.Incr(ctx, versionKey).Err()
			}
		}
	}()
	return nil
}
