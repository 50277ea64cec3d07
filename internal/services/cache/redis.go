package cache

import (
	"context"
	"encoding/json"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "wordlens:"

// RedisTier is the optional second cache tier behind the in-process store.
// Values are stored as JSON with Redis-native TTLs. Every failure is logged
// and degraded to a miss/no-op; a nil *RedisTier behaves the same way, so
// callers never branch on whether the tier is configured.
type RedisTier struct {
	client *redis.Client
	prefix string
}

// NewRedisTier creates a tier from a Redis URL. Returns an error only for an
// unparseable URL; connectivity problems surface later as misses.
func NewRedisTier(redisURL, keyPrefix string) (*RedisTier, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	if keyPrefix == "" {
		keyPrefix = defaultRedisPrefix
	}

	return &RedisTier{
		client: redis.NewClient(opts),
		prefix: keyPrefix,
	}, nil
}

// GetJSON loads key into dest, reporting whether a live value was found.
func (t *RedisTier) GetJSON(ctx context.Context, key string, dest any) bool {
	if t == nil {
		return false
	}

	data, err := t.client.Get(ctx, t.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			fiberlog.Warnf("cache: redis tier get failed for %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		fiberlog.Warnf("cache: redis tier holds unreadable value for %s: %v", key, err)
		return false
	}
	return true
}

// SetJSON stores v under key with the given TTL. Failures degrade to a no-op.
func (t *RedisTier) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) bool {
	if t == nil {
		return false
	}

	data, err := json.Marshal(v)
	if err != nil {
		fiberlog.Warnf("cache: redis tier cannot marshal value for %s: %v", key, err)
		return false
	}
	if err := t.client.Set(ctx, t.prefix+key, data, ttl).Err(); err != nil {
		fiberlog.Warnf("cache: redis tier set failed for %s: %v", key, err)
		return false
	}
	return true
}

// DeleteMatching removes keys matching the glob-style pattern via SCAN.
// The pattern is applied after the tier's key prefix.
func (t *RedisTier) DeleteMatching(ctx context.Context, pattern string) int {
	if t == nil {
		return 0
	}

	removed := 0
	iter := t.client.Scan(ctx, 0, t.prefix+pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := t.client.Del(ctx, iter.Val()).Err(); err == nil {
			removed++
		}
	}
	if err := iter.Err(); err != nil {
		fiberlog.Warnf("cache: redis tier scan failed for pattern %s: %v", pattern, err)
	}
	return removed
}

// Flush removes every key under the tier's prefix.
func (t *RedisTier) Flush(ctx context.Context) {
	t.DeleteMatching(ctx, "*")
}

// Ping reports tier reachability for health checks.
func (t *RedisTier) Ping(ctx context.Context) error {
	if t == nil {
		return nil
	}
	return t.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (t *RedisTier) Close() error {
	if t == nil {
		return nil
	}
	return t.client.Close()
}
