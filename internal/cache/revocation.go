// Package cache wraps the shared Redis connection behind the small
// key-value surface the auth core needs: TTL-expiring keys for the token
// deny list plus plain get/put/delete and set operations.  The client is
// created once at startup, injected where needed, and closed on shutdown.
package cache

import (
    "context"
    "errors"
    "time"

    "github.com/redis/go-redis/v9"
)

// revokedValue is the payload stored under a revoked jti.  Presence of the
// key is what matters; the value is only useful when inspecting Redis by
// hand.
const revokedValue = "revoked"

// Cache exposes Redis to the rest of the service.  Errors are always
// surfaced to the caller: for revocation checks an unreachable cache must
// fail the request, not silently pass it.
type Cache struct {
    rdb *redis.Client
}

func New(rdb *redis.Client) *Cache { return &Cache{rdb: rdb} }

// Put stores a value under a key with the given TTL.  A zero TTL keeps the
// key until it is deleted.
func (c *Cache) Put(ctx context.Context, key, value string, ttl time.Duration) error {
    return c.rdb.Set(ctx, key, value, ttl).Err()
}

// Get returns the value stored under key.  The second return value is
// false when the key is absent or already expired.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
    v, err := c.rdb.Get(ctx, key).Result()
    if errors.Is(err, redis.Nil) {
        return "", false, nil
    }
    if err != nil {
        return "", false, err
    }
    return v, true, nil
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) error {
    return c.rdb.Del(ctx, key).Err()
}

// SAdd adds a member to the set stored under key.
func (c *Cache) SAdd(ctx context.Context, key, member string) error {
    return c.rdb.SAdd(ctx, key, member).Err()
}

// SRem removes a member from the set stored under key.
func (c *Cache) SRem(ctx context.Context, key, member string) error {
    return c.rdb.SRem(ctx, key, member).Err()
}

// SMembers returns all members of the set stored under key.
func (c *Cache) SMembers(ctx context.Context, key string) ([]string, error) {
    return c.rdb.SMembers(ctx, key).Result()
}

// Revoke marks a token identifier as revoked for ttl.  The entry expires
// together with the token it shadows, so the deny list never needs manual
// cleanup.
func (c *Cache) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
    return c.Put(ctx, jtiKey(jti), revokedValue, ttl)
}

// IsRevoked reports whether a token identifier is on the deny list.  A
// Redis error is returned unchanged; callers treat it as a hard failure of
// the decode path.
func (c *Cache) IsRevoked(ctx context.Context, jti string) (bool, error) {
    _, found, err := c.Get(ctx, jtiKey(jti))
    if err != nil {
        return false, err
    }
    return found, nil
}

// Close releases the underlying Redis connection.  Called once during
// shutdown.
func (c *Cache) Close() error { return c.rdb.Close() }

func jtiKey(jti string) string { return "revoked:" + jti }
