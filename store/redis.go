package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	windowlimiter "github.com/windowlimit/go-window-limiter"
)

// RedisStore implements the windowlimiter.Store interface using Redis as
// the backend. It is suitable for distributed systems where multiple
// application instances need to share one global quota per key.
//
// Each primitive maps to a single Redis command: EXISTS, GET, INCR, PTTL
// and PEXPIRE. INCR is Redis's atomic increment and creates absent keys at
// 1 without an expiry, which is exactly the create-if-absent semantics the
// limiter's protocol relies on. No other Redis features are used.
type RedisStore struct {
	client *redis.Client
}

var _ windowlimiter.Store = (*RedisStore)(nil)

// NewRedis creates a new RedisStore and verifies connectivity with a
// bounded ping.
func NewRedis(client *redis.Client) (*RedisStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Close releases the underlying client connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Exists reports whether a counter entry exists for the key.
func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Count returns the current counter value for the key.
func (s *RedisStore) Count(ctx context.Context, key string) (int64, error) {
	return s.client.Get(ctx, key).Int64()
}

// Increment atomically increments the counter, creating it at 1 when
// absent.
func (s *RedisStore) Increment(ctx context.Context, key string) (int64, error) {
	return s.client.Incr(ctx, key).Result()
}

// TTL returns the key's remaining lifetime with millisecond precision.
// Keys without an expiry, or keys that expired between calls, report 0.
func (s *RedisStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := s.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, nil
	}
	return d, nil
}

// Expire sets the key's remaining lifetime via PEXPIRE. Re-applying the
// currently observed TTL leaves the countdown unchanged, which is how the
// limiter avoids extending a window on repeat requests.
func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.PExpire(ctx, key, ttl).Err()
}
