// Package store provides storage backends for
// github.com/windowlimit/go-window-limiter.
//
// Currently supported backends:
//   - MemoryStore: in-memory store for single-instance applications and tests
//   - RedisStore: Redis-based store for distributed applications
//
// Stores implement the windowlimiter.Store interface, exposing the five
// counter primitives the window protocol composes: existence check, count
// read, atomic increment, TTL read and set-expiry.
//
// Example usage:
//
//	ctx := context.Background()
//	store := store.NewMemory(ctx, time.Minute) // cleanup interval = 1 minute
//	limiter, err := windowlimiter.New(store, 100, time.Minute)
package store

import (
	"context"
	"sync"
	"time"

	windowlimiter "github.com/windowlimit/go-window-limiter"
)

// memoryEntry stores the counter value and expiration time for one key.
// A zero expiresAt means the key has no expiry yet, mirroring a Redis key
// created by INCR before PEXPIRE is applied.
type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryStore is an in-memory implementation of windowlimiter.Store.
//
// It mirrors the Redis semantics the limiter depends on: expired entries
// behave as absent, Increment creates missing keys at 1 without an expiry,
// and Expire sets the remaining lifetime. Optionally a background cleanup
// goroutine removes stale entries.
//
// Note: MemoryStore is suitable for single-instance applications; its
// state is local to the process, so it does not enforce a global quota
// across replicas.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

var _ windowlimiter.Store = (*MemoryStore)(nil)

// NewMemory creates a new MemoryStore instance.
//
// ctx: a parent context used to manage the lifecycle of the background
// cleanup goroutine.
// cleanupInterval: interval at which expired entries are removed. Pass 0
// to disable cleanup; expired entries are still invisible to reads, they
// just linger in memory until overwritten.
func NewMemory(ctx context.Context, cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
	}

	if cleanupInterval > 0 {
		go s.runCleanup(ctx, cleanupInterval)
	}

	return s
}

// Exists reports whether a live (non-expired) entry exists for the key.
func (s *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	if e.expired(time.Now()) {
		delete(s.entries, key)
		return false, nil
	}
	return true, nil
}

// Count returns the current counter value, or 0 for absent/expired keys.
func (s *MemoryStore) Count(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.expired(time.Now()) {
		return 0, nil
	}
	return e.count, nil
}

// Increment atomically increments the counter for the key, creating it at
// 1 (with no expiry) when absent or expired.
func (s *MemoryStore) Increment(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.expired(time.Now()) {
		e = memoryEntry{count: 1}
	} else {
		e.count++
	}

	s.entries[key] = e
	return e.count, nil
}

// TTL returns the remaining lifetime of the key, or 0 when the key is
// absent, expired, or has no expiry set.
func (s *MemoryStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	e, ok := s.entries[key]
	if !ok || e.expiresAt.IsZero() || e.expired(now) {
		return 0, nil
	}
	return e.expiresAt.Sub(now), nil
}

// Expire sets the key's remaining lifetime. A non-positive ttl removes the
// key immediately, matching PEXPIRE.
func (s *MemoryStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.expired(time.Now()) {
		return nil
	}
	if ttl <= 0 {
		delete(s.entries, key)
		return nil
	}

	e.expiresAt = time.Now().Add(ttl)
	s.entries[key] = e
	return nil
}

// runCleanup periodically removes expired entries.
func (s *MemoryStore) runCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			now := time.Now()
			for key, e := range s.entries {
				if e.expired(now) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}
