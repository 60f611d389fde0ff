// Package windowlimiter provides windowed request admission control backed
// by a shared key-value store.
//
// Every incoming request is mapped to a derived key (client identity plus
// route, with variable resource identifiers normalized away) and counted
// against a quota over a rolling time window. The counting state lives in
// an external store (Redis in production, an in-process store for tests),
// so many request-handling processes can share one global quota.
//
// The package defines three core abstractions:
//   - Limiter: the admission check interface (implemented by WindowLimiter)
//   - Store: backend interface exposing the five counter primitives
//     (existence check, count read, atomic increment, TTL read, set expiry)
//   - Result: struct containing the outcome of an admission check, useful
//     for the X-RateLimit-* HTTP headers
package windowlimiter

import (
	"context"
	"time"
)

// Result contains the outcome of an admission check.
//
// It provides the data needed to populate the rate-limiting HTTP headers
// `X-RateLimit-Limit`, `X-RateLimit-Remaining`, `X-RateLimit-Window` and
// `X-RateLimit-Reset`.
type Result struct {
	// Allowed indicates whether the request is permitted.
	Allowed bool
	// Count is this request's ordinal position within the current window,
	// including the request itself.
	Count int64
	// Limit is the total number of requests allowed in the current window.
	Limit int64
	// Remaining is the number of requests left in the current window.
	// It never goes negative.
	Remaining int64
	// Window is the configured window length.
	Window time.Duration
	// ResetAfter is the remaining time until the current window expires
	// and the counter resets.
	ResetAfter time.Duration
	// Body is the rendered rejection body when the request is denied,
	// and empty otherwise.
	Body string
}

// Limiter defines the interface for admission checks.
//
// Middleware and users interact with Limiter to enforce quotas on requests.
type Limiter interface {
	// Allow checks if a request is permitted for a given key.
	//
	// Parameters:
	//   - ctx: context for cancellation and timeouts
	//   - key: raw identifier for the client and route; the implementation
	//     may normalize it before counting
	//
	// Returns:
	//   - Result: contains the outcome and headers-related info
	//   - error: any store fault that occurred while checking the limit
	Allow(ctx context.Context, key string) (Result, error)
}

// Store defines the interface for the shared counter state.
//
// This abstraction allows interchangeable backends such as an in-memory
// store or Redis for distributed admission control. Implementations must
// be safe for concurrent use; Increment must be a true atomic operation,
// since it is the correctness boundary for concurrent same-key requests.
type Store interface {
	// Exists reports whether a counter entry exists for the key.
	Exists(ctx context.Context, key string) (bool, error)

	// Count returns the current counter value for the key.
	// Behavior for an absent key is unspecified; the limiter only calls
	// Count after Exists reported true.
	Count(ctx context.Context, key string) (int64, error)

	// Increment atomically increments the counter for the key and returns
	// the new value. If the key does not exist, it is created with a value
	// of 1 and no expiry; the limiter applies the expiry separately.
	Increment(ctx context.Context, key string) (int64, error)

	// TTL returns the remaining time until the key expires. Implementations
	// return 0 when the key has no expiry or has already expired.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Expire sets the key's remaining lifetime with millisecond precision.
	Expire(ctx context.Context, key string, ttl time.Duration) error
}
