package windowlimiter

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// WindowLimiter implements windowed admission control against a shared Store.
//
// It limits the number of requests (Limit) within a rolling time frame
// (Window). The first request for a key creates a counter entry with a full
// window's expiry; subsequent requests are counted against it until the
// store expires the entry and the window resets.
//
// Example usage:
//
//	store := store.NewMemory(ctx, time.Minute)
//	limiter, err := windowlimiter.New(store, 100, time.Minute)
//	result, err := limiter.Allow(ctx, "GET:/items:10.0.0.1")
//	if result.Allowed {
//	    // process request
//	} else {
//	    // reject request
//	}
type WindowLimiter struct {
	store  Store
	limit  int64
	window time.Duration

	idPattern     *regexp.Regexp
	idPlaceholder string

	limitMessage  Message
	internalError string
}

// LimiterOption configures a WindowLimiter during construction.
type LimiterOption func(*WindowLimiter) error

// WithRequestSpreading transforms the configured quota into a strict
// one-request-per-sub-window cadence: the limit becomes 1 and the window
// becomes window/limit, spreading admissions evenly instead of allowing
// the full quota to burst at the start of each window.
//
// The transform is applied once, at construction time; the transformed
// values then behave as an ordinary limit and window.
func WithRequestSpreading() LimiterOption {
	return func(l *WindowLimiter) error {
		l.window /= time.Duration(l.limit)
		l.limit = 1
		return nil
	}
}

// WithIDNormalizer configures key normalization: the first region of the
// raw key matching pattern is replaced with placeholder before counting,
// so distinct resource instances accessed by the same client share one
// counter (for example `/items/42` and `/items/97` collapse to
// `/items/:id`).
//
// placeholder must be non-empty when a pattern is supplied.
func WithIDNormalizer(pattern *regexp.Regexp, placeholder string) LimiterOption {
	return func(l *WindowLimiter) error {
		if pattern != nil && placeholder == "" {
			return fmt.Errorf("windowlimiter: placeholder is required when an id pattern is set")
		}
		l.idPattern = pattern
		l.idPlaceholder = placeholder
		return nil
	}
}

// WithLimitMessage sets the message rendered as the rejection body when a
// request is denied. See StaticMessage and MessageFunc.
func WithLimitMessage(m Message) LimiterOption {
	return func(l *WindowLimiter) error {
		l.limitMessage = m
		return nil
	}
}

// WithInternalErrorMessage sets the body returned when the underlying
// store cannot be reached or reports an error.
func WithInternalErrorMessage(msg string) LimiterOption {
	return func(l *WindowLimiter) error {
		l.internalError = msg
		return nil
	}
}

// New creates a WindowLimiter.
//
// Parameters:
//   - store: a Store implementation holding the shared counter state
//   - limit: maximum number of requests allowed per window, must be positive
//   - window: window length, must be positive
//   - opts: optional configuration (spreading, id normalization, messages)
//
// All configuration is validated here and never per request; an invalid
// option makes New fail before any request is processed.
func New(store Store, limit int64, window time.Duration, opts ...LimiterOption) (*WindowLimiter, error) {
	if store == nil {
		return nil, fmt.Errorf("windowlimiter: store is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("windowlimiter: limit must be positive, got %d", limit)
	}
	if window <= 0 {
		return nil, fmt.Errorf("windowlimiter: window must be positive, got %s", window)
	}

	l := &WindowLimiter{
		store:         store,
		limit:         limit,
		window:        window,
		internalError: defaultInternalErrorMessage,
	}

	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// Limit returns the effective per-window quota (after any spreading
// transform).
func (l *WindowLimiter) Limit() int64 { return l.limit }

// Window returns the effective window length (after any spreading
// transform).
func (l *WindowLimiter) Window() time.Duration { return l.window }

// InternalErrorBody returns the body to send when a store fault prevents
// an admission decision. Middleware discovers it via interface assertion.
func (l *WindowLimiter) InternalErrorBody() string { return l.internalError }

// Allow checks whether a request with the given key is admitted in the
// current window.
//
// The check is an ordered sequence of store operations: existence check,
// count read, TTL read, conditional atomic increment, conditional expiry.
// The ordering matters; later steps depend on earlier results, and any
// store fault aborts the sequence and is returned to the caller, with no
// decision made. Once the quota is reached the counter is not incremented
// further, so the stored count stays an accurate history of the window.
//
// The count and TTL reads may be stale under concurrent same-key traffic;
// the atomic increment is the correctness boundary, and its return value
// is consulted so that no more than Limit requests are ever admitted per
// window. A fault between the increment and the expiry update can leave a
// counter without a fresh TTL; this narrow inconsistency is accepted and
// never retried or rolled back.
func (l *WindowLimiter) Allow(ctx context.Context, key string) (Result, error) {
	key = l.deriveKey(key)

	exists, err := l.store.Exists(ctx, key)
	if err != nil {
		return Result{}, err
	}

	count := int64(1)
	ttl := l.window
	if exists {
		stored, err := l.store.Count(ctx, key)
		if err != nil {
			return Result{}, err
		}
		count = stored + 1

		ttl, err = l.store.TTL(ctx, key)
		if err != nil {
			return Result{}, err
		}
	}

	atLimit := count > l.limit
	if !atLimit {
		n, err := l.store.Increment(ctx, key)
		if err != nil {
			return Result{}, err
		}
		if n > l.limit {
			// A concurrent request for the same key took the last slot
			// between the count read and the increment.
			count = n
			atLimit = true
		} else {
			// On a fresh key this establishes the window's lifetime; on an
			// existing key it re-applies the observed remaining TTL, so the
			// countdown is never extended by repeat requests.
			if err := l.store.Expire(ctx, key, ttl); err != nil {
				return Result{}, err
			}
		}
	}

	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}

	result := Result{
		Allowed:    !atLimit,
		Count:      count,
		Limit:      l.limit,
		Remaining:  remaining,
		Window:     l.window,
		ResetAfter: ttl,
	}
	if atLimit {
		result.Body = l.limitMessage.Render(ttl)
	}
	return result, nil
}
