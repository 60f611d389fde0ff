package windowlimiter

import (
	"errors"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// Logger is the interface used for logging inside the middleware.
//
// Implement this interface to provide your own logging backend, or use one
// of the adapters under adapters/ (std log, zap, zerolog, logrus).
type Logger interface {
	Debugf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// ErrLimitExceeded is returned to error handlers when a client exceeds the
// quota for the current window.
//
// Users can use errors.Is(err, windowlimiter.ErrLimitExceeded) to detect
// this specific condition.
var ErrLimitExceeded = errors.New("rate limit exceeded")

// KeyFunc defines a function type that builds the raw counter key from an
// HTTP request.
//
// The key identifies the client and route being limited; the limiter's id
// normalization is applied on top of the returned value.
type KeyFunc func(r *http.Request) (string, error)

// ErrorHandler defines a function type that produces the response after a
// request is denied.
//
// This allows custom responses, e.g. JSON bodies or extra headers. The
// X-RateLimit-* headers are already set when the handler runs.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error, result Result)

// Config holds the configurable options for the middleware.
//
// Users typically create a Config via NewConfig and provide functional
// options.
type Config struct {
	KeyFunc      KeyFunc
	ErrorHandler ErrorHandler
	Logger       Logger
}

// Option defines a functional option type for configuring the middleware.
//
// Example:
//
//	cfg := NewConfig(
//	    WithLogger(myLogger),
//	    WithKeyFunc(myKeyFunc),
//	)
type Option func(*Config)

// NewConfig creates a Config with default settings, then applies any
// provided functional options.
func NewConfig(opts ...Option) *Config {
	cfg := &Config{
		KeyFunc: DefaultKeyFunc(),
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error, result Result) {
			retryAfter := int(math.Ceil(result.ResetAfter.Seconds()))
			if retryAfter <= 0 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

			body := result.Body
			if body == "" {
				body = defaultLimitMessage
			}
			http.Error(w, body, http.StatusTooManyRequests)
		},
		Logger: &noopLogger{},
	}

	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// DefaultKeyFunc returns the default key builder: client IP, method and
// path joined with colons, e.g. "10.0.0.1:GET:/items/42".
//
// The client IP is taken from the first X-Forwarded-For entry when
// present, then X-Real-IP, then the host part of RemoteAddr.
func DefaultKeyFunc() KeyFunc {
	return func(r *http.Request) (string, error) {
		return clientIP(r) + ":" + r.Method + ":" + r.URL.Path, nil
	}
}

func clientIP(r *http.Request) string {
	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

// WithKeyFunc returns an Option to set a custom KeyFunc.
func WithKeyFunc(f KeyFunc) Option {
	return func(c *Config) {
		if f != nil {
			c.KeyFunc = f
		}
	}
}

// WithErrorHandler returns an Option to set a custom ErrorHandler.
func WithErrorHandler(f ErrorHandler) Option {
	return func(c *Config) {
		if f != nil {
			c.ErrorHandler = f
		}
	}
}

// WithLogger returns an Option to set a custom Logger.
func WithLogger(l Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// noopLogger is a private default logger that does nothing.
type noopLogger struct{}

func (l *noopLogger) Debugf(format string, args ...interface{}) {}
func (l *noopLogger) Errorf(format string, args ...interface{}) {}
