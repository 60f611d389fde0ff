package gin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	windowlimiter "github.com/windowlimit/go-window-limiter"
)

// faultMessenger is implemented by limiters that carry a configured body
// for store-fault responses.
type faultMessenger interface {
	InternalErrorBody() string
}

// RateLimiter creates a new Gin middleware handler.
//
// It uses the provided Limiter instance (the core admission logic) to
// check if a request should be allowed or denied, mirroring the net/http
// middleware: `X-RateLimit-*` headers on every decided request, 429 with
// the limiter's message on denial, 500 without a quota decision on store
// faults. The behavior can be customized by passing functional options,
// such as changing how a client is identified (WithKeyFunc) or how denials
// are rendered (WithErrorHandler).
//
// Example:
//
//	limiter, _ := windowlimiter.New(store, 100, time.Minute)
//	router := gin.Default()
//	router.Use(ginmiddleware.RateLimiter(limiter))
func RateLimiter(limiter windowlimiter.Limiter, options ...windowlimiter.Option) gin.HandlerFunc {
	cfg := windowlimiter.NewConfig(options...)

	return func(c *gin.Context) {
		key, err := cfg.KeyFunc(c.Request)
		if err != nil {
			cfg.Logger.Errorf("Failed to extract key: %v", err)
			abortWithFault(c, limiter)
			return
		}

		result, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			cfg.Logger.Errorf("Limiter failed for key '%s': %v", key, err)
			abortWithFault(c, limiter)
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Window", strconv.FormatInt(result.Window.Milliseconds(), 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAfter.Milliseconds(), 10))

		if !result.Allowed {
			cfg.Logger.Debugf(
				"Request denied for key '%s'. Count: %d, Limit: %d",
				key, result.Count, result.Limit,
			)
			cfg.ErrorHandler(c.Writer, c.Request, windowlimiter.ErrLimitExceeded, result)
			c.Abort()
			return
		}

		cfg.Logger.Debugf(
			"Request allowed for key '%s'. Remaining: %d, Limit: %d",
			key, result.Remaining, result.Limit,
		)

		c.Next()
	}
}

func abortWithFault(c *gin.Context, limiter windowlimiter.Limiter) {
	body := http.StatusText(http.StatusInternalServerError)
	if fm, ok := limiter.(faultMessenger); ok {
		body = fm.InternalErrorBody()
	}
	c.String(http.StatusInternalServerError, body)
	c.Abort()
}
