package nethttp

import (
	"net/http"
	"strconv"

	windowlimiter "github.com/windowlimit/go-window-limiter"
)

// faultMessenger is implemented by limiters that carry a configured body
// for store-fault responses.
type faultMessenger interface {
	InternalErrorBody() string
}

// Middleware creates a new middleware handler for the standard `net/http`
// library.
//
// It wraps an existing `http.Handler` and checks incoming requests against
// the provided Limiter instance. On every decided request it adds the
// `X-RateLimit-*` headers to the response; denied requests receive a 429
// with the limiter's configured message, and store faults receive a 500
// without a quota decision. The behavior can be customized using
// functional options.
//
// Example:
//
//	limiter, _ := windowlimiter.New(store, 100, time.Minute)
//	mux := http.NewServeMux()
//	mux.HandleFunc("/", myHandler)
//
//	rateLimitMiddleware := nethttp.Middleware(limiter)
//	http.ListenAndServe(":8080", rateLimitMiddleware(mux))
func Middleware(limiter windowlimiter.Limiter, options ...windowlimiter.Option) func(http.Handler) http.Handler {
	cfg := windowlimiter.NewConfig(options...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, err := cfg.KeyFunc(r)
			if err != nil {
				cfg.Logger.Errorf("Failed to extract key: %v", err)
				writeFault(w, limiter)
				return
			}

			result, err := limiter.Allow(r.Context(), key)
			if err != nil {
				cfg.Logger.Errorf("Limiter failed for key '%s': %v", key, err)
				writeFault(w, limiter)
				return
			}

			setHeaders(w.Header(), result)

			if !result.Allowed {
				cfg.Logger.Debugf(
					"Request denied for key '%s'. Count: %d, Limit: %d",
					key, result.Count, result.Limit,
				)
				cfg.ErrorHandler(w, r, windowlimiter.ErrLimitExceeded, result)
				return
			}

			cfg.Logger.Debugf(
				"Request allowed for key '%s'. Remaining: %d, Limit: %d",
				key, result.Remaining, result.Limit,
			)
			next.ServeHTTP(w, r)
		})
	}
}

func setHeaders(h http.Header, result windowlimiter.Result) {
	h.Set("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
	h.Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
	h.Set("X-RateLimit-Window", strconv.FormatInt(result.Window.Milliseconds(), 10))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAfter.Milliseconds(), 10))
}

func writeFault(w http.ResponseWriter, limiter windowlimiter.Limiter) {
	body := http.StatusText(http.StatusInternalServerError)
	if fm, ok := limiter.(faultMessenger); ok {
		body = fm.InternalErrorBody()
	}
	http.Error(w, body, http.StatusInternalServerError)
}
