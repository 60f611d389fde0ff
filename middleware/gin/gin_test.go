package gin_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gingonic "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	windowlimiter "github.com/windowlimit/go-window-limiter"
	ginmiddleware "github.com/windowlimit/go-window-limiter/middleware/gin"
	"github.com/windowlimit/go-window-limiter/store"
)

func newRouter(t *testing.T, limit int64, opts ...windowlimiter.LimiterOption) *gingonic.Engine {
	t.Helper()
	gingonic.SetMode(gingonic.TestMode)

	limiter, err := windowlimiter.New(store.NewMemory(context.Background(), 0), limit, time.Minute, opts...)
	require.NoError(t, err)

	router := gingonic.New()
	router.Use(ginmiddleware.RateLimiter(limiter))
	router.GET("/ping", func(c *gingonic.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router
}

func TestRateLimiter_AllowsAndDenies(t *testing.T) {
	router := newRouter(t, 2)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := send()
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "60000", rec.Header().Get("X-RateLimit-Window"))
	assert.Equal(t, "60000", rec.Header().Get("X-RateLimit-Reset"))

	rec = send()
	require.Equal(t, http.StatusOK, rec.Code)

	rec = send()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimiter_DenialBodyFromMessage(t *testing.T) {
	router := newRouter(t, 1,
		windowlimiter.WithLimitMessage(windowlimiter.StaticMessage("easy there")))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "easy there")
}

type erroringLimiter struct{}

func (erroringLimiter) Allow(ctx context.Context, key string) (windowlimiter.Result, error) {
	return windowlimiter.Result{}, errors.New("connection refused")
}

func (erroringLimiter) InternalErrorBody() string { return "limiter offline" }

func TestRateLimiter_StoreFault(t *testing.T) {
	gingonic.SetMode(gingonic.TestMode)

	router := gingonic.New()
	router.Use(ginmiddleware.RateLimiter(erroringLimiter{}))
	router.GET("/ping", func(c *gingonic.Context) {
		c.String(http.StatusOK, "pong")
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "limiter offline")
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}
