package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRateLimitedRouter(t *testing.T, rps float64, burst int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := gin.New()
	router.Use(IdentityMiddleware("X-User-Id", logger))
	router.Use(RateLimitMiddleware(ctx, rps, burst, logger))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func requestAs(router *gin.Engine, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-User-Id", userID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	router := newRateLimitedRouter(t, 10.0, 20)

	for range 5 {
		assert.Equal(t, http.StatusOK, requestAs(router, "alice").Code)
	}
}

func TestRateLimitMiddleware_BlocksRequestsExceedingLimit(t *testing.T) {
	router := newRateLimitedRouter(t, 1.0, 2)

	assert.Equal(t, http.StatusOK, requestAs(router, "alice").Code)
	assert.Equal(t, http.StatusOK, requestAs(router, "alice").Code)

	w := requestAs(router, "alice")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimitMiddleware_IndependentPerUser(t *testing.T) {
	router := newRateLimitedRouter(t, 1.0, 1)

	assert.Equal(t, http.StatusOK, requestAs(router, "alice").Code)
	assert.Equal(t, http.StatusTooManyRequests, requestAs(router, "alice").Code)
	assert.Equal(t, http.StatusOK, requestAs(router, "bob").Code)
}

func TestRateLimitMiddleware_RequiresIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router := gin.New()
	router.Use(RateLimitMiddleware(ctx, 1, 1, slog.New(slog.NewTextHandler(io.Discard, nil))))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimiterStore_Sweep(t *testing.T) {
	store := &rateLimiterStore{rps: 1, burst: 1}
	store.getLimiter("alice")
	store.getLimiter("bob")

	store.sweep(time.Now().Add(time.Minute))

	count := 0
	store.limiters.Range(func(_, _ any) bool {
		count++
		return true
	})
	assert.Zero(t, count)
}
