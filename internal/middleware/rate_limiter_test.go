package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRateLimiter creates a rate limiter backed by miniredis
func setupTestRateLimiter(t *testing.T, maxRequests int, window time.Duration) (*RateLimiter, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err, "Setup: miniredis should start")
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	rl := NewRateLimiter(client, RateLimiterConfig{
		MaxRequests: maxRequests,
		Window:      window,
		BlockTime:   5 * time.Minute,
	})
	return rl, mr
}

func newRateLimitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})
	return router
}

func doRequest(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsRequestsUnderLimit(t *testing.T) {
	rl, _ := setupTestRateLimiter(t, 5, time.Minute)
	router := newRateLimitedRouter(rl)

	for i := 0; i < 5; i++ {
		w := doRequest(router, "192.168.1.1")
		assert.Equal(t, http.StatusOK, w.Code, "Request %d should succeed", i+1)
	}
}

func TestRateLimiter_BlocksRequestsOverLimit(t *testing.T) {
	rl, _ := setupTestRateLimiter(t, 3, time.Minute)
	router := newRateLimitedRouter(rl)

	for i := 0; i < 3; i++ {
		w := doRequest(router, "192.168.1.1")
		assert.Equal(t, http.StatusOK, w.Code, "Request %d should succeed", i+1)
	}

	w := doRequest(router, "192.168.1.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code, "Request over the limit should be blocked")
	assert.NotEmpty(t, w.Header().Get("Retry-After"), "Blocked response should carry Retry-After")
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl, mr := setupTestRateLimiter(t, 2, time.Minute)
	router := newRateLimitedRouter(rl)

	doRequest(router, "192.168.1.1")
	doRequest(router, "192.168.1.1")
	w := doRequest(router, "192.168.1.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// After the window lapses the counter starts fresh
	mr.FastForward(2 * time.Minute)
	w = doRequest(router, "192.168.1.1")
	assert.Equal(t, http.StatusOK, w.Code, "Request after window reset should succeed")
}

func TestRateLimiter_CountsPerIP(t *testing.T) {
	rl, _ := setupTestRateLimiter(t, 2, time.Minute)
	router := newRateLimitedRouter(rl)

	doRequest(router, "192.168.1.1")
	doRequest(router, "192.168.1.1")
	w := doRequest(router, "192.168.1.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// A different client is unaffected
	w = doRequest(router, "10.0.0.7")
	assert.Equal(t, http.StatusOK, w.Code, "Other IPs should keep their own budget")
}

func TestRateLimiter_FailsOpenWhenRedisDown(t *testing.T) {
	rl, mr := setupTestRateLimiter(t, 1, time.Minute)
	router := newRateLimitedRouter(rl)

	mr.Close()

	w := doRequest(router, "192.168.1.1")
	assert.Equal(t, http.StatusOK, w.Code, "Redis outage should not block requests")
}
