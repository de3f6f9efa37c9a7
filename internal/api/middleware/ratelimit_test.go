package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/api/middleware"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/auth"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/config"
)

const testSecret = "test-secret"

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func setupTestEngine(t *testing.T, cfg *config.Config) (*gin.Engine, *middleware.RateLimiterMiddleware) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	r := gin.New()
	rateLimiter := middleware.NewRateLimiterMiddleware(ctx, cfg)
	r.Use(middleware.OptionalAuthMiddleware(testSecret))
	r.Use(rateLimiter.Limit())
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	return r, rateLimiter
}

func doGet(r *gin.Engine, remoteAddr, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = remoteAddr
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterMiddleware_HardLimit(t *testing.T) {
	cfg := &config.Config{
		RateLimitHardRefillRate: 1,
		RateLimitHardBucketSize: 1,
		RateLimitSoftRefillRate: 10,
		RateLimitSoftBucketSize: 10,
	}
	router, _ := setupTestEngine(t, cfg)

	assert.Equal(t, http.StatusOK, doGet(router, "1.2.3.4:12345", "").Code)
	w := doGet(router, "1.2.3.4:12345", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	// a different client has its own buckets
	assert.Equal(t, http.StatusOK, doGet(router, "4.3.2.1:12345", "").Code)
}

func TestRateLimiterMiddleware_SoftLimitAnonymous(t *testing.T) {
	cfg := &config.Config{
		RateLimitHardRefillRate: 10,
		RateLimitHardBucketSize: 10,
		RateLimitSoftRefillRate: 1,
		RateLimitSoftBucketSize: 1,
	}
	router, _ := setupTestEngine(t, cfg)

	assert.Equal(t, http.StatusOK, doGet(router, "5.6.7.8:12345", "").Code)
	w := doGet(router, "5.6.7.8:12345", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	var respBody map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Contains(t, respBody["error"], "sign in")
}

func TestRateLimiterMiddleware_SignedInSkipsSoftLimit(t *testing.T) {
	cfg := &config.Config{
		RateLimitHardRefillRate: 10,
		RateLimitHardBucketSize: 10,
		RateLimitSoftRefillRate: 1,
		RateLimitSoftBucketSize: 1,
	}
	router, limiter := setupTestEngine(t, cfg)
	token, err := auth.GenerateJWT("user-1", false, testSecret, time.Hour)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doGet(router, "9.1.2.3:12345", token).Code, "request %d", i)
	}
	// an invalid token is treated as anonymous
	assert.Equal(t, http.StatusOK, doGet(router, "9.1.2.3:12345", "garbage").Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(router, "9.1.2.3:12345", "garbage").Code)
	assert.Equal(t, 2, limiter.Clients())
}
