package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/config"
)

const (
	clientCleanupInterval = 10 * time.Minute
	clientIdleTimeout     = 30 * time.Minute
)

// clientLimiter stores rate limiters for a specific client.
type clientLimiter struct {
	softLimiter *rate.Limiter
	hardLimiter *rate.Limiter
	lastSeen    time.Time
}

// RateLimiterMiddleware keeps two token buckets per client. Every request
// draws from the hard bucket; anonymous requests also draw from the
// smaller soft bucket, so signed-in users get the higher ceiling.
type RateLimiterMiddleware struct {
	clients map[string]*clientLimiter
	mu      sync.Mutex
	cfg     *config.Config
	now     func() time.Time
}

// NewRateLimiterMiddleware creates a new RateLimiterMiddleware. Idle clients
// are dropped by a janitor goroutine that exits when ctx is cancelled.
func NewRateLimiterMiddleware(ctx context.Context, cfg *config.Config) *RateLimiterMiddleware {
	rm := &RateLimiterMiddleware{
		clients: make(map[string]*clientLimiter),
		cfg:     cfg,
		now:     time.Now,
	}
	go rm.cleanupClients(ctx)
	return rm
}

// getClientIdentifier keys authenticated callers by user id and everyone
// else by IP.
func getClientIdentifier(c *gin.Context) string {
	if userID := UserID(c); userID != "" {
		return "user:" + userID
	}
	return "ip:" + c.ClientIP()
}

// getClientLimiter retrieves or creates the rate limiters for a given client identifier.
func (rm *RateLimiterMiddleware) getClientLimiter(identifier string) *clientLimiter {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	limiter, exists := rm.clients[identifier]
	if !exists {
		limiter = &clientLimiter{
			softLimiter: rate.NewLimiter(rate.Limit(rm.cfg.RateLimitSoftRefillRate), rm.cfg.RateLimitSoftBucketSize),
			hardLimiter: rate.NewLimiter(rate.Limit(rm.cfg.RateLimitHardRefillRate), rm.cfg.RateLimitHardBucketSize),
		}
		rm.clients[identifier] = limiter
		zap.L().Debug("created rate limiter entry", zap.String("client", identifier))
	}
	limiter.lastSeen = rm.now()
	return limiter
}

// cleanupClients periodically removes old client entries from the map.
func (rm *RateLimiterMiddleware) cleanupClients(ctx context.Context) {
	ticker := time.NewTicker(clientCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rm.evictIdle(); n > 0 {
				zap.L().Debug("rate limiter cleanup", zap.Int("removed", n))
			}
		}
	}
}

func (rm *RateLimiterMiddleware) evictIdle() int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	count := 0
	for id, client := range rm.clients {
		if rm.now().Sub(client.lastSeen) > clientIdleTimeout {
			delete(rm.clients, id)
			count++
		}
	}
	return count
}

// Clients returns how many clients are currently tracked.
func (rm *RateLimiterMiddleware) Clients() int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.clients)
}

// Limit creates the Gin middleware handler. It must run after
// OptionalAuthMiddleware for authenticated callers to be recognised.
func (rm *RateLimiterMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientKey := getClientIdentifier(c)
		limiter := rm.getClientLimiter(clientKey)

		if !limiter.hardLimiter.Allow() {
			zap.L().Info("hard rate limit exceeded", zap.String("client", clientKey), zap.String("path", c.FullPath()))
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}

		if UserID(c) == "" && !limiter.softLimiter.Allow() {
			zap.L().Info("soft rate limit exceeded", zap.String("client", clientKey), zap.String("path", c.FullPath()))
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, sign in for a higher limit"})
			return
		}

		c.Next()
	}
}
