package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/noah-isme/training-import/internal/models"
	appErrors "github.com/noah-isme/training-import/pkg/errors"
	"github.com/noah-isme/training-import/pkg/response"
)

// RateLimiterConfig tunes the per-caller token buckets guarding upload routes.
type RateLimiterConfig struct {
	Rate            rate.Limit
	Burst           int
	CleanupInterval time.Duration
}

type callerLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter keeps one token bucket per operator, falling back to client IP
// for anonymous callers.
type RateLimiter struct {
	config RateLimiterConfig
	logger *zap.Logger

	mu       sync.Mutex
	limiters map[string]*callerLimiter

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter starts a limiter and its background sweeper. Call Stop on
// shutdown.
func NewRateLimiter(config RateLimiterConfig, logger *zap.Logger) *RateLimiter {
	if config.Rate <= 0 {
		config.Rate = rate.Limit(2)
	}
	if config.Burst <= 0 {
		config.Burst = 5
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	rl := &RateLimiter{
		config:   config,
		logger:   logger,
		limiters: make(map[string]*callerLimiter),
		stopCh:   make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop halts the sweeper.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Middleware rejects callers that exhausted their bucket with 429 and a
// Retry-After hint.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := callerKey(c)
		if !rl.limiterFor(key).Allow() {
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(rl.config.Rate)))
			rl.logger.Warn("rate limit exceeded", zap.String("caller", key), zap.String("path", c.FullPath()))
			response.Error(c, appErrors.ErrTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Len reports how many callers are tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.limiters[key]
	if !ok {
		entry = &callerLimiter{limiter: rate.NewLimiter(rl.config.Rate, rl.config.Burst)}
		rl.limiters[key] = entry
	}
	entry.lastAccess = time.Now()
	return entry.limiter
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

// sweep drops buckets idle for more than two cleanup intervals.
func (rl *RateLimiter) sweep(now time.Time) {
	ttl := rl.config.CleanupInterval * 2
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, entry := range rl.limiters {
		if now.Sub(entry.lastAccess) > ttl {
			delete(rl.limiters, key)
		}
	}
}

func callerKey(c *gin.Context) string {
	if operator := operatorFrom(c); operator != "" {
		return "op:" + operator
	}
	return "ip:" + c.ClientIP()
}

func operatorFrom(c *gin.Context) string {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return ""
	}
	if claims, ok := value.(*models.JWTClaims); ok && claims != nil {
		return claims.Operator
	}
	return ""
}

func retryAfterSeconds(r rate.Limit) int {
	if r <= 0 {
		return 1
	}
	seconds := int(math.Ceil(1.0 / float64(r)))
	if seconds < 1 {
		return 1
	}
	return seconds
}
