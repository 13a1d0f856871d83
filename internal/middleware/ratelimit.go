package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ptpcell/placement-backend/internal/response"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// KeyFunc picks the identity a request is counted against.
type KeyFunc func(c *gin.Context) string

// ByClientIP counts requests per client address.
func ByClientIP(c *gin.Context) string { return c.ClientIP() }

// ByUser counts requests per authenticated user, falling back to the client address.
func ByUser(c *gin.Context) string {
	if claims := GetClaims(c); claims != nil {
		return string(claims.TokenType) + ":" + strconv.Itoa(claims.UserID)
	}
	return c.ClientIP()
}

// RateLimiter is a fixed-window limiter shared across instances through Redis.
type RateLimiter struct {
	rdb    *redis.Client
	scope  string
	limit  int
	window time.Duration
	key    KeyFunc
	now    func() time.Time
}

// NewRateLimiter allows limit requests per window for each key in scope.
func NewRateLimiter(rdb *redis.Client, scope string, limit int, window time.Duration, key KeyFunc) *RateLimiter {
	return &RateLimiter{
		rdb:    rdb,
		scope:  scope,
		limit:  limit,
		window: window,
		key:    key,
		now:    time.Now,
	}
}

// Middleware returns a Gin middleware that rejects requests over the limit with 429.
// Redis errors let the request through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		bucket := rl.now().UnixNano() / int64(rl.window)
		key := fmt.Sprintf("ratelimit:%s:%s:%d", rl.scope, rl.key(c), bucket)
		ctx := c.Request.Context()

		n, err := rl.rdb.Incr(ctx, key).Result()
		if err != nil {
			log.Warn().Err(err).Str("scope", rl.scope).Msg("Rate limiter unavailable")
			c.Next()
			return
		}
		if n == 1 {
			rl.rdb.Expire(ctx, key, rl.window)
		}

		remaining := int64(rl.limit) - n
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if n > int64(rl.limit) {
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}
