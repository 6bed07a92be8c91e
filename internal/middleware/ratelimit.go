package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit applies per-caller token-bucket rate limiting. Buckets are
// keyed by API key when auth set one, otherwise by client IP, so the
// no-auth local setup still gets a working limiter.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	return func(c *gin.Context) {
		bucket := c.ClientIP()
		if key, exists := c.Get("api_key"); exists {
			bucket = key.(string)
		}

		mu.Lock()
		limiter, exists := limiters[bucket]
		if !exists {
			limiter = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[bucket] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
