package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ipLimiter pairs a token bucket with its last activity time so idle
// entries can be evicted.
type ipLimiter struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// RateLimitByIP caps requests per client IP. It guards the model-backed
// routes, where every request costs a Claude call. Buckets idle longer
// than expiration are swept every cleanupInterval.
func RateLimitByIP(rps int, cleanupInterval, expiration time.Duration) gin.HandlerFunc {
	var buckets sync.Map

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			buckets.Range(func(key, value interface{}) bool {
				if time.Since(value.(*ipLimiter).lastSeen) > expiration {
					buckets.Delete(key)
				}
				return true
			})
		}
	}()

	return func(c *gin.Context) {
		entry, _ := buckets.LoadOrStore(c.ClientIP(), &ipLimiter{
			bucket: rate.NewLimiter(rate.Limit(rps), rps),
		})
		lim := entry.(*ipLimiter)
		lim.lastSeen = time.Now()

		if !lim.bucket.Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Slow down a little and try again",
			})
			return
		}
		c.Next()
	}
}
