package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterInfo is a struct that holds a rate limiter and the last time it was seen.
type limiterInfo struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

func (l *limiterInfo) touch(now time.Time) {
	l.mu.Lock()
	l.lastSeen = now
	l.mu.Unlock()
}

func (l *limiterInfo) idleSince(now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return now.Sub(l.lastSeen)
}

// RateLimitByIP applies a token bucket of rps requests per second, with the
// given burst, to each client IP. Idle limiters are dropped after expiration.
// The cleanup goroutine stops when ctx is done.
func RateLimitByIP(ctx context.Context, rps float64, burst int, cleanupInterval, expiration time.Duration) gin.HandlerFunc {
	var limiters sync.Map

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				limiters.Range(func(key, value interface{}) bool {
					if value.(*limiterInfo).idleSince(now) > expiration {
						limiters.Delete(key)
					}
					return true
				})
			}
		}
	}()

	retryAfter := strconv.Itoa(int(max(1, 1/rps)))

	return func(c *gin.Context) {
		ip := c.ClientIP()

		actual, _ := limiters.LoadOrStore(ip, &limiterInfo{
			limiter:  rate.NewLimiter(rate.Limit(rps), burst),
			lastSeen: time.Now(),
		})

		info := actual.(*limiterInfo)
		info.touch(time.Now())

		if !info.limiter.Allow() {
			c.Header("Retry-After", retryAfter)
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}

		c.Next()
	}
}
