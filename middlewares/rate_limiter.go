package middlewares

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"flipbook/metrics"
)

// RateLimiter throttles each client IP to limit requests per window. The
// visitor table is dropped every window so idle IPs do not accumulate.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*rate.Limiter
	limit     int
	resetTime time.Duration
}

// NewRateLimiter allows limit requests per resetTime per IP, with bursts of
// up to limit. The cleanup loop stops when ctx is done.
func NewRateLimiter(ctx context.Context, limit int, resetTime time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors:  make(map[string]*rate.Limiter),
		limit:     limit,
		resetTime: resetTime,
	}
	go rl.resetLoop(ctx)
	return rl
}

func (rl *RateLimiter) resetLoop(ctx context.Context) {
	ticker := time.NewTicker(rl.resetTime)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.mu.Lock()
			rl.visitors = make(map[string]*rate.Limiter)
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	l, ok := rl.visitors[ip]
	if !ok {
		every := rl.resetTime / time.Duration(rl.limit)
		l = rate.NewLimiter(rate.Every(every), rl.limit)
		rl.visitors[ip] = l
	}
	return l
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiter(c.ClientIP()).Allow() {
			metrics.RateLimited.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, try again later"})
			return
		}
		c.Next()
	}
}
