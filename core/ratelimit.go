package core

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// LoginRateLimiter throttles credential-guessing by client IP with a
// token bucket per address. Entries idle past the cleanup window are
// dropped by a background sweep.
type LoginRateLimiter struct {
	limit           rate.Limit
	burst           int
	cleanupInterval time.Duration

	mu       sync.Mutex
	limiters map[string]*ipLimiter
	stopCh   chan struct{}
}

type ipLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewLoginRateLimiter builds a limiter allowing perMin attempts per
// minute with the given burst, and starts the cleanup loop.
func NewLoginRateLimiter(perMin, burst int) *LoginRateLimiter {
	if perMin <= 0 {
		perMin = 10
	}
	if burst <= 0 {
		burst = perMin
	}
	rl := &LoginRateLimiter{
		limit:           rate.Limit(float64(perMin) / 60.0),
		burst:           burst,
		cleanupInterval: 5 * time.Minute,
		limiters:        make(map[string]*ipLimiter),
		stopCh:          make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop terminates the background cleanup goroutine.
func (rl *LoginRateLimiter) Stop() {
	close(rl.stopCh)
}

// Middleware rejects over-limit requests with 429.
func (rl *LoginRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			c.Header("Retry-After", "60")
			respondError(c, http.StatusTooManyRequests, "RATE_LIMITED", "too many login attempts, try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (rl *LoginRateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	ent, ok := rl.limiters[ip]
	if !ok {
		ent = &ipLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[ip] = ent
	}
	ent.lastAccess = time.Now()
	rl.mu.Unlock()
	return ent.limiter.Allow()
}

func (rl *LoginRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *LoginRateLimiter) cleanup() {
	ttl := rl.cleanupInterval * 2
	now := time.Now()
	rl.mu.Lock()
	for ip, ent := range rl.limiters {
		if now.Sub(ent.lastAccess) > ttl {
			delete(rl.limiters, ip)
		}
	}
	rl.mu.Unlock()
}
