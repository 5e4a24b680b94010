package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter caps how often a key (client IP) may hit the checkout
// endpoints. Redirect initiations create gateway sessions, so unbounded
// calls would pile up remote state at PayPal.
type RateLimiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	span     time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type window struct {
	start time.Time
	count int
}

func NewRateLimiter(limit int, span time.Duration) *RateLimiter {
	r := &RateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		span:    span,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go r.sweep()
	return r
}

// Stop terminates the background sweeper. Safe to call more than once.
func (r *RateLimiter) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// Allow counts one request against key's current window. It returns whether
// the request may proceed and, when it may not, how long until the window
// resets.
func (r *RateLimiter) Allow(key string) (bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	w := r.windows[key]
	if w == nil || now.Sub(w.start) >= r.span {
		r.windows[key] = &window{start: now, count: 1}
		return true, 0
	}
	if w.count >= r.limit {
		return false, w.start.Add(r.span).Sub(now)
	}
	w.count++
	return true, 0
}

func (r *RateLimiter) sweep() {
	tick := time.NewTicker(time.Minute)
	defer tick.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-tick.C:
			r.mu.Lock()
			now := r.now()
			for k, w := range r.windows {
				if now.Sub(w.start) >= r.span {
					delete(r.windows, k)
				}
			}
			r.mu.Unlock()
		}
	}
}

// RateLimit limits by client IP and answers 429 with a Retry-After hint.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := limiter.Allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(wait/time.Second)+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
