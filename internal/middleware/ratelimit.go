package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/mfai/ambassador/api/internal/metrics"
	"github.com/mfai/ambassador/api/internal/model"
	"go.uber.org/zap"
)

// RateLimiter is an in-memory token bucket per client key. A bucket holds
// up to rate+burst tokens and regains rate tokens per window.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    int
	window  time.Duration
	burst   int
	now     func() time.Time

	cleanup  time.Duration
	stopOnce sync.Once
	stopChan chan struct{}
}

type bucket struct {
	tokens   int
	refilled time.Time
}

// refill credits the tokens earned since the last refill. A whole window
// restores the bucket to capacity.
func (b *bucket) refill(now time.Time, rate, capacity int, window time.Duration) {
	elapsed := now.Sub(b.refilled)
	if elapsed >= window {
		b.tokens = capacity
		b.refilled = now
		return
	}

	earned := int(float64(rate) * float64(elapsed) / float64(window))
	if earned > 0 {
		b.tokens = min(b.tokens+earned, capacity)
		b.refilled = now
	}
}

// RateLimitConfig holds rate limiter configuration. Zero values take the
// defaults: 100 requests per minute, burst 20, cleanup every 5 minutes.
type RateLimitConfig struct {
	Rate    int
	Window  time.Duration
	Burst   int
	Cleanup time.Duration
}

// NewRateLimiter creates a limiter and starts its bucket cleanup loop.
// Call Stop to end the loop.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.Rate == 0 {
		cfg.Rate = 100
	}
	if cfg.Window == 0 {
		cfg.Window = time.Minute
	}
	if cfg.Burst == 0 {
		cfg.Burst = 20
	}
	if cfg.Cleanup == 0 {
		cfg.Cleanup = 5 * time.Minute
	}

	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		rate:     cfg.Rate,
		window:   cfg.Window,
		burst:    cfg.Burst,
		now:      time.Now,
		cleanup:  cfg.Cleanup,
		stopChan: make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop ends the cleanup loop. It may be called more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopChan) })
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupExpired()
		case <-rl.stopChan:
			return
		}
	}
}

// cleanupExpired drops buckets idle for two windows. Such a bucket would be
// full again, so forgetting it changes nothing for the client.
func (rl *RateLimiter) cleanupExpired() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-2 * rl.window)
	for key, b := range rl.buckets {
		if b.refilled.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
}

// Allow takes one token from key's bucket. It reports whether the request
// may proceed, the tokens left, and when the bucket is next fully refilled.
func (rl *RateLimiter) Allow(key string) (allowed bool, remaining int, resetTime time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	capacity := rl.rate + rl.burst

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: capacity, refilled: now}
		rl.buckets[key] = b
	} else {
		b.refill(now, rl.rate, capacity, rl.window)
	}

	reset := b.refilled.Add(rl.window)
	if b.tokens == 0 {
		return false, 0, reset
	}
	b.tokens--
	return true, b.tokens, reset
}

// Limit returns the configured requests per window
func (rl *RateLimiter) Limit() int {
	return rl.rate
}

// rateLimitKey buckets authenticated requests by ambassador and anonymous
// ones (register, login) by client IP
func rateLimitKey(r *http.Request) string {
	if id := GetAmbassadorID(r.Context()); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}

// RateLimit rejects requests over the limit with 429 and a Retry-After
// header. Every response carries the X-RateLimit-* headers.
func RateLimit(limiter *RateLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rateLimitKey(r)
			allowed, remaining, reset := limiter.Allow(key)

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

			if allowed {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := max(int(reset.Sub(limiter.now()).Seconds()), 1)
			h.Set("Retry-After", strconv.Itoa(retryAfter))
			metrics.RateLimitedTotal.Inc()

			zap.L().Warn("rate limit exceeded",
				zap.String("key", key),
				zap.String("path", r.URL.Path),
				zap.String("request_id", GetRequestID(r.Context())),
			)

			model.NewRateLimitError(retryAfter).WriteJSON(w)
		})
	}
}
