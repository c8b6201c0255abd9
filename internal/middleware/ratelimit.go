package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/forgo/lending/internal/model"
)

// RateLimiter gives every client host a token bucket for reserve and
// cancel calls. Buckets sit in an expiring LRU, so idle clients are
// forgotten without a sweeper of our own.
type RateLimiter struct {
	mu      sync.Mutex
	buckets *expirable.LRU[string, *rate.Limiter]
	limit   rate.Limit
	burst   int
}

// RateLimitConfig holds rate limiter configuration
type RateLimitConfig struct {
	Rate       int           // Sustained requests per window (default 100)
	Window     time.Duration // Time window (default 1 minute)
	Burst      int           // Bucket size (default 20)
	MaxClients int           // Client hosts tracked at once (default 10000)
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.Rate <= 0 {
		cfg.Rate = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 20
	}
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = 10000
	}

	limit := rate.Limit(float64(cfg.Rate) / cfg.Window.Seconds())

	// A bucket is dropped only after sitting idle long enough to refill,
	// so coming back to a fresh one grants nothing.
	idle := time.Duration(float64(cfg.Burst) / float64(limit) * float64(time.Second))
	if idle < cfg.Window {
		idle = cfg.Window
	}

	return &RateLimiter{
		buckets: expirable.NewLRU[string, *rate.Limiter](cfg.MaxClients, nil, idle),
		limit:   limit,
		burst:   cfg.Burst,
	}
}

// Allow takes a token from the client's bucket. When none is left it
// reports how long until one is.
func (rl *RateLimiter) Allow(client string) (allowed bool, remaining int, retryAfter time.Duration) {
	bucket := rl.bucket(client)

	now := time.Now()
	r := bucket.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, 0, delay
	}
	return true, int(bucket.TokensAt(now)), 0
}

func (rl *RateLimiter) bucket(client string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets.Get(client)
	if !ok {
		b = rate.NewLimiter(rl.limit, rl.burst)
	}
	// Add renews the idle deadline
	rl.buckets.Add(client, b)
	return b
}

// Tracked returns the number of client buckets currently held
func (rl *RateLimiter) Tracked() int {
	return rl.buckets.Len()
}

// RateLimit limits reserve and cancel calls per client. Reads, health
// checks and event streams pass through untouched.
func RateLimit(limiter *RateLimiter, clients Clients) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !mutatesReservations(r) {
				next.ServeHTTP(w, r)
				return
			}

			allowed, remaining, retryAfter := limiter.Allow(clients.Key(r))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))

				model.NewRateLimitError(seconds).WriteJSON(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
