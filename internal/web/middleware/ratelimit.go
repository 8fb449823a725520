package middleware

import (
	"encoding/json"
	"errors"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/logging"
	"golang.org/x/time/rate"
)

// ErrRateLimited is reported when a client exceeds its request budget.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimiter is a per-client-IP token bucket.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	idleAfter time.Duration
	lastSweep time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows requests per window for each IP, with bursts of up
// to burst requests. A burst below 1 is raised to 1.
func NewRateLimiter(requests, burst int, window time.Duration) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		visitors:  make(map[string]*visitor),
		limit:     rate.Limit(float64(requests) / window.Seconds()),
		burst:     burst,
		idleAfter: 2 * window,
		lastSweep: time.Now(),
	}
}

// Allow reports whether ip may make a request now and consumes a token if so.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.sweep(now)

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// sweep drops visitors idle longer than idleAfter. Caller holds mu.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.idleAfter {
		return
	}
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.idleAfter {
			delete(rl.visitors, ip)
		}
	}
	rl.lastSweep = now
}

// Middleware rejects requests over the limit with 429 and a Retry-After
// header. Run it after TrustedRealIP so RemoteAddr is the client address.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if rl.Allow(ip) {
			next.ServeHTTP(w, r)
			return
		}

		logging.FromContext(r.Context()).Warn("rate limit exceeded",
			"ip", ip,
			"path", r.URL.Path,
		)

		retryAfter := 60
		if rl.limit > 0 {
			retryAfter = max(1, int(math.Ceil(1/float64(rl.limit))))
		}

		msg := core.MapError(ErrRateLimited)
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{
			"error":  msg.Message,
			"detail": ErrRateLimited.Error(),
			"code":   msg.Code,
			"action": msg.Action,
		})
	})
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
