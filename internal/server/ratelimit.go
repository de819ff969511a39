package server

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/KaramelBytes/datadeck/internal/apperr"
)

const limiterIdle = 10 * time.Minute

// rateLimiter holds one token bucket per client address. Stale buckets are
// pruned when new clients arrive, so no cleanup goroutine is needed.
type rateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	clock    clockwork.Clock
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newRateLimiter allows perMinute requests per client per minute. A
// non-positive value returns nil, which allows everything.
func newRateLimiter(perMinute int, clock clockwork.Clock) *rateLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &rateLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		clock:    clock,
	}
}

// allow reports whether key may proceed and, if not, how long to wait.
func (rl *rateLimiter) allow(key string) (bool, time.Duration) {
	if rl == nil {
		return true, 0
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	e, ok := rl.limiters[key]
	if !ok {
		for k, old := range rl.limiters {
			if now.Sub(old.lastSeen) > limiterIdle {
				delete(rl.limiters, k)
			}
		}
		e = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = e
	}
	e.lastSeen = now

	res := e.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Minute
	}
	if d := res.DelayFrom(now); d > 0 {
		res.CancelAt(now)
		return false, d
	}
	return true, 0
}

func (rl *rateLimiter) middleware(s *Server) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retry := rl.allow(clientIP(r))
			if !ok {
				secs := int(retry.Seconds())
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", fmt.Sprintf("%d", secs))
				s.writeError(w, apperr.New(apperr.CodeRateLimited, "too many uploads, try again in %d seconds", secs), 0)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
