package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mindhaven-app/mindhaven/backend/pkg/utils"
)

// Idle buckets are dropped so the pool stays bounded on a public endpoint.
const (
	limiterIdleTTL  = 10 * time.Minute
	limiterSweepGap = time.Minute
)

// limiterPool hands out one token bucket per client address.
type limiterPool struct {
	mu        sync.Mutex
	m         map[string]*limiterEntry
	rps       float64
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.now == nil {
		p.now = time.Now
	}
	now := p.now()

	if p.m == nil {
		p.m = make(map[string]*limiterEntry)
		p.lastSweep = now
	}
	if now.Sub(p.lastSweep) >= limiterSweepGap {
		for k, e := range p.m {
			if now.Sub(e.lastSeen) >= limiterIdleTTL {
				delete(p.m, k)
			}
		}
		p.lastSweep = now
	}

	e, ok := p.m[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(p.rps), p.burst)}
		p.m[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// RateLimit rejects clients exceeding rps sustained requests per second with
// the given burst. The key is the remote IP, so it should run after RealIP.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 10
	}
	pool := &limiterPool{rps: rps, burst: burst}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
				key = host
			}

			if !pool.get(key).Allow() {
				utils.RespondError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
