package server

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tjfontaine/autodiag/internal/domain"
)

// RateLimiter throttles requests per client. Authenticated requests are
// keyed by client name, anonymous ones by remote IP.
type RateLimiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastPrune time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perSecond requests per client with the given burst.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		idle:    10 * time.Minute,
		now:     time.Now,
		clients: make(map[string]*clientLimiter),
	}
}

// Middleware rejects requests over the limit with 429 and writes
// x-ratelimit-* headers on every response.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		lim := rl.get(key)
		allowed := lim.Allow()

		h := w.Header()
		h.Set("x-ratelimit-limit-requests", strconv.Itoa(rl.burst))
		h.Set("x-ratelimit-remaining-requests", strconv.Itoa(max(0, int(lim.Tokens()))))

		if !allowed {
			wait := time.Second
			if rl.limit > 0 {
				wait = time.Duration(float64(time.Second) / float64(rl.limit))
			}
			h.Set("Retry-After", strconv.Itoa(max(1, int(wait.Round(time.Second).Seconds()))))
			AddLogField(r.Context(), "rate_limited", key)
			WriteError(w, domain.NewAPIError(domain.ErrorTypeRateLimit, "Too many requests. Please slow down."))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastPrune) > rl.idle {
		for k, c := range rl.clients {
			if now.Sub(c.lastSeen) > rl.idle {
				delete(rl.clients, k)
			}
		}
		rl.lastPrune = now
	}

	c, ok := rl.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

func clientKey(r *http.Request) string {
	if c := GetClient(r.Context()); c != nil {
		return "client:" + c.Name
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
