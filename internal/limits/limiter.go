// Package limits throttles tool calls per client.
package limits

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// IdleTTL is how long an unused client bucket is kept.
const IdleTTL = 10 * time.Minute

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter keeps one token bucket per client address.
type KeyedLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*entry
	rate      rate.Limit
	burst     int
	now       func() time.Time
	lastSweep time.Time
}

// NewKeyedLimiter allows perMin requests per minute per client, bursting up to
// the same number. A non-positive value disables limiting.
func NewKeyedLimiter(perMin int) *KeyedLimiter {
	k := &KeyedLimiter{limiters: map[string]*entry{}, now: time.Now}
	if perMin <= 0 {
		k.rate = rate.Inf
		return k
	}
	k.rate = rate.Limit(float64(perMin) / 60.0)
	k.burst = perMin
	return k
}

func (k *KeyedLimiter) get(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	if now.Sub(k.lastSweep) >= IdleTTL {
		k.sweep(now)
	}

	e, ok := k.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(k.rate, k.burst)}
		k.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// sweep drops buckets idle for longer than IdleTTL. Callers hold k.mu.
func (k *KeyedLimiter) sweep(now time.Time) {
	for key, e := range k.limiters {
		if now.Sub(e.lastSeen) > IdleTTL {
			delete(k.limiters, key)
		}
	}
	k.lastSweep = now
}

// Len reports how many client buckets are held.
func (k *KeyedLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.limiters)
}

// Allow reports whether key may make a request now.
func (k *KeyedLimiter) Allow(key string) bool {
	return k.get(key).Allow()
}

// ClientKey identifies the caller by its peer address. X-Forwarded-For is
// only honored when the peer is a loopback proxy.
func ClientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		if fwd := strings.TrimSpace(strings.Split(r.Header.Get("X-Forwarded-For"), ",")[0]); fwd != "" {
			return fwd
		}
	}
	if host == "" {
		return "unknown"
	}
	return host
}

// Middleware rejects requests over the limit with 429. Only POSTs count:
// the long lived SSE stream is a GET and must not consume tokens.
func (k *KeyedLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			key := ClientKey(r)
			if !k.Allow(key) {
				slog.Warn("Rate limit exceeded", "client", key, "path", r.URL.Path)
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
