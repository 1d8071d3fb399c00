package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"eventbook/pkg/logger"
)

// IPRateLimiter keeps a fixed-window counter per client address. Entries are
// swept in the background so idle clients do not leak memory.
type IPRateLimiter struct {
	mu       sync.Mutex
	counts   map[string]*windowCount
	limit    int
	window   time.Duration
	log      *logger.Logger
	stopOnce sync.Once
	stop     chan struct{}
}

type windowCount struct {
	count       int
	windowStart time.Time
}

func NewIPRateLimiter(limit int, window time.Duration, log *logger.Logger) *IPRateLimiter {
	rl := &IPRateLimiter{
		counts: make(map[string]*windowCount),
		limit:  limit,
		window: window,
		log:    log,
		stop:   make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

func (rl *IPRateLimiter) allow(key string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	wc, ok := rl.counts[key]
	if !ok || now.Sub(wc.windowStart) >= rl.window {
		rl.counts[key] = &windowCount{count: 1, windowStart: now}
		return true
	}

	if wc.count >= rl.limit {
		return false
	}
	wc.count++
	return true
}

func (rl *IPRateLimiter) sweep() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-rl.window)
			rl.mu.Lock()
			for key, wc := range rl.counts {
				if wc.windowStart.Before(cutoff) {
					delete(rl.counts, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stop:
			return
		}
	}
}

func (rl *IPRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func RateLimit(rl *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			if !rl.allow(host) {
				rl.log.Warn("Rate limit exceeded",
					"request_id", RequestIDFromContext(r.Context()),
					"remote_addr", host,
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"message":"Too many requests"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
