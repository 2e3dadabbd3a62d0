package http

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// rateLimiter throttles mutating requests per client IP. Reads are never
// counted: list and dashboard traffic is absorbed by the dashboard cache,
// while creates, deletes and CSV imports hit storage and fan out AMQP
// events, so only those carry a budget.
type rateLimiter struct {
	mu        sync.Mutex
	perMinute int
	clients   map[string]*clientWindow
	done      chan struct{}
	stopOnce  sync.Once
}

// clientWindow counts one client's mutations inside a fixed one-minute
// window. The window is not sliding: it opens on the first mutation and a
// new one opens on the first mutation after it expires.
type clientWindow struct {
	start time.Time
	count int
}

// newRateLimiter builds a limiter allowing perMinute mutations per client
// per minute. Non-positive budgets fall back to 60.
func newRateLimiter(perMinute int) *rateLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	rl := &rateLimiter{
		perMinute: perMinute,
		clients:   make(map[string]*clientWindow),
		done:      make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// allowRequest decides whether a request fits the client's budget.
// Non-mutating methods always pass and leave the counters untouched.
func (rl *rateLimiter) allowRequest(method, clientIP string, metrics *securityMetrics) bool {
	if method != http.MethodPost && method != http.MethodDelete {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.clients[clientIP]
	if !ok || now.Sub(w.start) > time.Minute {
		rl.clients[clientIP] = &clientWindow{start: now, count: 1}
		return true
	}

	w.count++
	if w.count > rl.perMinute {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	return true
}

// cleanupLoop periodically evicts windows of clients that went quiet.
func (rl *rateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.dropExpiredWindows()
		case <-rl.done:
			return
		}
	}
}

// dropExpiredWindows removes windows that opened more than 10 minutes ago.
func (rl *rateLimiter) dropExpiredWindows() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, w := range rl.clients {
		if w.start.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// stop shuts down the cleanup goroutine.
func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() {
		close(rl.done)
	})
}
