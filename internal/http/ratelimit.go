package http

import (
	"net/http"
	"sync"
	"time"
)

const writeRequestsPerMinute = 60

// writeLimiter throttles write traffic per owner. Reads are never limited;
// a single user hammering creates or imports must not degrade the API for
// everyone else.
type writeLimiter struct {
	mu           sync.Mutex
	owners       map[string]*ownerWindow
	perMinute    int
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type ownerWindow struct {
	lastRequest time.Time
	requests    int
}

func newWriteLimiter(perMinute int) *writeLimiter {
	if perMinute <= 0 {
		perMinute = writeRequestsPerMinute
	}
	l := &writeLimiter{
		owners:      make(map[string]*ownerWindow),
		perMinute:   perMinute,
		stopCleanup: make(chan struct{}),
	}
	go l.startCleanup()
	return l
}

func (l *writeLimiter) allow(owner string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	window, exists := l.owners[owner]
	if !exists {
		l.owners[owner] = &ownerWindow{lastRequest: now, requests: 1}
		return true
	}

	// The counter resets only after a full minute of idle time.
	if now.Sub(window.lastRequest) > time.Minute {
		window.requests = 1
		window.lastRequest = now
		return true
	}

	window.requests++
	window.lastRequest = now
	return window.requests <= l.perMinute
}

func (l *writeLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanupStale()
		case <-l.stopCleanup:
			return
		}
	}
}

func (l *writeLimiter) cleanupStale() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for owner, window := range l.owners {
		if window.lastRequest.Before(cutoff) {
			delete(l.owners, owner)
		}
	}
}

func (l *writeLimiter) stop() {
	l.shutdownOnce.Do(func() {
		close(l.stopCleanup)
	})
}

// limitWrites rejects write requests from owners over their budget.
func (s *Server) limitWrites(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			if !s.limiter.allow(s.ownerID(r).String()) {
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
