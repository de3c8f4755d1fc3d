// ABOUTME: Thread-safe fixed-window rate limiter keyed by client address.
// ABOUTME: Used by the HTTP gateway to cap API request volume per client.

package ratelimit

import (
	"sync"
	"time"
)

// window tracks one client's request count within its current window.
type window struct {
	start time.Time
	count int
}

// Limiter provides a thread-safe, fixed-window rate limiter. Each key gets
// at most limit requests per window; the count resets when a new window
// begins. A background goroutine periodically drops stale windows so the
// table does not grow with every client address ever seen.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	done    chan struct{}
	closed  bool

	// now is swappable for tests.
	now func() time.Time
}

// New creates a limiter allowing limit requests per period for each key.
// A background goroutine periodically cleans up expired windows.
func New(limit int, period time.Duration) *Limiter {
	l := &Limiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		done:    make(chan struct{}),
		now:     time.Now,
	}
	go l.cleanup()
	return l
}

// Allow reports whether a request for the key fits in its current window,
// counting it if so. Once a key's window is exhausted every further request
// is rejected until the window expires.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.period {
		l.windows[key] = &window{start: now, count: 1}
		return true
	}

	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// cleanup runs in a background goroutine, periodically removing expired windows.
func (l *Limiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.runCleanup()
		case <-l.done:
			return
		}
	}
}

// runCleanup removes all expired windows from the table.
func (l *Limiter) runCleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.period {
			delete(l.windows, key)
		}
	}
}

// Close stops the background cleanup goroutine. It is safe to call multiple times.
func (l *Limiter) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.closed {
		close(l.done)
		l.closed = true
	}
}
