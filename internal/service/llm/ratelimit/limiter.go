// Package ratelimit gates outbound LLM API calls with a sliding-window
// request counter combined with a minimum interval between requests.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const window = time.Minute

// Limiter enforces a per-minute request cap and a minimum spacing
// between consecutive requests. A zero or negative requests-per-minute
// disables the limiter entirely.
type Limiter struct {
	mu          sync.Mutex
	maxRequests int
	minInterval time.Duration
	requests    []time.Time
	last        time.Time
	now         func() time.Time
}

// NewLimiter creates a limiter allowing requestsPerMinute requests
func NewLimiter(requestsPerMinute int) *Limiter {
	l := &Limiter{
		maxRequests: requestsPerMinute,
		now:         time.Now,
	}
	if requestsPerMinute > 0 {
		l.minInterval = window / time.Duration(requestsPerMinute)
	}
	return l
}

// Allow reports whether a request may be made right now. It does not
// record the request; call Record once the request is actually sent.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.allowLocked(l.now())
}

// Record registers that a request was sent
func (l *Limiter) Record() {
	if l.maxRequests <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.requests = append(l.requests, now)
	l.last = now
}

// Wait blocks until a request may be made or the context is cancelled
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.now()
		if l.allowLocked(now) {
			l.mu.Unlock()
			return nil
		}
		delay := l.nextDelayLocked(now)
		l.mu.Unlock()

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// InFlight returns the number of requests recorded inside the current window
func (l *Limiter) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pruneLocked(l.now())
	return len(l.requests)
}

// allowLocked checks both gates. Callers must hold mu.
func (l *Limiter) allowLocked(now time.Time) bool {
	if l.maxRequests <= 0 {
		return true
	}

	l.pruneLocked(now)

	if len(l.requests) >= l.maxRequests {
		return false
	}
	if !l.last.IsZero() && now.Sub(l.last) < l.minInterval {
		return false
	}
	return true
}

// nextDelayLocked computes how long to sleep before the next check.
// Callers must hold mu.
func (l *Limiter) nextDelayLocked(now time.Time) time.Duration {
	// interval gate: remaining spacing
	delay := l.minInterval - now.Sub(l.last)

	// window gate: time until the oldest request leaves the window
	if len(l.requests) >= l.maxRequests {
		if until := l.requests[0].Add(window).Sub(now); until > delay {
			delay = until
		}
	}

	if delay <= 0 {
		delay = time.Millisecond
	}
	return delay
}

// pruneLocked drops requests strictly older than the window; an entry
// aged exactly one window still counts. Callers must hold mu.
func (l *Limiter) pruneLocked(now time.Time) {
	cutoff := now.Add(-window)
	i := 0
	for i < len(l.requests) && l.requests[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		l.requests = append(l.requests[:0], l.requests[i:]...)
	}
}
