package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests advance time without sleeping
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(rpm int) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	l := NewLimiter(rpm)
	l.now = clock.Now
	return l, clock
}

func TestLimiter(t *testing.T) {
	t.Run("minimum interval between requests", func(t *testing.T) {
		l, clock := newTestLimiter(60) // minInterval = 1s

		if !l.Allow() {
			t.Fatal("first request should be allowed")
		}
		l.Record()

		if l.Allow() {
			t.Error("request should be denied inside the minimum interval")
		}

		clock.Advance(time.Second)
		if !l.Allow() {
			t.Error("request should be allowed after the minimum interval")
		}
	})

	t.Run("window cap", func(t *testing.T) {
		l, clock := newTestLimiter(5) // minInterval = 12s

		for i := 0; i < 5; i++ {
			if !l.Allow() {
				t.Fatalf("request %d should be allowed", i)
			}
			l.Record()
			clock.Advance(12 * time.Second)
		}

		// window holds 5 requests; interval gate alone would allow
		if l.Allow() {
			t.Error("request should be denied with the window full")
		}

		// oldest request leaves the window
		clock.Advance(time.Minute)
		if !l.Allow() {
			t.Error("request should be allowed after the window slides")
		}
	})

	t.Run("entry aged exactly one window still counts", func(t *testing.T) {
		l, clock := newTestLimiter(1)

		l.Record()
		clock.Advance(time.Minute)

		if got := l.InFlight(); got != 1 {
			t.Errorf("InFlight = %d at the window boundary, want 1", got)
		}
		if l.Allow() {
			t.Error("request should be denied while the boundary entry counts")
		}

		clock.Advance(time.Nanosecond)
		if !l.Allow() {
			t.Error("request should be allowed once the entry is strictly older")
		}
	})

	t.Run("old requests pruned", func(t *testing.T) {
		l, clock := newTestLimiter(10)

		l.Record()
		l.Record()
		if got := l.InFlight(); got != 2 {
			t.Fatalf("InFlight = %d, want 2", got)
		}

		clock.Advance(2 * time.Minute)
		if got := l.InFlight(); got != 0 {
			t.Errorf("InFlight = %d after window elapsed, want 0", got)
		}
	})

	t.Run("disabled limiter always allows", func(t *testing.T) {
		l, _ := newTestLimiter(0)
		for i := 0; i < 100; i++ {
			if !l.Allow() {
				t.Fatal("disabled limiter denied a request")
			}
			l.Record()
		}
	})

	t.Run("wait respects context cancellation", func(t *testing.T) {
		l, _ := newTestLimiter(60)
		l.Record() // interval gate now blocks

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := l.Wait(ctx)
		if err != context.DeadlineExceeded {
			t.Errorf("Wait error = %v, want context.DeadlineExceeded", err)
		}
	})

	t.Run("wait returns immediately when allowed", func(t *testing.T) {
		l, _ := newTestLimiter(60)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if err := l.Wait(ctx); err != nil {
			t.Errorf("Wait error = %v, want nil", err)
		}
	})

	t.Run("concurrent access", func(t *testing.T) {
		l, _ := newTestLimiter(1000)
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				l.Allow()
				l.Record()
				l.InFlight()
			}()
		}
		wg.Wait()

		if got := l.InFlight(); got != 50 {
			t.Errorf("InFlight = %d, want 50", got)
		}
	})
}
