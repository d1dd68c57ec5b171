package ratelimit

import (
	"sync"
	"testing"
	"time"
)

// fakeClock drives the limiter deterministically in tests.
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
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(max int, window time.Duration) (*SlidingWindow, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	limiter := New(max, window)
	limiter.now = clock.Now
	return limiter, clock
}

func TestSlidingWindow_GrantsUpToCeiling(t *testing.T) {
	limiter, _ := newTestLimiter(3, time.Second)

	for i := 0; i < 3; i++ {
		if !limiter.Allow() {
			t.Fatalf("Expected permit %d to be granted", i+1)
		}
	}

	// The excess call is denied, not errored.
	if limiter.Allow() {
		t.Error("Expected permit past ceiling to be denied")
	}
}

func TestSlidingWindow_WindowSlides(t *testing.T) {
	limiter, clock := newTestLimiter(2, time.Second)

	if !limiter.Allow() || !limiter.Allow() {
		t.Fatal("Expected initial permits to be granted")
	}
	if limiter.Allow() {
		t.Fatal("Expected third permit to be denied")
	}

	// After the window passes, the old timestamps are pruned.
	clock.Advance(1100 * time.Millisecond)

	if !limiter.Allow() {
		t.Error("Expected permit after window slid")
	}
}

func TestSlidingWindow_PartialSlide(t *testing.T) {
	limiter, clock := newTestLimiter(2, time.Second)

	if !limiter.Allow() {
		t.Fatal("Expected first permit")
	}

	clock.Advance(600 * time.Millisecond)
	if !limiter.Allow() {
		t.Fatal("Expected second permit")
	}
	if limiter.Allow() {
		t.Fatal("Expected denial at ceiling")
	}

	// Only the first timestamp has aged out after another 600ms.
	clock.Advance(600 * time.Millisecond)
	if !limiter.Allow() {
		t.Error("Expected one permit after first timestamp aged out")
	}
	if limiter.Allow() {
		t.Error("Expected denial, second timestamp still in window")
	}
}

func TestSlidingWindow_Remaining(t *testing.T) {
	limiter, _ := newTestLimiter(5, time.Second)

	if got := limiter.Remaining(); got != 5 {
		t.Errorf("Expected 5 remaining, got %d", got)
	}

	limiter.Allow()
	limiter.Allow()

	if got := limiter.Remaining(); got != 3 {
		t.Errorf("Expected 3 remaining, got %d", got)
	}
}

func TestSlidingWindow_Reset(t *testing.T) {
	limiter, _ := newTestLimiter(1, time.Second)

	limiter.Allow()
	if limiter.Allow() {
		t.Fatal("Expected denial at ceiling")
	}

	limiter.Reset()

	if !limiter.Allow() {
		t.Error("Expected permit after reset")
	}
}

func TestSlidingWindow_Concurrent(t *testing.T) {
	limiter := New(50, time.Second)

	var wg sync.WaitGroup
	granted := 0
	var mu sync.Mutex

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow() {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	if granted != 50 {
		t.Errorf("Expected exactly 50 grants, got %d", granted)
	}
}
