// Package ratelimit implements the sliding-window evaluation rate limiter.
//
// The limiter is a denial-of-service guard, not a correctness guard: a
// denial tells the caller to skip the evaluation silently, never to fail it.
package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindow caps the number of permits granted within a rolling time
// window. It records a timestamp per granted permit and prunes timestamps
// older than the window on every check, so the reported count can never
// exceed the ceiling for any window-sized interval. Safe for concurrent use.
type SlidingWindow struct {
	max    int
	window time.Duration

	mu     sync.Mutex
	stamps []time.Time

	// now is the clock source, replaceable in tests.
	now func() time.Time
}

// New creates a sliding-window limiter granting at most max permits per
// window.
func New(max int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		max:    max,
		window: window,
		now:    time.Now,
	}
}

// Allow reports whether another evaluation may proceed, recording it when
// granted.
func (s *SlidingWindow) Allow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)

	if len(s.stamps) >= s.max {
		return false
	}

	s.stamps = append(s.stamps, now)
	return true
}

// Remaining returns how many permits are left in the current window.
func (s *SlidingWindow) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(s.now())
	return s.max - len(s.stamps)
}

// Reset clears all recorded permits.
func (s *SlidingWindow) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamps = s.stamps[:0]
}

// pruneLocked drops timestamps older than the window. Caller must hold the
// lock. Timestamps are appended in order, so pruning only trims the front.
func (s *SlidingWindow) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)

	keep := 0
	for keep < len(s.stamps) && !s.stamps[keep].After(cutoff) {
		keep++
	}

	if keep > 0 {
		s.stamps = append(s.stamps[:0], s.stamps[keep:]...)
	}
}
