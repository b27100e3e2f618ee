// Package ratelimit implements a per-key sliding-window request limiter.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks request timestamps per key inside a sliding window. All
// state lives under one mutex; eviction of expired timestamps happens on
// each call rather than in a background sweeper.
type Limiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	history map[string][]time.Time
	now     func() time.Time
}

// New creates a limiter allowing max requests per key per window.
func New(max int, window time.Duration) *Limiter {
	return &Limiter{
		max:     max,
		window:  window,
		history: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Allow reports whether a request for key may proceed, along with the
// remaining quota after this request and the seconds until the window
// resets. The request is recorded only when allowed.
func (l *Limiter) Allow(key string) (allowed bool, remaining int, resetSeconds int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	timestamps := l.evict(key, now)

	if len(timestamps) >= l.max {
		return false, 0, l.reset(timestamps, now)
	}

	timestamps = append(timestamps, now)
	l.history[key] = timestamps

	remaining = l.max - len(timestamps)
	if remaining < 0 {
		remaining = 0
	}
	return true, remaining, l.reset(timestamps, now)
}

// evict drops timestamps that fell out of the window and prunes empty keys.
func (l *Limiter) evict(key string, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	timestamps := l.history[key]
	kept := timestamps[:0]
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(l.history, key)
		return nil
	}
	l.history[key] = kept
	return kept
}

// reset computes seconds until the oldest surviving timestamp leaves the
// window. An empty history resets after a full window.
func (l *Limiter) reset(timestamps []time.Time, now time.Time) int {
	if len(timestamps) == 0 {
		return int(l.window.Seconds())
	}
	until := timestamps[0].Add(l.window).Sub(now)
	if until < 0 {
		until = 0
	}
	return int(until.Seconds())
}

// Stats returns a snapshot of limiter state for the metrics endpoint.
func (l *Limiter) Stats() map[string]any {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	total := 0
	active := 0
	for _, timestamps := range l.history {
		inWindow := 0
		for _, ts := range timestamps {
			if ts.After(cutoff) {
				inWindow++
			}
		}
		if inWindow > 0 {
			active++
			total += inWindow
		}
	}
	return map[string]any{
		"active_ips":               active,
		"total_requests_in_window": total,
		"max_requests":             l.max,
		"window_seconds":           int(l.window.Seconds()),
	}
}

// Clear drops all recorded history.
func (l *Limiter) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.history = make(map[string][]time.Time)
}
