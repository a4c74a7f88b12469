package ratelimit

import (
	"sync"
	"time"
)

type entry struct {
	count     int
	resetTime time.Time
}

type Decision struct {
	Allowed   bool
	Remaining int
	ResetTime time.Time
}

// Limiter is a fixed-window counter keyed by an identifier string (referral
// token or client address). State lives in memory only, so limits reset on
// restart and are not shared between processes.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry

	max    int
	window time.Duration
	now    func() time.Time
	done   chan struct{}
}

func New(max int, window time.Duration) *Limiter {
	l := &Limiter{
		entries: make(map[string]*entry),
		max:     max,
		window:  window,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go l.sweep()
	return l
}

func (l *Limiter) Allow(id string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[id]
	if !ok || now.After(e.resetTime) {
		reset := now.Add(l.window)
		l.entries[id] = &entry{count: 1, resetTime: reset}
		return Decision{Allowed: true, Remaining: l.max - 1, ResetTime: reset}
	}

	if e.count >= l.max {
		return Decision{Allowed: false, Remaining: 0, ResetTime: e.resetTime}
	}

	e.count++
	return Decision{Allowed: true, Remaining: l.max - e.count, ResetTime: e.resetTime}
}

func (l *Limiter) Max() int { return l.max }

func (l *Limiter) sweep() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.removeExpired()
		case <-l.done:
			return
		}
	}
}

func (l *Limiter) removeExpired() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for id, e := range l.entries {
		if now.After(e.resetTime) {
			delete(l.entries, id)
		}
	}
}

func (l *Limiter) Close() {
	close(l.done)
}
