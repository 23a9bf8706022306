// Package ratelimit provides token-bucket limiters for provider calls.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RealClock returns the wall clock.
func RealClock() Clock { return realClock{} }

// Limiter is a token bucket holding up to burst tokens and adding one
// token every interval.
type Limiter struct {
	mu         sync.Mutex
	clock      Clock
	tokens     int
	burst      int
	interval   time.Duration
	lastRefill time.Time
}

// New creates a limiter that starts full. A non-positive interval disables limiting.
func New(burst int, interval time.Duration, clock Clock) *Limiter {
	if burst < 1 {
		burst = 1
	}
	if clock == nil {
		clock = RealClock()
	}
	return &Limiter{
		clock:      clock,
		tokens:     burst,
		burst:      burst,
		interval:   interval,
		lastRefill: clock.Now(),
	}
}

// Unlimited returns a limiter that never blocks.
func Unlimited() *Limiter {
	return New(1, 0, nil)
}

// Wait blocks until a token is available or ctx is done.
// Returns the time spent waiting.
func (l *Limiter) Wait(ctx context.Context) (time.Duration, error) {
	if l == nil || l.interval <= 0 {
		return 0, ctx.Err()
	}

	start := l.clock.Now()
	for {
		if err := ctx.Err(); err != nil {
			return l.clock.Now().Sub(start), err
		}

		l.mu.Lock()
		l.refill()
		if l.tokens > 0 {
			l.tokens--
			l.mu.Unlock()
			return l.clock.Now().Sub(start), nil
		}
		wait := l.lastRefill.Add(l.interval).Sub(l.clock.Now())
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return l.clock.Now().Sub(start), ctx.Err()
		case <-l.clock.After(wait):
		}
	}
}

// Tokens returns the number of tokens currently available.
func (l *Limiter) Tokens() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refill()
	return l.tokens
}

// refill must be called with mu held.
func (l *Limiter) refill() {
	if l.interval <= 0 {
		return
	}
	elapsed := l.clock.Now().Sub(l.lastRefill)
	if elapsed < l.interval {
		return
	}
	periods := int(elapsed / l.interval)
	l.tokens += periods
	if l.tokens > l.burst {
		l.tokens = l.burst
	}
	l.lastRefill = l.lastRefill.Add(time.Duration(periods) * l.interval)
}

// Class identifies a provider class with its own limiter.
type Class string

const (
	ClassGeneric   Class = "generic"
	ClassPreScored Class = "pre_scored"
	ClassHeadline  Class = "headline"
	ClassPrice     Class = "price"
)

// Set holds one limiter per provider class.
type Set struct {
	limiters map[Class]*Limiter
}

// NewSet builds a set from per-class limiters.
func NewSet(limiters map[Class]*Limiter) *Set {
	s := &Set{limiters: make(map[Class]*Limiter, len(limiters))}
	for class, l := range limiters {
		s.limiters[class] = l
	}
	return s
}

// For returns the limiter of class, or an unlimited one.
func (s *Set) For(class Class) *Limiter {
	if s != nil {
		if l, ok := s.limiters[class]; ok && l != nil {
			return l
		}
	}
	return Unlimited()
}
