package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeClock advances by exactly the requested duration on every After call.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	c.mu.Unlock()
	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestLimiter_BurstThenWait(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New(2, time.Second, clock)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		waited, err := l.Wait(ctx)
		if err != nil {
			t.Fatalf("Wait %d failed: %v", i, err)
		}
		if waited != 0 {
			t.Errorf("Expected no wait within burst, got %v", waited)
		}
	}

	waited, err := l.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if waited != time.Second {
		t.Errorf("Expected 1s wait after burst, got %v", waited)
	}
}

func TestLimiter_Refill(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New(3, time.Second, clock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := l.Wait(ctx); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	}
	if got := l.Tokens(); got != 0 {
		t.Fatalf("Expected 0 tokens, got %d", got)
	}

	clock.Advance(2500 * time.Millisecond)
	if got := l.Tokens(); got != 2 {
		t.Errorf("Expected 2 tokens after 2.5s, got %d", got)
	}

	clock.Advance(time.Hour)
	if got := l.Tokens(); got != 3 {
		t.Errorf("Expected tokens capped at burst 3, got %d", got)
	}
}

func TestLimiter_ContextCancelled(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New(1, time.Minute, clock)
	if _, err := l.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestUnlimited(t *testing.T) {
	l := Unlimited()
	for i := 0; i < 100; i++ {
		waited, err := l.Wait(context.Background())
		if err != nil || waited != 0 {
			t.Fatalf("Unlimited limiter blocked: waited=%v err=%v", waited, err)
		}
	}
}

func TestSet_For(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	news := New(1, time.Second, clock)
	s := NewSet(map[Class]*Limiter{ClassGeneric: news})

	if s.For(ClassGeneric) != news {
		t.Error("Expected configured limiter for generic class")
	}
	if s.For(ClassPrice) == nil {
		t.Error("Expected unlimited fallback for unconfigured class")
	}

	var nilSet *Set
	if nilSet.For(ClassHeadline) == nil {
		t.Error("Expected unlimited fallback for nil set")
	}
}
