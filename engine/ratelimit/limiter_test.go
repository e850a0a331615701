package ratelimit

import (
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func TestLimiterWindow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	l := NewLimiter(3, time.Minute, WithClock(clock.now))

	for i := range 3 {
		if !l.Allow("a") {
			t.Fatalf("request %d rejected inside quota", i)
		}
	}
	if l.Allow("a") {
		t.Fatal("fourth request allowed")
	}
	if got := l.Remaining("a"); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}
	if !l.Allow("b") {
		t.Error("keys must be counted independently")
	}

	clock.t = clock.t.Add(59 * time.Second)
	if l.Allow("a") {
		t.Error("window reset too early")
	}
	clock.t = clock.t.Add(time.Second)
	if !l.Allow("a") {
		t.Error("window did not reset after its length elapsed")
	}
	if got := l.Remaining("a"); got != 2 {
		t.Errorf("Remaining = %d, want 2", got)
	}
}

func TestLimiterInstancesAreIndependent(t *testing.T) {
	a := NewLimiter(1, time.Minute)
	b := NewLimiter(1, time.Minute)
	if !a.Allow("x") || !b.Allow("x") {
		t.Fatal("fresh limiters must both allow")
	}
	if a.Allow("x") {
		t.Error("limiter a over quota")
	}
	b.Reset()
	if !b.Allow("x") {
		t.Error("Reset did not clear limiter b")
	}
}

func TestLimiterDefaults(t *testing.T) {
	l := NewLimiter(0, 0)
	if got := l.Remaining("new"); got != DefaultLimit {
		t.Errorf("Remaining = %d, want %d", got, DefaultLimit)
	}
}
