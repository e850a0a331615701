package ratelimit

import (
	"sync"
	"time"
)

// Defaults for export throttling: 60 requests per client per minute.
const (
	DefaultLimit  = 60
	DefaultWindow = time.Minute
)

// Limiter is a fixed-window request counter keyed by client. Each instance owns its own state,
// so independent servers and tests never share counts.
type Limiter interface {
	// Allow records a request for key and reports whether it fits in the current window.
	//
	// Parameters:
	//   - key: the client identity (e.g. remote address)
	//
	// Returns:
	//   - bool: false once the key has used its quota for the window
	Allow(key string) bool

	// Remaining returns how many requests key may still make in its current window.
	//
	// Parameters:
	//   - key: the client identity
	//
	// Returns:
	//   - int: the remaining quota
	Remaining(key string) int

	// Reset forgets every key.
	Reset()
}

type window struct {
	start time.Time
	count int
}

// limiter is the implementation of the Limiter interface.
type limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	windows map[string]*window
}

var _ Limiter = &limiter{}

// LimiterBuilderOption is a functional option for configuring a Limiter.
type LimiterBuilderOption func(*limiter)

// WithClock replaces the time source, used by tests to step through windows.
//
// Parameters:
//   - now: the clock function
//
// Returns:
//   - LimiterBuilderOption: option function to apply
func WithClock(now func() time.Time) LimiterBuilderOption {
	return func(l *limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLimiter creates a Limiter allowing limit requests per key per window.
// Non-positive arguments fall back to DefaultLimit and DefaultWindow.
//
// Parameters:
//   - limit: requests allowed per window
//   - w: the window length
//   - options: functional options
//
// Returns:
//   - Limiter: the new limiter
func NewLimiter(limit int, w time.Duration, options ...LimiterBuilderOption) Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if w <= 0 {
		w = DefaultWindow
	}
	l := &limiter{
		limit:   limit,
		window:  w,
		now:     time.Now,
		windows: make(map[string]*window),
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// current returns the live window for key, starting a new one if the old one expired.
// Expired windows of other keys are pruned opportunistically. Caller holds mu.
func (l *limiter) current(key string, now time.Time) *window {
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		w = &window{start: now}
		l.windows[key] = w
	}
	if len(l.windows) > 1024 {
		for k, other := range l.windows {
			if now.Sub(other.start) >= l.window {
				delete(l.windows, k)
			}
		}
	}
	return w
}

func (l *limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	w := l.current(key, l.now())
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

func (l *limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows[key]
	if !ok || l.now().Sub(w.start) >= l.window {
		return l.limit
	}
	return l.limit - w.count
}

func (l *limiter) Reset() {
	l.mu.Lock()
	l.windows = make(map[string]*window)
	l.mu.Unlock()
}
