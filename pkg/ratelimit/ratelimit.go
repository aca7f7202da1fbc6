package ratelimit

import (
	"sync"
	"time"
)

type windowState struct {
	start time.Time
	count int
}

// FixedWindow is a per-key fixed-window rate limiter. State lives for the
// lifetime of the process; one instance serves one process.
type FixedWindow struct {
	limit  int
	window time.Duration

	mu    sync.Mutex
	state map[string]windowState
	now   func() time.Time
}

func NewFixedWindow(limit int, window time.Duration) *FixedWindow {
	return &FixedWindow{
		limit:  limit,
		window: window,
		state:  make(map[string]windowState),
		now:    time.Now,
	}
}

// Allow reports whether one more request for key fits in the current window.
// The counter resets once a full window has elapsed since the window start.
func (l *FixedWindow) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.state[key]
	if !ok {
		st = windowState{start: now}
	}
	if now.Sub(st.start) >= l.window {
		st = windowState{start: now}
	}
	if st.count >= l.limit {
		l.state[key] = st
		return false
	}
	st.count++
	l.state[key] = st
	return true
}
