package ratelimit

import (
	"sync"
	"time"
)

// LimiterConfig contains configuration for the rate limiter.
type LimiterConfig struct {
	// PerMinute is the request quota per operation per rolling minute.
	PerMinute int

	// MinSpacing is the minimum gap between two calls of the same operation.
	MinSpacing time.Duration
}

// DefaultLimiterConfig returns the limiter configuration matching the
// upstream API limits (100 requests per minute, 350ms between requests).
func DefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		PerMinute:  100,
		MinSpacing: 350 * time.Millisecond,
	}
}

type opState struct {
	windowStart time.Time
	count       int
	lastCall    time.Time
}

// Limiter tracks per-operation call cadence and quota. Allow never
// consumes quota; callers confirm a completed call with Record, so a
// speculative check cannot double count.
type Limiter struct {
	cfg LimiterConfig
	mu  sync.Mutex
	ops map[string]*opState
	now func() time.Time
}

// NewLimiter creates a limiter with its own isolated state.
func NewLimiter(cfg LimiterConfig) *Limiter {
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = DefaultLimiterConfig().PerMinute
	}
	return &Limiter{
		cfg: cfg,
		ops: make(map[string]*opState),
		now: time.Now,
	}
}

// Allow reports whether a call for the operation may go out now. When it
// may not, the returned duration is how long the caller should wait
// before checking again.
func (l *Limiter) Allow(op string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	st := l.state(op, now)

	// Reset the counter once the minute window has passed.
	if now.Sub(st.windowStart) > time.Minute {
		st.count = 0
		st.windowStart = now
	}

	if st.count >= l.cfg.PerMinute {
		return false, time.Minute
	}

	if !st.lastCall.IsZero() {
		if gap := now.Sub(st.lastCall); gap < l.cfg.MinSpacing {
			return false, l.cfg.MinSpacing - gap
		}
	}

	return true, 0
}

// Record books a completed call against the operation's quota.
func (l *Limiter) Record(op string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	st := l.state(op, now)
	st.lastCall = now
	st.count++
}

func (l *Limiter) state(op string, now time.Time) *opState {
	st, ok := l.ops[op]
	if !ok {
		st = &opState{windowStart: now}
		l.ops[op] = st
	}
	return st
}
