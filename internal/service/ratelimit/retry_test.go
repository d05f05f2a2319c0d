package ratelimit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestCaller(cfg CallerConfig) (*Caller, *[]time.Duration) {
	limiter, _ := newTestLimiter(LimiterConfig{PerMinute: 1000, MinSpacing: 0})
	c := NewCaller(limiter, cfg)
	var sleeps []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return c, &sleeps
}

func TestCallerSucceedsFirstTry(t *testing.T) {
	c, sleeps := newTestCaller(MetadataCallerConfig())

	calls := 0
	err := c.Do(context.Background(), "wall.get", func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
	// Cooldown pause after the successful call.
	if len(*sleeps) != 1 || (*sleeps)[0] != 100*time.Millisecond {
		t.Errorf("sleeps = %v, want [100ms]", *sleeps)
	}
}

func TestCallerRateLimitBackoffSchedule(t *testing.T) {
	c, sleeps := newTestCaller(CallerConfig{
		MaxAttempts:   3,
		BackoffBase:   5 * time.Second,
		BackoffMax:    300 * time.Second,
		LinearBackoff: 2 * time.Second,
	})

	calls := 0
	err := c.Do(context.Background(), "wall.get", func() error {
		calls++
		if calls < 3 {
			return errors.New("429 too many requests")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}

	// 5s after the first failure, 10s after the second.
	want := []time.Duration{5 * time.Second, 10 * time.Second}
	if len(*sleeps) != len(want) {
		t.Fatalf("sleeps = %v, want %v", *sleeps, want)
	}
	for i, d := range want {
		if (*sleeps)[i] != d {
			t.Errorf("sleep %d = %v, want %v", i, (*sleeps)[i], d)
		}
	}
}

func TestCallerBackoffCap(t *testing.T) {
	c, sleeps := newTestCaller(CallerConfig{
		MaxAttempts: 8,
		BackoffBase: 60 * time.Second,
		BackoffMax:  300 * time.Second,
	})

	_ = c.Do(context.Background(), "wall.get", func() error {
		return errors.New("rate limit exceeded")
	})

	for i, d := range *sleeps {
		if d > 300*time.Second {
			t.Errorf("sleep %d = %v exceeds cap", i, d)
		}
	}
}

func TestCallerTransientLinearBackoff(t *testing.T) {
	c, sleeps := newTestCaller(CallerConfig{
		MaxAttempts:   3,
		BackoffBase:   5 * time.Second,
		LinearBackoff: 2 * time.Second,
	})

	_ = c.Do(context.Background(), "wall.get", func() error {
		return errors.New("upstream returned 503")
	})

	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(*sleeps) != len(want) {
		t.Fatalf("sleeps = %v, want %v", *sleeps, want)
	}
	for i, d := range want {
		if (*sleeps)[i] != d {
			t.Errorf("sleep %d = %v, want %v", i, (*sleeps)[i], d)
		}
	}
}

func TestCallerAuthErrorFailsImmediately(t *testing.T) {
	c, _ := newTestCaller(ListingCallerConfig())

	calls := 0
	err := c.Do(context.Background(), "wall.get", func() error {
		calls++
		return errors.New("401 unauthorized")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1 (no retry on auth failure)", calls)
	}
}

func TestCallerExhaustionReturnsLastError(t *testing.T) {
	c, _ := newTestCaller(CallerConfig{MaxAttempts: 3})

	sentinel := errors.New("parse failure")
	err := c.Do(context.Background(), "wall.get", func() error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want wrapped sentinel", err)
	}
	if !strings.Contains(err.Error(), "3 attempts") {
		t.Errorf("err = %v, want attempt count in message", err)
	}
}

func TestCallerContextCancelDuringWait(t *testing.T) {
	limiter, _ := newTestLimiter(LimiterConfig{PerMinute: 1, MinSpacing: 0})
	limiter.Record("wall.get")

	c := NewCaller(limiter, MetadataCallerConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Do(ctx, "wall.get", func() error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestCallerRecordsOnlySuccess(t *testing.T) {
	limiter, _ := newTestLimiter(LimiterConfig{PerMinute: 5, MinSpacing: 0})
	c := NewCaller(limiter, CallerConfig{MaxAttempts: 3})
	c.sleep = func(context.Context, time.Duration) error { return nil }

	_ = c.Do(context.Background(), "wall.get", func() error {
		return errors.New("boom")
	})

	st := limiter.ops["wall.get"]
	if st != nil && st.count != 0 {
		t.Errorf("failed attempts recorded %d calls, want 0", st.count)
	}
}
