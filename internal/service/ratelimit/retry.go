package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// CallerConfig contains configuration for the retrying caller.
type CallerConfig struct {
	// MaxAttempts is the total number of tries, including the first one.
	MaxAttempts int

	// BackoffBase is the starting delay for rate-limit backoff. The delay
	// doubles with each attempt up to BackoffMax.
	BackoffBase time.Duration
	BackoffMax  time.Duration

	// LinearBackoff is the per-attempt delay step for transient upstream
	// failures (502 / 503).
	LinearBackoff time.Duration

	// Cooldown is a short pause applied after every successful call, on
	// top of the limiter's own spacing.
	Cooldown time.Duration
}

// MetadataCallerConfig returns the retry configuration used for cheap
// metadata lookups, which fail fast.
func MetadataCallerConfig() CallerConfig {
	return CallerConfig{
		MaxAttempts:   3,
		BackoffBase:   5 * time.Second,
		BackoffMax:    300 * time.Second,
		LinearBackoff: 2 * time.Second,
		Cooldown:      100 * time.Millisecond,
	}
}

// ListingCallerConfig returns the retry configuration used for content
// listing calls, which are retried more persistently.
func ListingCallerConfig() CallerConfig {
	cfg := MetadataCallerConfig()
	cfg.MaxAttempts = 5
	return cfg
}

// Caller wraps upstream API calls with rate limiting and retry. Every
// call waits for the limiter, and failures are retried with a backoff
// chosen by the kind of error.
type Caller struct {
	limiter *Limiter
	cfg     CallerConfig
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewCaller creates a caller that coordinates with the given limiter.
// Callers targeting the same upstream should share one limiter.
func NewCaller(limiter *Limiter, cfg CallerConfig) *Caller {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &Caller{
		limiter: limiter,
		cfg:     cfg,
		sleep:   sleepCtx,
	}
}

// Do executes fn under the limiter's cadence for op, retrying failures
// up to the configured attempt count. The last error is returned when
// all attempts fail. Waiting is interrupted by context cancellation.
func (c *Caller) Do(ctx context.Context, op string, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		// Waiting out the limiter does not consume an attempt.
		for {
			ok, wait := c.limiter.Allow(op)
			if ok {
				break
			}
			if err := c.sleep(ctx, wait); err != nil {
				return err
			}
		}

		err := fn()
		if err == nil {
			c.limiter.Record(op)
			if c.cfg.Cooldown > 0 {
				if err := c.sleep(ctx, c.cfg.Cooldown); err != nil {
					return err
				}
			}
			return nil
		}

		lastErr = err

		kind := classify(err)
		if kind == errAuth {
			return fmt.Errorf("%s: %w", op, err)
		}
		if attempt == c.cfg.MaxAttempts-1 {
			break
		}

		var delay time.Duration
		switch kind {
		case errRateLimit:
			delay = c.cfg.BackoffBase << attempt
			if delay > c.cfg.BackoffMax {
				delay = c.cfg.BackoffMax
			}
		case errTransient:
			delay = c.cfg.LinearBackoff * time.Duration(attempt+1)
		default:
			delay = time.Second
		}
		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
	}

	return fmt.Errorf("%s: %d attempts: %w", op, c.cfg.MaxAttempts, lastErr)
}

type errKind int

const (
	errOther errKind = iota
	errRateLimit
	errTransient
	errAuth
)

func classify(err error) errKind {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "429"):
		return errRateLimit
	case strings.Contains(msg, "502") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "bad gateway") ||
		strings.Contains(msg, "service unavailable"):
		return errTransient
	case strings.Contains(msg, "401") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "forbidden"):
		return errAuth
	default:
		return errOther
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
