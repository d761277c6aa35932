package util

import (
	"context"
	"math/rand"
	"time"

	"github.com/uet-rag/prospectus/pkg/logger"
)

// RetryConfig parameterizes the retry-with-backoff combinators. Retries is
// the number of additional attempts after the first, so a call runs at most
// Retries+1 times. The sleep before attempt n+1 is
// InitialDelay * BackoffFactor^n, plus up to 10% random jitter when Jitter
// is enabled.
type RetryConfig struct {
	Retries       int
	InitialDelay  time.Duration
	BackoffFactor float64
	Jitter        bool
}

// DefaultRetryConfig returns the retry policy used for extraction calls:
// 3 retries, 2s initial delay, doubling per attempt, with jitter.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Retries:       3,
		InitialDelay:  2 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
	}
}

func (c RetryConfig) normalized() RetryConfig {
	if c.Retries < 0 {
		c.Retries = 0
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = time.Second
	}
	if c.BackoffFactor < 1 {
		c.BackoffFactor = 1
	}
	return c
}

// sleepFn is swapped out in tests to observe delays without waiting.
var sleepFn = sleepContext

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retry calls fn until it returns nil error or cfg.Retries+1 attempts have
// been made, sleeping with exponential backoff between attempts. A done
// parent context aborts the loop and its error is returned as-is. Failures
// from fn itself are always retried, including per-call timeouts fn imposed
// on its own work; otherwise the last error from fn propagates unchanged.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	cfg = cfg.normalized()

	delay := cfg.InitialDelay
	var lastErr error
	for attempt := 0; attempt <= cfg.Retries; attempt++ {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		lastErr = err

		if attempt == cfg.Retries {
			break
		}

		sleep := delay
		if cfg.Jitter {
			sleep += time.Duration(rand.Float64() * 0.1 * float64(delay))
		}
		logger.Warn("Retrying after failure", "attempt", attempt+1, "max_attempts", cfg.Retries+1, "sleep", sleep, "err", err)
		if err := sleepFn(ctx, sleep); err != nil {
			return zero, err
		}
		delay = time.Duration(float64(delay) * cfg.BackoffFactor)
	}
	return zero, lastErr
}

// RetryErr is Retry for functions that only return an error.
func RetryErr(ctx context.Context, cfg RetryConfig, fn func(context.Context) error) error {
	_, err := Retry(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
