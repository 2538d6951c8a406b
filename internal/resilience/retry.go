package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// RetryConfig controls the bounded retry loop.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts including the first.
	// A value of 1 disables retries. Default: 3.
	MaxAttempts int

	// InitialBackoff is the delay before the first retry. Default: 500ms.
	InitialBackoff time.Duration

	// MaxBackoff caps the computed delay. Default: 30s.
	MaxBackoff time.Duration

	// Multiplier scales the delay per attempt. Default: 2.0.
	Multiplier float64

	// JitterFraction randomizes the delay by ±fraction. Default: 0.25.
	JitterFraction float64

	// OnAttempt, if set, is called after every attempt with the 1-based
	// attempt number, its latency, and its error (nil on success).
	OnAttempt func(attempt int, latency time.Duration, err error)
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 500 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 30 * time.Second
	}
	if c.Multiplier <= 0 {
		c.Multiplier = 2.0
	}
	if c.JitterFraction < 0 {
		c.JitterFraction = 0
	}
	return c
}

// Backoff computes the jittered delay before retry number attempt (0-based)
// as a pure function of the attempt count; only the jitter draw is random.
func Backoff(attempt int, cfg RetryConfig) time.Duration {
	cfg = cfg.withDefaults()
	delay := float64(cfg.InitialBackoff) * math.Pow(cfg.Multiplier, float64(attempt))
	if delay > float64(cfg.MaxBackoff) {
		delay = float64(cfg.MaxBackoff)
	}
	if cfg.JitterFraction > 0 {
		delay += (rand.Float64()*2 - 1) * delay * cfg.JitterFraction
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

// Do runs fn with bounded retries. Only transient errors are retried;
// terminal errors, non-transient errors, and context cancellation return
// immediately. The successful value is returned along with the number of
// retries that were needed (0 when the first attempt succeeds).
func Do[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, int, error) {
	cfg = cfg.withDefaults()

	var zero T
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		start := time.Now()
		val, err := fn(ctx)
		if cfg.OnAttempt != nil {
			cfg.OnAttempt(attempt+1, time.Since(start), err)
		}
		if err == nil {
			return val, attempt, nil
		}
		lastErr = err

		if ctx.Err() != nil || !IsTransient(err) {
			return zero, attempt, lastErr
		}
		if attempt >= cfg.MaxAttempts-1 {
			break
		}

		timer := time.NewTimer(Backoff(attempt, cfg))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, attempt, lastErr
		case <-timer.C:
		}
	}

	return zero, cfg.MaxAttempts - 1, lastErr
}

// AttemptLogger returns an OnAttempt callback that logs each attempt with
// its number and latency.
func AttemptLogger(service, operation string) func(int, time.Duration, error) {
	return func(attempt int, latency time.Duration, err error) {
		fields := []zap.Field{
			zap.String("service", service),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Int64("latency_ms", latency.Milliseconds()),
		}
		if err != nil {
			zap.L().Warn("attempt failed", append(fields, zap.Error(err))...)
			return
		}
		zap.L().Debug("attempt succeeded", fields...)
	}
}
