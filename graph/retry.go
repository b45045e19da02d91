package graph

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RetryConfig configures retry behavior for a node.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	// Retryable reports whether err should trigger another attempt. Nil
	// retries every error while the caller's context is alive.
	Retryable func(error) bool
}

// DefaultRetryConfig returns a default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
	}
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.BackoffFactor < 1 {
		c.BackoffFactor = 1
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = c.InitialDelay
	}
	return c
}

func (c RetryConfig) retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if c.Retryable != nil {
		return c.Retryable(err)
	}
	return true
}

// WithRetry wraps fn so that failed attempts are retried with exponential
// backoff. With MaxAttempts <= 1 fn is returned unchanged.
func WithRetry[S any](name string, fn NodeFunc[S], cfg RetryConfig) NodeFunc[S] {
	cfg = cfg.withDefaults()
	if cfg.MaxAttempts == 1 {
		return fn
	}

	return func(ctx context.Context, state S) (S, error) {
		var zero S
		var lastErr error
		delay := cfg.InitialDelay

		for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
			if err := ctx.Err(); err != nil {
				return zero, fmt.Errorf("retry cancelled: %w", err)
			}

			result, err := fn(ctx, state)
			if err == nil {
				return result, nil
			}
			lastErr = err

			if !cfg.retryable(err) {
				return zero, err
			}

			// no sleep after the last attempt
			if attempt < cfg.MaxAttempts {
				select {
				case <-time.After(delay):
					delay = min(time.Duration(float64(delay)*cfg.BackoffFactor), cfg.MaxDelay)
				case <-ctx.Done():
					return zero, fmt.Errorf("retry cancelled during backoff: %w", ctx.Err())
				}
			}
		}

		return zero, fmt.Errorf("max retries (%d) exceeded for %s: %w", cfg.MaxAttempts, name, lastErr)
	}
}

// WithTimeout bounds each call of fn to timeout. A zero timeout returns fn
// unchanged.
func WithTimeout[S any](name string, fn NodeFunc[S], timeout time.Duration) NodeFunc[S] {
	if timeout <= 0 {
		return fn
	}

	return func(ctx context.Context, state S) (S, error) {
		timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		type result struct {
			value S
			err   error
		}
		resultChan := make(chan result, 1)

		go func() {
			value, err := fn(timeoutCtx, state)
			resultChan <- result{value: value, err: err}
		}()

		select {
		case res := <-resultChan:
			return res.value, res.err
		case <-timeoutCtx.Done():
			var zero S
			if ctx.Err() != nil {
				return zero, ctx.Err()
			}
			return zero, fmt.Errorf("node %s timed out after %v: %w", name, timeout, context.DeadlineExceeded)
		}
	}
}
