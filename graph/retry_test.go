package graph

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flaky(failures int32, calls *atomic.Int32) NodeFunc[map[string]any] {
	return func(ctx context.Context, state map[string]any) (map[string]any, error) {
		if calls.Add(1) <= failures {
			return nil, errors.New("upstream 503")
		}
		return map[string]any{"ok": true}, nil
	}
}

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, BackoffFactor: 2}
}

func TestWithRetry_SucceedsAfterFailures(t *testing.T) {
	var calls atomic.Int32
	fn := WithRetry("node", flaky(2, &calls), fastRetry(3))

	out, err := fn(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, true, out["ok"])
	assert.Equal(t, int32(3), calls.Load())
}

func TestWithRetry_Exhausted(t *testing.T) {
	var calls atomic.Int32
	fn := WithRetry("financial_analyst", flaky(5, &calls), fastRetry(2))

	_, err := fn(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries (2) exceeded for financial_analyst")
	assert.Contains(t, err.Error(), "upstream 503")
	assert.Equal(t, int32(2), calls.Load())
}

func TestWithRetry_SingleAttemptIsPassthrough(t *testing.T) {
	var calls atomic.Int32
	fn := WithRetry("node", flaky(1, &calls), RetryConfig{})

	_, err := fn(context.Background(), nil)
	require.EqualError(t, err, "upstream 503")
	assert.Equal(t, int32(1), calls.Load())
}

func TestWithRetry_NonRetryable(t *testing.T) {
	permanent := errors.New("missing key")
	var calls atomic.Int32
	cfg := fastRetry(5)
	cfg.Retryable = func(err error) bool { return !errors.Is(err, permanent) }

	fn := WithRetry("node", func(ctx context.Context, state map[string]any) (map[string]any, error) {
		calls.Add(1)
		return nil, permanent
	}, cfg)

	_, err := fn(context.Background(), nil)
	require.ErrorIs(t, err, permanent)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWithRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	cfg := RetryConfig{MaxAttempts: 10, InitialDelay: time.Second, MaxDelay: time.Second}

	fn := WithRetry("node", func(ctx context.Context, state map[string]any) (map[string]any, error) {
		calls.Add(1)
		cancel()
		return nil, errors.New("boom")
	}, cfg)

	_, err := fn(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWithTimeout(t *testing.T) {
	slow := func(ctx context.Context, state map[string]any) (map[string]any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	_, err := WithTimeout("slow", slow, 10*time.Millisecond)(context.Background(), nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "node slow timed out")

	var calls atomic.Int32
	out, err := WithTimeout("fast", flaky(0, &calls), time.Second)(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, true, out["ok"])
}

func TestWithRetry_InGraph(t *testing.T) {
	var calls atomic.Int32
	g := NewStateGraph[map[string]any]()
	g.SetSchema(NewMapSchema())
	g.AddNode("flaky", "Fails once", WithRetry("flaky", flaky(1, &calls), fastRetry(2)))
	g.SetEntryPoint("flaky")
	g.AddEdge("flaky", END)

	runnable, err := g.Compile()
	require.NoError(t, err)

	final, err := runnable.Invoke(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, true, final["ok"])
}
