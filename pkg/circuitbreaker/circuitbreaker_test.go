package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend down")

func failing(ctx context.Context) error { return errBackend }
func succeeding(ctx context.Context) error { return nil }

func TestCircuitBreaker_OpensAfterFailureThreshold(t *testing.T) {
	cb := New("test", WithFailureThreshold(3))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_ = cb.Execute(ctx, failing)
		assert.True(t, cb.IsClosed())
	}

	_ = cb.Execute(ctx, failing)
	assert.True(t, cb.IsOpen())
}

func TestCircuitBreaker_OpenShortCircuits(t *testing.T) {
	cb := New("test", WithFailureThreshold(1), WithTimeout(time.Minute))
	ctx := context.Background()

	_ = cb.Execute(ctx, failing)
	require.True(t, cb.IsOpen())

	called := false
	err := cb.Execute(ctx, func(ctx context.Context) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called, "open circuit must not invoke the operation")
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb := New("test",
		WithFailureThreshold(1),
		WithSuccessThreshold(1),
		WithTimeout(10*time.Millisecond),
	)
	ctx := context.Background()

	_ = cb.Execute(ctx, failing)
	require.True(t, cb.IsOpen())

	time.Sleep(15 * time.Millisecond)

	require.NoError(t, cb.Execute(ctx, succeeding))
	assert.True(t, cb.IsClosed())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := New("test",
		WithFailureThreshold(1),
		WithTimeout(10*time.Millisecond),
	)
	ctx := context.Background()

	_ = cb.Execute(ctx, failing)
	require.True(t, cb.IsOpen())

	time.Sleep(15 * time.Millisecond)

	_ = cb.Execute(ctx, failing)
	assert.True(t, cb.IsOpen())
}

func TestCircuitBreaker_SuccessResetsConsecutiveFailures(t *testing.T) {
	cb := New("test", WithFailureThreshold(3))
	ctx := context.Background()

	_ = cb.Execute(ctx, failing)
	_ = cb.Execute(ctx, failing)
	_ = cb.Execute(ctx, succeeding)
	_ = cb.Execute(ctx, failing)
	_ = cb.Execute(ctx, failing)

	assert.True(t, cb.IsClosed())
	counts := cb.Counts()
	assert.Equal(t, 2, counts.ConsecutiveFailures)
	assert.Equal(t, 4, counts.TotalFailures)
}

func TestCircuitBreaker_ExecuteWithFallback(t *testing.T) {
	cb := New("test", WithFailureThreshold(1), WithTimeout(time.Minute))
	ctx := context.Background()

	_ = cb.Execute(ctx, failing)
	require.True(t, cb.IsOpen())

	fallbackHit := false
	err := cb.ExecuteWithFallback(ctx, succeeding, func(err error) error {
		fallbackHit = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, fallbackHit)
}

func TestCircuitBreaker_IsFailureFilter(t *testing.T) {
	benign := errors.New("not found")
	cb := New("test",
		WithFailureThreshold(1),
		WithIsFailure(func(err error) bool { return !errors.Is(err, benign) }),
	)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = cb.Execute(ctx, func(ctx context.Context) error { return benign })
	}
	assert.True(t, cb.IsClosed(), "filtered errors must not trip the breaker")

	_ = cb.Execute(ctx, failing)
	assert.True(t, cb.IsOpen())
}

func TestCircuitBreaker_OnStateChange(t *testing.T) {
	type transition struct{ from, to State }
	var transitions []transition

	cb := New("test",
		WithFailureThreshold(1),
		WithSuccessThreshold(1),
		WithTimeout(10*time.Millisecond),
		WithOnStateChange(func(name string, from, to State) {
			assert.Equal(t, "test", name)
			transitions = append(transitions, transition{from, to})
		}),
	)
	ctx := context.Background()

	_ = cb.Execute(ctx, failing)
	time.Sleep(15 * time.Millisecond)
	require.NoError(t, cb.Execute(ctx, succeeding))

	require.Len(t, transitions, 3)
	assert.Equal(t, transition{StateClosed, StateOpen}, transitions[0])
	assert.Equal(t, transition{StateOpen, StateHalfOpen}, transitions[1])
	assert.Equal(t, transition{StateHalfOpen, StateClosed}, transitions[2])
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := New("test", WithFailureThreshold(1))
	_ = cb.Execute(context.Background(), failing)
	require.True(t, cb.IsOpen())

	cb.Reset()

	assert.True(t, cb.IsClosed())
	assert.Equal(t, Counts{}, cb.Counts())
}

func TestCacheBreaker_Preset(t *testing.T) {
	cb := CacheBreaker(nil)
	ctx := context.Background()

	assert.Equal(t, "l2-cache", cb.Name())

	_ = cb.Execute(ctx, failing)
	_ = cb.Execute(ctx, failing)
	assert.True(t, cb.IsClosed())
	_ = cb.Execute(ctx, failing)
	assert.True(t, cb.IsOpen())
}
