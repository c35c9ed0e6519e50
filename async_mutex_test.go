package qrwlock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncMutexExcludesSecondLocker(t *testing.T) {
	mu := NewAsyncMutex[int]("M", 0)

	firstCtx := WithDeadlockCheck(context.Background(), "first")
	g, err := mu.Lock(firstCtx)
	require.NoError(t, err)

	secondCtx := WithDeadlockCheck(context.Background(), "second")
	ctx, cancel := context.WithTimeout(secondCtx, 20*time.Millisecond)
	defer cancel()
	_, err = mu.Lock(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, g.Unlock())

	g2, err := mu.Lock(WithDeadlockCheck(context.Background(), "third"))
	require.NoError(t, err)
	require.NoError(t, g2.Unlock())
}

func TestAsyncMutexRecursiveLockRefused(t *testing.T) {
	ctx := WithDeadlockCheck(context.Background(), "self")
	mu := NewAsyncMutex[int]("M", 0)

	g, err := mu.Lock(ctx)
	require.NoError(t, err)

	ctx2, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = mu.Lock(ctx2)
	assert.ErrorIs(t, err, ErrRecursiveLock)

	require.NoError(t, g.Unlock())
}

func TestAsyncMutexGuardReportsElapsed(t *testing.T) {
	mu := NewAsyncMutex[int]("M", 0)
	ctx := WithDeadlockCheck(context.Background(), "holder")

	g, err := mu.Lock(ctx)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	assert.Greater(t, g.Elapsed(), time.Duration(0))
	require.NoError(t, g.Unlock())
}
