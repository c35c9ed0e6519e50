package qrwlock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncMutexTimesOutUnderContention(t *testing.T) {
	mu := NewSyncMutex[int]("SM", 0)

	aCtx := WithDeadlockCheck(context.Background(), "A")
	g, err := mu.Lock(aCtx)
	require.NoError(t, err)

	bCtx := WithDeadlockCheck(context.Background(), "B")
	start := time.Now()
	_, err = mu.Lock(bCtx)
	elapsed := time.Since(start)

	assert.True(t, errors.Is(err, ErrSyncLockTimeout))
	assert.GreaterOrEqual(t, elapsed, syncMutexBound)

	require.NoError(t, g.Unlock())
}

func TestSyncMutexUnboundedWithoutTaskScope(t *testing.T) {
	mu := NewSyncMutex[int]("SM", 1)
	g, err := mu.Lock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, g.Value())
	require.NoError(t, g.Unlock())
}

func TestSyncMutexSetIsVisibleAfterUnlock(t *testing.T) {
	mu := NewSyncMutex[int]("SM", 0)
	ctx := WithDeadlockCheck(context.Background(), "writer")

	g, err := mu.Lock(ctx)
	require.NoError(t, err)
	g.Set(42)
	require.NoError(t, g.Unlock())

	g2, err := mu.Lock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42, g2.Value())
	require.NoError(t, g2.Unlock())
}

func TestSyncMutexGuardReportsElapsed(t *testing.T) {
	mu := NewSyncMutex[int]("SM", 0)

	g, err := mu.Lock(context.Background())
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	assert.Greater(t, g.Elapsed(), time.Duration(0))
	require.NoError(t, g.Unlock())
}
