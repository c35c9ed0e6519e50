package qrwlock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncLoadRwLockReadOrInitInitializesOnce(t *testing.T) {
	l := NewAsyncLoadRwLock[int]("L")
	ctx := WithDeadlockCheck(context.Background(), "caller")

	calls := 0
	rg, err := l.ReadOrInit(ctx, func(context.Context) int {
		calls++
		return 5
	})
	require.NoError(t, err)
	assert.Equal(t, 5, rg.Value())
	require.NoError(t, rg.Unlock())

	rg2, err := l.ReadOrInit(ctx, func(context.Context) int {
		calls++
		return 999
	})
	require.NoError(t, err)
	assert.Equal(t, 5, rg2.Value())
	require.NoError(t, rg2.Unlock())

	assert.Equal(t, 1, calls)
}

func TestAsyncLoadRwLockWriteOrInitThenSwap(t *testing.T) {
	l := NewAsyncLoadRwLock[int]("L")
	ctx := WithDeadlockCheck(context.Background(), "caller")

	wg, err := l.WriteOrInit(ctx, func(context.Context) int { return 1 })
	require.NoError(t, err)
	assert.Equal(t, 1, wg.Value())
	require.NoError(t, wg.Unlock())

	old, hadOld, err := l.Swap(ctx, 2)
	require.NoError(t, err)
	assert.True(t, hadOld)
	assert.Equal(t, 1, old)

	rg, err := l.ReadOrInit(ctx, func(context.Context) int { return 3 })
	require.NoError(t, err)
	assert.Equal(t, 2, rg.Value())
	require.NoError(t, rg.Unlock())
}

func TestAsyncLoadRwLockGetMutOrInitBypassesLocking(t *testing.T) {
	l := NewAsyncLoadRwLock[string]("L")
	v := l.GetMutOrInit(context.Background(), func(context.Context) string { return "x" })
	assert.Equal(t, "x", v)

	v2 := l.GetMutOrInit(context.Background(), func(context.Context) string { return "y" })
	assert.Equal(t, "x", v2)
}

func TestAsyncLoadRwLockPreInitializedValue(t *testing.T) {
	l := NewAsyncLoadRwLockWithValue[int]("L", 42)
	ctx := WithDeadlockCheck(context.Background(), "caller")

	rg, err := l.ReadOrInit(ctx, func(context.Context) int {
		t.Fatal("initializer should not run when value already present")
		return 0
	})
	require.NoError(t, err)
	assert.Equal(t, 42, rg.Value())
	require.NoError(t, rg.Unlock())
}

func TestAsyncLoadRwLockGuardsReportElapsed(t *testing.T) {
	l := NewAsyncLoadRwLockWithValue[int]("L", 1)
	ctx := WithDeadlockCheck(context.Background(), "caller")

	rg, err := l.ReadOrInit(ctx, func(context.Context) int { return 0 })
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	assert.Greater(t, rg.Elapsed(), time.Duration(0))
	require.NoError(t, rg.Unlock())

	wg, err := l.WriteOrInit(ctx, func(context.Context) int { return 0 })
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	assert.Greater(t, wg.Elapsed(), time.Duration(0))
	require.NoError(t, wg.Unlock())
}
