package qrwlock

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnceMapInitializesEachKeyOnce(t *testing.T) {
	m := NewOnceMap[string, int]("om")
	calls := make(map[string]int)
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := WithDeadlockCheck(context.Background(), "caller")
			_, err := m.GetOrInit(ctx, "k", func(ctx context.Context) (int, error) {
				mu.Lock()
				calls["k"]++
				mu.Unlock()
				return 1, nil
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, calls["k"])
}

func TestOnceMapIndependentKeysDoNotBlockEachOther(t *testing.T) {
	m := NewOnceMap[string, int]("om")
	ctx := WithDeadlockCheck(context.Background(), "caller")

	va, err := m.GetOrInit(ctx, "a", func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)
	vb, err := m.GetOrInit(ctx, "b", func(context.Context) (int, error) { return 2, nil })
	require.NoError(t, err)

	assert.Equal(t, 1, va)
	assert.Equal(t, 2, vb)
	assert.Equal(t, 2, m.Len())
}

func TestOnceMapRemoveAndClear(t *testing.T) {
	m := NewOnceMap[string, int]("om")
	ctx := WithDeadlockCheck(context.Background(), "caller")

	_, err := m.GetOrInit(ctx, "a", func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)

	v, ok, err := m.Remove(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 0, m.Len())

	_, err = m.GetOrInit(ctx, "b", func(context.Context) (int, error) { return 2, nil })
	require.NoError(t, err)
	m.Clear()
	assert.Equal(t, 0, m.Len())
}

func TestOnceMapDrainOnlyTakesInitializedKeys(t *testing.T) {
	m := NewOnceMap[string, int]("om")
	ctx := WithDeadlockCheck(context.Background(), "caller")

	_, err := m.GetOrInit(ctx, "a", func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)

	drained := m.Drain()
	assert.Equal(t, map[string]int{"a": 1}, drained)
	assert.Equal(t, 0, m.Len())
}
