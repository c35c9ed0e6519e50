package qrwlock

import (
	"context"
	"sync"
	"sync/atomic"
)

// AsyncOnceCell holds at most one value of type T, set by whichever
// caller's init function wins the race to GetOrInit/GetOrTryInit. A
// failed init does not consume the cell: the next caller retries from
// scratch. Grounded on the original's async_once_cell.rs.
type AsyncOnceCell[T any] struct {
	desc *lockDescriptor
	mu   sync.Mutex
	val  atomic.Pointer[T]
	sink Sink
	name string
}

// NewAsyncOnceCell creates an empty, named once-cell.
func NewAsyncOnceCell[T any](name string) *AsyncOnceCell[T] {
	return &AsyncOnceCell[T]{desc: newLockDescriptor(name), sink: DefaultSink, name: name}
}

// NewAsyncOnceCellWithValue creates a once-cell already holding v.
func NewAsyncOnceCellWithValue[T any](name string, v T) *AsyncOnceCell[T] {
	c := NewAsyncOnceCell[T](name)
	c.val.Store(&v)
	return c
}

// Get returns the current value and whether one has been set, without
// blocking.
func (c *AsyncOnceCell[T]) Get() (T, bool) {
	p := c.val.Load()
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

// withInitLock runs fn while holding the cell's init mutex, deadlock
// checked the same way AsyncMutex is.
func (c *AsyncOnceCell[T]) withInitLock(ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	t, ok := CurrentTask(ctx)
	if !ok {
		err := &Error{Kind: NotDeadlockCheckFuture, Lock: c.name, Op: OpWrite}
		recordError(c.name, OpWrite, "", c.sink, err)
		return zero, err
	}
	if err := c.desc.checkAndMarkAwaiting(t, OpWrite); err != nil {
		recordError(c.name, OpWrite, t.Name(), c.sink, err)
		return zero, err
	}

	wg := newWaitGuard(c.name, OpWrite, t.Name(), c.sink)
	c.mu.Lock()
	wg.end()
	c.desc.markAcquired(t, OpWrite)
	hg := newHoldGuard(c.name, OpWrite, t.Name(), c.sink)
	defer func() {
		c.mu.Unlock()
		c.desc.markReleased(t, OpWrite)
		hg.release()
	}()

	return fn()
}

// GetOrTryInit returns the cell's value, running f to produce one if
// the cell is empty. Concurrent callers serialize on the init mutex;
// a double-check after acquiring it means only one caller's f actually
// runs in the common case. If f returns an error, the cell stays
// empty and the next caller's GetOrTryInit will try again.
func (c *AsyncOnceCell[T]) GetOrTryInit(ctx context.Context, f func(context.Context) (T, error)) (T, error) {
	if v, ok := c.Get(); ok {
		return v, nil
	}
	return c.withInitLock(ctx, func() (T, error) {
		if v, ok := c.Get(); ok {
			return v, nil
		}
		v, err := f(ctx)
		if err != nil {
			var zero T
			return zero, err
		}
		c.val.Store(&v)
		return v, nil
	})
}

// GetOrInit is GetOrTryInit for an infallible initializer.
func (c *AsyncOnceCell[T]) GetOrInit(ctx context.Context, f func(context.Context) T) (T, error) {
	return c.GetOrTryInit(ctx, func(ctx context.Context) (T, error) { return f(ctx), nil })
}

// GetOrTryInitSync is GetOrTryInit for an initializer that needs no
// context.
func (c *AsyncOnceCell[T]) GetOrTryInitSync(ctx context.Context, f func() (T, error)) (T, error) {
	return c.GetOrTryInit(ctx, func(context.Context) (T, error) { return f() })
}

// GetOrInitSync is GetOrInit for an initializer that needs no context.
func (c *AsyncOnceCell[T]) GetOrInitSync(ctx context.Context, f func() T) (T, error) {
	return c.GetOrTryInit(ctx, func(context.Context) (T, error) { return f(), nil })
}

// Swap replaces the cell's value with v, returning the previous value
// and whether one was set. Deadlock-checked the same as init.
func (c *AsyncOnceCell[T]) Swap(ctx context.Context, v T) (T, bool, error) {
	var old T
	var hadOld bool
	_, err := c.withInitLock(ctx, func() (T, error) {
		if p := c.val.Swap(&v); p != nil {
			old, hadOld = *p, true
		}
		return v, nil
	})
	return old, hadOld, err
}

// Take empties the cell, returning the value that was there (if any).
func (c *AsyncOnceCell[T]) Take(ctx context.Context) (T, bool, error) {
	var old T
	var hadOld bool
	_, err := c.withInitLock(ctx, func() (T, error) {
		if p := c.val.Swap(nil); p != nil {
			old, hadOld = *p, true
		}
		return old, nil
	})
	return old, hadOld, err
}
