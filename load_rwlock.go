package qrwlock

import (
	"context"
	"sync"
	"time"
)

// AsyncLoadRwLock is a reader/writer lock around a value that may not
// exist yet: readers and writers that find it present behave like
// AsyncRWLock, but a caller can ask for the value "or else initialize
// it" in one call instead of hand-rolling the check-then-write-then-
// read-again dance. Grounded on the original's async_load_rw_lock.rs.
type AsyncLoadRwLock[T any] struct {
	desc *lockDescriptor
	mu   sync.RWMutex
	val  *T
	sink Sink
	name string
}

// NewAsyncLoadRwLock creates a named, initially-empty load lock.
func NewAsyncLoadRwLock[T any](name string) *AsyncLoadRwLock[T] {
	return &AsyncLoadRwLock[T]{desc: newLockDescriptor(name), sink: DefaultSink, name: name}
}

// NewAsyncLoadRwLockWithValue creates a load lock already holding v.
func NewAsyncLoadRwLockWithValue[T any](name string, v T) *AsyncLoadRwLock[T] {
	l := NewAsyncLoadRwLock[T](name)
	l.val = &v
	return l
}

// LoadReadGuard grants read access to an AsyncLoadRwLock's value, which
// is guaranteed present for the lifetime of the guard.
type LoadReadGuard[T any] struct {
	lock *AsyncLoadRwLock[T]
	hg   *holdGuard
	task *Task
}

func (g *LoadReadGuard[T]) Value() T { return *g.lock.val }

// Elapsed reports how long g has held the read lock so far.
func (g *LoadReadGuard[T]) Elapsed() time.Duration { return g.hg.Elapsed() }

func (g *LoadReadGuard[T]) Unlock() error {
	g.lock.mu.RUnlock()
	g.lock.desc.markReleased(g.task, OpRead)
	g.hg.release()
	return nil
}

// LoadWriteGuard grants exclusive access to an AsyncLoadRwLock's value.
type LoadWriteGuard[T any] struct {
	lock *AsyncLoadRwLock[T]
	hg   *holdGuard
	task *Task
}

func (g *LoadWriteGuard[T]) Value() T { return *g.lock.val }
func (g *LoadWriteGuard[T]) Set(v T) { g.lock.val = &v }

// Elapsed reports how long g has held the write lock so far.
func (g *LoadWriteGuard[T]) Elapsed() time.Duration { return g.hg.Elapsed() }

func (g *LoadWriteGuard[T]) Unlock() error {
	g.lock.mu.Unlock()
	g.lock.desc.markReleased(g.task, OpWrite)
	g.hg.release()
	return nil
}

func (l *AsyncLoadRwLock[T]) rawRead(ctx context.Context) (*Task, error) {
	t, ok := CurrentTask(ctx)
	if !ok {
		err := &Error{Kind: NotDeadlockCheckFuture, Lock: l.name, Op: OpRead}
		recordError(l.name, OpRead, "", l.sink, err)
		return nil, err
	}
	if err := l.desc.checkAndMarkAwaiting(t, OpRead); err != nil {
		recordError(l.name, OpRead, t.Name(), l.sink, err)
		return nil, err
	}
	wg := newWaitGuard(l.name, OpRead, t.Name(), l.sink)
	l.mu.RLock()
	wg.end()
	l.desc.markAcquired(t, OpRead)
	return t, nil
}

func (l *AsyncLoadRwLock[T]) rawWrite(ctx context.Context) (*Task, error) {
	t, ok := CurrentTask(ctx)
	if !ok {
		err := &Error{Kind: NotDeadlockCheckFuture, Lock: l.name, Op: OpWrite}
		recordError(l.name, OpWrite, "", l.sink, err)
		return nil, err
	}
	if err := l.desc.checkAndMarkAwaiting(t, OpWrite); err != nil {
		recordError(l.name, OpWrite, t.Name(), l.sink, err)
		return nil, err
	}
	wg := newWaitGuard(l.name, OpWrite, t.Name(), l.sink)
	l.mu.Lock()
	wg.end()
	l.desc.markAcquired(t, OpWrite)
	return t, nil
}

// ReadOrTryInit returns a read guard on the value, running f to
// produce one first if the lock is currently empty. f runs under a
// momentary write hold; once it succeeds the lock is reacquired for
// read, so the returned guard is always a genuine read hold, never the
// write hold used for initialization.
func (l *AsyncLoadRwLock[T]) ReadOrTryInit(ctx context.Context, f func(context.Context) (T, error)) (*LoadReadGuard[T], error) {
	for {
		t, err := l.rawRead(ctx)
		if err != nil {
			return nil, err
		}
		if l.val != nil {
			hg := newHoldGuard(l.name, OpRead, t.Name(), l.sink)
			return &LoadReadGuard[T]{lock: l, hg: hg, task: t}, nil
		}
		l.mu.RUnlock()
		l.desc.markReleased(t, OpRead)

		wg, err := l.WriteOrTryInit(ctx, f)
		if err != nil {
			return nil, err
		}
		wg.Unlock()
	}
}

// ReadOrInit is ReadOrTryInit for an infallible initializer.
func (l *AsyncLoadRwLock[T]) ReadOrInit(ctx context.Context, f func(context.Context) T) (*LoadReadGuard[T], error) {
	return l.ReadOrTryInit(ctx, func(ctx context.Context) (T, error) { return f(ctx), nil })
}

// WriteOrTryInit returns a write guard on the value, initializing it
// via f first if the lock is currently empty.
func (l *AsyncLoadRwLock[T]) WriteOrTryInit(ctx context.Context, f func(context.Context) (T, error)) (*LoadWriteGuard[T], error) {
	t, err := l.rawWrite(ctx)
	if err != nil {
		return nil, err
	}
	if l.val == nil {
		v, err := f(ctx)
		if err != nil {
			l.mu.Unlock()
			l.desc.markReleased(t, OpWrite)
			return nil, err
		}
		l.val = &v
	}
	hg := newHoldGuard(l.name, OpWrite, t.Name(), l.sink)
	return &LoadWriteGuard[T]{lock: l, hg: hg, task: t}, nil
}

// WriteOrInit is WriteOrTryInit for an infallible initializer.
func (l *AsyncLoadRwLock[T]) WriteOrInit(ctx context.Context, f func(context.Context) T) (*LoadWriteGuard[T], error) {
	return l.WriteOrTryInit(ctx, func(ctx context.Context) (T, error) { return f(ctx), nil })
}

// GetMutOrTryInit returns the value directly, initializing it via f
// first if empty. Unlike ReadOrTryInit/WriteOrTryInit it takes no lock
// at all: it is for callers that already hold exclusive access to l by
// construction (e.g. before publishing it to other goroutines), mirroring
// the original's get_mut, which borrows &mut self instead of locking.
func (l *AsyncLoadRwLock[T]) GetMutOrTryInit(ctx context.Context, f func(context.Context) (T, error)) (T, error) {
	if l.val == nil {
		v, err := f(ctx)
		if err != nil {
			var zero T
			return zero, err
		}
		l.val = &v
	}
	return *l.val, nil
}

// GetMutOrInit is GetMutOrTryInit for an infallible initializer.
func (l *AsyncLoadRwLock[T]) GetMutOrInit(ctx context.Context, f func(context.Context) T) T {
	if l.val == nil {
		v := f(ctx)
		l.val = &v
	}
	return *l.val
}

// Swap replaces the value outright (initializing the lock if it was
// empty has no special case here: old is simply zero-value, hadOld
// false), returning the previous value if any.
func (l *AsyncLoadRwLock[T]) Swap(ctx context.Context, v T) (T, bool, error) {
	t, err := l.rawWrite(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}
	defer func() {
		l.mu.Unlock()
		l.desc.markReleased(t, OpWrite)
	}()

	var old T
	var hadOld bool
	if l.val != nil {
		old, hadOld = *l.val, true
	}
	l.val = &v
	return old, hadOld, nil
}
