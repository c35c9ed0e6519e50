package qrwlock

import (
	"context"
	"sync"
	"time"
)

// AsyncMutex is a deadlock-checked exclusive lock around a value of
// type T. It has no reader/writer distinction, so every hold is
// recorded as OpWrite for telemetry and recursion purposes. Grounded
// on the original's sync/async_mutex.rs.
type AsyncMutex[T any] struct {
	desc *lockDescriptor
	mu   sync.Mutex
	val  T
	sink Sink
}

// NewAsyncMutex creates a named, deadlock-checked mutex seeded with val.
func NewAsyncMutex[T any](name string, val T) *AsyncMutex[T] {
	return &AsyncMutex[T]{desc: newLockDescriptor(name), val: val, sink: DefaultSink}
}

// MutexGuard grants exclusive access to an AsyncMutex's value until
// Unlock is called.
type MutexGuard[T any] struct {
	lock *AsyncMutex[T]
	hg   *holdGuard
	task *Task
}

// Value returns the protected value.
func (g *MutexGuard[T]) Value() T { return g.lock.val }

// Set replaces the protected value. Only valid while the guard is held.
func (g *MutexGuard[T]) Set(v T) { g.lock.val = v }

// Elapsed reports how long g has held the lock so far.
func (g *MutexGuard[T]) Elapsed() time.Duration { return g.hg.Elapsed() }

// Unlock releases the hold.
func (g *MutexGuard[T]) Unlock() error {
	g.lock.mu.Unlock()
	g.lock.desc.markReleased(g.task, OpWrite)
	g.hg.release()
	return nil
}

// Lock blocks until the exclusive hold is granted, ctx is cancelled, or
// the pre-acquisition deadlock check fails.
func (l *AsyncMutex[T]) Lock(ctx context.Context) (*MutexGuard[T], error) {
	t, ok := CurrentTask(ctx)
	if !ok {
		err := &Error{Kind: NotDeadlockCheckFuture, Lock: l.desc.name, Op: OpWrite}
		recordError(l.desc.name, OpWrite, "", l.sink, err)
		return nil, err
	}
	if err := l.desc.checkAndMarkAwaiting(t, OpWrite); err != nil {
		recordError(l.desc.name, OpWrite, t.Name(), l.sink, err)
		return nil, err
	}

	wg := newWaitGuard(l.desc.name, OpWrite, t.Name(), l.sink)
	acquired := make(chan struct{})
	go func() {
		l.mu.Lock()
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-ctx.Done():
		wg.end()
		l.desc.clearAwaiting(t)
		go func() {
			<-acquired
			l.mu.Unlock()
		}()
		return nil, ctx.Err()
	}

	wg.end()
	l.desc.markAcquired(t, OpWrite)
	hg := newHoldGuard(l.desc.name, OpWrite, t.Name(), l.sink)
	return &MutexGuard[T]{lock: l, hg: hg, task: t}, nil
}
