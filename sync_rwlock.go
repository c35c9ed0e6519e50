package qrwlock

import (
	"context"
	"sync"
	"time"
)

// syncRWBound is how long SyncRWLock waits for a contended lock before
// giving up with ErrSyncLockTimeout, when called from inside a task
// scope. Matches the original's sync/rwlock.rs try_read_for/
// try_write_for bound.
const syncRWBound = 50 * time.Millisecond

const pollInterval = time.Millisecond

// pollTryLock polls tryFn (sync.(RW)Mutex.TryLock/TryRLock) until it
// succeeds or bound elapses. Grounded on the acquire-loop structure of
// dijkstracula-go-ilock's ilock.go, simplified to use the TryLock
// primitives sync.RWMutex gained after go-ilock's go 1.15 target
// instead of a hand-rolled condition-variable wakeup.
func pollTryLock(tryFn func() bool, bound time.Duration) bool {
	if tryFn() {
		return true
	}
	deadline := time.Now().Add(bound)
	for time.Now().Before(deadline) {
		time.Sleep(pollInterval)
		if tryFn() {
			return true
		}
	}
	return false
}

// SyncRWLock is the "sync-over-async" reader/writer lock: it may be
// called from a goroutine that has no installed *Task at all, in which
// case it behaves like a plain unbounded sync.RWMutex with no deadlock
// checking. Called from inside a task scope it participates in
// deadlock detection like AsyncRWLock, but bounds its wait to
// syncRWBound, failing with ErrSyncLockTimeout rather than risking a
// task that's waiting on it wedging for longer than the original
// library considers safe for a non-cooperative primitive.
type SyncRWLock[T any] struct {
	desc *lockDescriptor
	mu   sync.RWMutex
	val  T
	sink Sink
}

// NewSyncRWLock creates a named, bounded-wait reader/writer lock seeded
// with val.
func NewSyncRWLock[T any](name string, val T) *SyncRWLock[T] {
	return &SyncRWLock[T]{desc: newLockDescriptor(name), val: val, sink: DefaultSink}
}

// SyncReadGuard grants read access to a SyncRWLock's value.
type SyncReadGuard[T any] struct {
	lock    *SyncRWLock[T]
	hg      *holdGuard
	task    *Task
	hasTask bool
}

func (g *SyncReadGuard[T]) Value() T { return g.lock.val }

// Elapsed reports how long g has held the read lock so far.
func (g *SyncReadGuard[T]) Elapsed() time.Duration { return g.hg.Elapsed() }

func (g *SyncReadGuard[T]) Unlock() error {
	g.lock.mu.RUnlock()
	if g.hasTask {
		g.lock.desc.markReleased(g.task, OpRead)
	}
	g.hg.release()
	return nil
}

// SyncWriteGuard grants exclusive access to a SyncRWLock's value.
type SyncWriteGuard[T any] struct {
	lock    *SyncRWLock[T]
	hg      *holdGuard
	task    *Task
	hasTask bool
}

func (g *SyncWriteGuard[T]) Value() T { return g.lock.val }
func (g *SyncWriteGuard[T]) Set(v T) { g.lock.val = v }

// Elapsed reports how long g has held the write lock so far.
func (g *SyncWriteGuard[T]) Elapsed() time.Duration { return g.hg.Elapsed() }

func (g *SyncWriteGuard[T]) Unlock() error {
	g.lock.mu.Unlock()
	if g.hasTask {
		g.lock.desc.markReleased(g.task, OpWrite)
	}
	g.hg.release()
	return nil
}

// Read acquires a read hold. Outside a task scope it blocks
// unboundedly; inside one it is deadlock-checked and bounded to
// syncRWBound.
func (l *SyncRWLock[T]) Read(ctx context.Context) (*SyncReadGuard[T], error) {
	t, hasTask := CurrentTask(ctx)
	taskName := ""
	if hasTask {
		taskName = t.Name()
		if err := l.desc.checkAndMarkAwaiting(t, OpRead); err != nil {
			recordError(l.desc.name, OpRead, taskName, l.sink, err)
			return nil, err
		}
	}

	wg := newWaitGuard(l.desc.name, OpRead, taskName, l.sink)

	var ok bool
	if hasTask {
		ok = pollTryLock(l.mu.TryRLock, syncRWBound)
	} else {
		l.mu.RLock()
		ok = true
	}

	if !ok {
		wg.end()
		l.desc.clearAwaiting(t)
		err := &Error{Kind: SyncLockTimeout, Lock: l.desc.name, Op: OpRead, Task: taskName}
		recordError(l.desc.name, OpRead, taskName, l.sink, err)
		return nil, err
	}

	wg.end()
	if hasTask {
		l.desc.markAcquired(t, OpRead)
	}
	hg := newHoldGuard(l.desc.name, OpRead, taskName, l.sink)
	return &SyncReadGuard[T]{lock: l, hg: hg, task: t, hasTask: hasTask}, nil
}

// Write acquires an exclusive hold, with the same bounded/unbounded
// split as Read.
func (l *SyncRWLock[T]) Write(ctx context.Context) (*SyncWriteGuard[T], error) {
	t, hasTask := CurrentTask(ctx)
	taskName := ""
	if hasTask {
		taskName = t.Name()
		if err := l.desc.checkAndMarkAwaiting(t, OpWrite); err != nil {
			recordError(l.desc.name, OpWrite, taskName, l.sink, err)
			return nil, err
		}
	}

	wg := newWaitGuard(l.desc.name, OpWrite, taskName, l.sink)

	var ok bool
	if hasTask {
		ok = pollTryLock(l.mu.TryLock, syncRWBound)
	} else {
		l.mu.Lock()
		ok = true
	}

	if !ok {
		wg.end()
		l.desc.clearAwaiting(t)
		err := &Error{Kind: SyncLockTimeout, Lock: l.desc.name, Op: OpWrite, Task: taskName}
		recordError(l.desc.name, OpWrite, taskName, l.sink, err)
		return nil, err
	}

	wg.end()
	if hasTask {
		l.desc.markAcquired(t, OpWrite)
	}
	hg := newHoldGuard(l.desc.name, OpWrite, taskName, l.sink)
	return &SyncWriteGuard[T]{lock: l, hg: hg, task: t, hasTask: hasTask}, nil
}
