package qrwlock

import (
	"context"
	"time"
)

// waitGuard brackets a single blocking acquisition attempt: it emits
// "await started" telemetry on construction and "await ended" telemetry
// (plus a long-wait warning) on release. Grounded on the original
// library's WaitLockGuard/ActiveLockGuard split (wait_lock_guard.rs,
// active_lock_guard.rs): a wait guard exists only until the underlying
// primitive grants access, at which point it is consumed into a
// holdGuard.
type waitGuard struct {
	start time.Time
	lock  string
	op    Op
	task  string
	sink  Sink
}

func newWaitGuard(lock string, op Op, task string, sink Sink) *waitGuard {
	sink.IncAwaitCounter(lock, op, task)
	sink.IncAwaitGauge(lock, op, task)
	return &waitGuard{start: time.Now(), lock: lock, op: op, task: task, sink: sink}
}

// end closes out the wait, whether it succeeded or failed.
func (w *waitGuard) end() {
	elapsed := time.Since(w.start)
	w.sink.DecAwaitGauge(w.lock, w.op, w.task)
	w.sink.ObserveAwaitDuration(w.lock, w.op, w.task, elapsed)
	if elapsed > longWaitThreshold {
		logger.Warnw("lock wait exceeded threshold", "lock", w.lock, "op", w.op.String(), "task", w.task, "waited", elapsed)
	}
}

// holdGuard brackets a granted hold. Grounded on the original's
// LongLock (longlock.rs): warn on release if the hold outran either
// the Op's recommended duration or the hard longHoldThreshold ceiling.
type holdGuard struct {
	start time.Time
	lock  string
	op    Op
	task  string
	sink  Sink
}

func newHoldGuard(lock string, op Op, task string, sink Sink) *holdGuard {
	sink.IncHeldCounter(lock, op, task)
	sink.IncHeldGauge(lock, op, task)
	return &holdGuard{start: time.Now(), lock: lock, op: op, task: task, sink: sink}
}

// Elapsed returns how long the lock has been held so far.
func (h *holdGuard) Elapsed() time.Duration { return time.Since(h.start) }

func (h *holdGuard) release() {
	elapsed := time.Since(h.start)
	h.sink.DecHeldGauge(h.lock, h.op, h.task)
	h.sink.ObserveHeldDuration(h.lock, h.op, h.task, elapsed)
	h.sink.IncReleaseCounter(h.lock, h.op, h.task)

	threshold := h.op.RecommendedHoldDuration()
	if elapsed > longHoldThreshold || elapsed > threshold {
		logger.Warnw("lock held longer than recommended", "lock", h.lock, "op", h.op.String(), "task", h.task, "held", elapsed, "recommended", threshold)
	}
}

func recordError(lock string, op Op, task string, sink Sink, err *Error) {
	sink.IncErrorCounter(lock, op, task, err.Kind)
}

// WarnLockHeld logs a warning if the task installed on ctx currently
// holds any locks. Intended as a boundary guard: call it at a point
// where holding a lock across the boundary (e.g. before an HTTP
// response is written, or before yielding to another task) would be
// surprising. Grounded on the original's warn_lock_held() helper
// (deadlock.rs).
func WarnLockHeld(ctx context.Context, boundary string) {
	t, ok := CurrentTask(ctx)
	if !ok {
		return
	}
	if n := t.heldCount(); n > 0 {
		logger.Warnw("lock held across boundary", "task", t.Name(), "boundary", boundary, "locks_held", n)
	}
}
