// Package qrwlock provides deadlock-aware locking primitives for goroutines
// that cooperate through a shared context.Context: a task-scoped deadlock
// detector, async and sync-over-async mutex/rwlock variants, a queue-gated
// reader/writer lock, and lazy-initialization cells that are safe to await
// concurrently.
//
// Every blocking operation takes a context.Context carrying a *Task,
// installed by WithDeadlockCheck. Before a goroutine blocks on a lock it
// already holds, or on a lock that would complete a wait-for cycle with
// another task, the attempt fails fast with an *Error instead of wedging.
package qrwlock
