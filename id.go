package qrwlock

import "sync/atomic"

// idCounter is the process-wide source of lock and task identifiers.
// 0 is reserved to mean "no id assigned yet"; the first real id is 1.
var idCounter atomic.Uint64

// newID returns a fresh, process-unique, non-zero identifier.
func newID() uint64 {
	return idCounter.Add(1)
}
