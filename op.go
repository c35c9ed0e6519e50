package qrwlock

import "time"

// Op identifies which kind of access a guard represents, for telemetry
// labels and for the recommended hold-duration thresholds below.
type Op int

const (
	OpRead Op = iota
	OpWrite
	OpQueue
)

func (o Op) String() string {
	switch o {
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpQueue:
		return "queue"
	default:
		return "unknown"
	}
}

// RecommendedHoldDuration is the threshold past which holding a lock of
// this Op is considered long enough to warrant a warning: readers are
// expected to be held the longest (they don't block other readers),
// writers the shortest, and the queue stage in between.
func (o Op) RecommendedHoldDuration() time.Duration {
	switch o {
	case OpRead:
		return 30 * time.Second
	case OpQueue:
		return 2 * time.Second
	case OpWrite:
		return 1 * time.Second
	default:
		return 1 * time.Second
	}
}

// longWaitThreshold is the wait duration past which a WaitGuard emits a
// "long wait" warning on release.
const longWaitThreshold = 500 * time.Millisecond

// longHoldThreshold is the hold duration past which a HoldGuard emits a
// "long hold" warning on release, independent of the per-Op recommendation
// (the per-Op value tunes when callers should worry; this is the hard
// ceiling the detector itself warns about).
const longHoldThreshold = 30 * time.Second
