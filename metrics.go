package uthread

import "sync/atomic"

// Metrics tracks runtime statistics for a scheduler run. Collection is
// optional, enabled via WithMetrics. All counters are monotonic and
// safe to read from any goroutine at any point during or after a run.
type Metrics struct {
	threadsCreated atomic.Uint64
	threadsReaped  atomic.Uint64
	dispatches     atomic.Uint64
	preemptions    atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of a scheduler's counters.
type MetricsSnapshot struct {
	// ThreadsCreated counts successful Scheduler.Create calls.
	ThreadsCreated uint64
	// ThreadsReaped counts zombie threads whose contexts were destroyed
	// by the run loop's cleanup phase.
	ThreadsReaped uint64
	// Dispatches counts context switches performed by Yield.
	Dispatches uint64
	// Preemptions counts yields forced by the preemption timer.
	Preemptions uint64
}

// Snapshot returns a copy of the current counter values.
func (x *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		ThreadsCreated: x.threadsCreated.Load(),
		ThreadsReaped:  x.threadsReaped.Load(),
		Dispatches:     x.dispatches.Load(),
		Preemptions:    x.preemptions.Load(),
	}
}
