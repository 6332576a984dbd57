package uthread

import (
	"fmt"
	"sync/atomic"
	"time"
)

// preemptHz is the frequency of preemption: 100 ticks per second of
// consumed CPU time.
const preemptHz = 100

// preemptPeriod is the interval between preemption ticks.
const preemptPeriod = time.Second / preemptHz

// preempter drives forced yields: a periodic virtual-time timer latches
// a pending-yield request, which the scheduler consumes at its next
// safepoint (any scheduler or semaphore entry point, or an explicit
// Scheduler.Checkpoint call).
//
// The mask counter is the scheduler's critical-section primitive. While
// it is non-zero, ticks are neither latched nor consumed, so a masked
// region can never be descheduled. Masking nests; disable/enable must
// be paired.
type preempter struct {
	// disarms the platform timer; nil when preemption is not armed
	disarm func()
	// nesting counter; non-zero masks preemption
	mask atomic.Int32
	// latched tick awaiting consumption at a safepoint
	pending atomic.Bool
}

// start arms the periodic timer. A no-op when enabled is false.
func (x *preempter) start(enabled bool) error {
	if !enabled {
		return nil
	}
	disarm, err := armPreemptTimer(preemptPeriod, x.tick)
	if err != nil {
		return fmt.Errorf("uthread: failed to start preemption: %w", err)
	}
	x.disarm = disarm
	return nil
}

// stop disarms the timer and clears any latched tick. A no-op if
// preemption was never armed.
func (x *preempter) stop() {
	if x.disarm == nil {
		return
	}
	x.disarm()
	x.disarm = nil
	x.pending.Store(false)
}

// tick is invoked by the platform timer on expiry, from the timer's own
// goroutine.
func (x *preempter) tick() {
	if x.mask.Load() == 0 {
		x.pending.Store(true)
	}
}

// disable masks preemption. Calls nest.
func (x *preempter) disable() {
	x.mask.Add(1)
}

// enable unmasks preemption, reversing one disable.
func (x *preempter) enable() {
	if x.mask.Add(-1) < 0 {
		panic("uthread: preemption enabled without matching disable")
	}
}

// takePending consumes a latched tick, returning true if the caller
// should yield. Always false while masked.
func (x *preempter) takePending() bool {
	return x.mask.Load() == 0 && x.pending.CompareAndSwap(true, false)
}

// clearPending discards any latched tick, e.g. because a voluntary
// yield already rotated the running thread.
func (x *preempter) clearPending() {
	x.pending.Store(false)
}
