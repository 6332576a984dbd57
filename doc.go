// Package uthread provides a cooperative user-level threading runtime
// with timer-driven preemption: many logical threads of control
// multiplexed onto the single goroutine that calls [Run], with explicit
// context switches, round-robin dispatch, and a counting semaphore for
// synchronization.
//
// # Architecture
//
// The runtime comprises three subsystems:
//
//   - The scheduler ([Scheduler]) owns a FIFO ready queue, a zombie
//     queue, and the running thread, and provides the
//     create/yield/exit/block/unblock transitions plus the top-level
//     run loop.
//   - The preemption subsystem arms a periodic 100 Hz interval timer —
//     a virtual-time timer (ITIMER_VIRTUAL) on Linux, so only CPU time
//     consumed by the process accumulates toward a tick — and forces
//     the running thread to yield.
//   - The counting semaphore ([Sem]) layers blocking down/up with a
//     fair FIFO wait queue on the scheduler's block/unblock interface.
//
// Context switching is backed by goroutines parked on per-thread
// channels: a switch signals the target and parks the caller, so at
// most one thread executes at any instant. There is no parallelism, and
// no locks are needed around state shared between threads.
//
// # Execution Model
//
// [Run] adopts its caller as the idle thread, creates the entry thread,
// and yields until the ready queue drains. Threads are descheduled at
// explicit scheduler calls ([Scheduler.Yield], [Scheduler.Exit],
// [Scheduler.Block], [Sem.Down], [Sem.Up]) and, with preemption
// enabled, at safepoints once a timer tick has been latched.
//
// Go cannot interrupt a goroutine at an arbitrary instruction, so
// preemption is honored at safepoints rather than asynchronously: every
// scheduler and semaphore entry point is one, and compute-bound loops
// should call [Scheduler.Checkpoint] (two atomic operations in the
// common case) to remain preemptible. [Scheduler.DisablePreempt] and
// [Scheduler.EnablePreempt] mask preemption across a critical section;
// masking nests.
//
// # Fairness
//
// The ready queue is strictly FIFO: newly created, unblocked, and
// yielded threads go to the tail, and the dispatcher pops the head,
// yielding round-robin rotation among runnable threads. Semaphore
// waiters are woken in FIFO order, though acquisition is signaling
// rather than hand-off: a woken waiter retests the count.
//
// # Usage
//
//	err := uthread.Run(func(s *uthread.Scheduler, arg any) {
//	    fmt.Println("A")
//	    _ = s.Create(func(s *uthread.Scheduler, _ any) {
//	        fmt.Println("B")
//	    }, nil)
//	    s.Yield()
//	    fmt.Println("C")
//	}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Limitations
//
// No kernel-thread parallelism, no priority scheduling, no thread join
// or return values, no cancellation, no timed waits, and no deadlock
// detection. A thread blocked on a semaphore that is never signalled is
// abandoned when the run loop drains.
package uthread
